// Package logging provides the relay's structured logging on top of zerolog.
//
// The package keeps one process-wide default logger, configured at startup
// through Configure and reachable anywhere via Default or the package-level
// event helpers. Components that need scoped fields derive child loggers
// (feed name, client id, request id) instead of reconfiguring the default.
//
// Example usage:
//
//	logging.Configure(&logging.Config{Level: "debug", Format: "console"})
//
//	log := logging.Default()
//	log.Info().Str("feed", "heartbeat").Msg("Feed publishing")
//
//	ctx := logging.WithFeed(r.Context(), "heartbeat")
//	logging.Ctx(ctx).Debug().Msg("Client attached")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is the process-wide logger. Configure replaces it.
var defaultLogger zerolog.Logger

func init() {
	defaultLogger = bootstrapLogger()
}

// bootstrapLogger builds the logger used before Configure runs: console
// output when stderr is a terminal, JSON otherwise, level from the
// environment.
func bootstrapLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr
	if stderrIsTerminal() && os.Getenv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := startupLevel()
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // keep zerolog's own global in step
}

// New creates a logger writing timestamped JSON to w at the global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts an error event on the default logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

// Fatal starts a fatal event on the default logger. The process exits once
// the message is written.
func Fatal() *zerolog.Event { return defaultLogger.Fatal() }

// Err starts an error event carrying err on the default logger.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

// stderrIsTerminal reports whether stderr is attached to a terminal.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// startupLevel resolves the pre-Configure log level from the environment.
func startupLevel() zerolog.Level {
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := zerolog.ParseLevel(levelStr); err == nil {
			return level
		}
		return zerolog.InfoLevel
	}
	if os.Getenv("DEBUG") != "" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
