package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/agentstation/relay/pkg/constants"
	"github.com/rs/zerolog"
)

// Config describes how the default logger should be built.
type Config struct {
	// Level is the minimum level to emit: trace, debug, info, warn, error,
	// fatal, panic, or disabled.
	Level string

	// Format selects the output encoding: "json", "console", or "auto".
	// Auto picks console when writing to a terminal and JSON otherwise.
	Format string

	// Output names the destination: "stderr", "stdout", "discard", or a
	// file path.
	Output string

	// AddCaller annotates each event with the file:line that produced it.
	AddCaller bool

	// NoColor disables ANSI colors in console output.
	NoColor bool
}

// DefaultConfig returns the configuration used when none is supplied:
// info-level, auto format, stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "auto",
		Output: "stderr",
	}
}

// Configure builds a logger from cfg and installs it as the default.
// A nil cfg applies DefaultConfig.
func Configure(cfg *Config) error {
	logger, err := NewLoggerFromConfig(cfg)
	if err != nil {
		return err
	}
	SetDefault(logger)
	return nil
}

// NewLoggerFromConfig builds a logger from cfg without touching the default.
func NewLoggerFromConfig(cfg *Config) (zerolog.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = timeLayout

	writer, err := writerFor(cfg)
	if err != nil {
		return zerolog.Logger{}, err
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if cfg.AddCaller {
		logger = logger.With().Caller().Logger()
	}
	return logger, nil
}

// timeLayout is RFC3339 with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// writerFor resolves the configured destination and wraps it for console
// output when the format calls for it.
func writerFor(cfg *Config) (io.Writer, error) {
	output, err := destination(cfg.Output)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(cfg.Format)
	console := format == "console"
	if format == "auto" || format == "" {
		// Only a real terminal gets console output; files and pipes
		// stay machine-readable.
		console = output == os.Stderr && stderrIsTerminal()
	}
	if !console {
		return output, nil
	}

	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.Kitchen,
		NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
	}, nil
}

// destination maps an output name to a writer, creating or appending to a
// file for anything that is not a well-known name.
func destination(name string) (io.Writer, error) {
	switch strings.ToLower(name) {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	default:
		return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.FilePermissions)
	}
}

// parseLevel converts a level name to a zerolog level, accepting a few
// spellings zerolog itself does not.
func parseLevel(levelStr string) (zerolog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "none", "off":
		return zerolog.Disabled, nil
	}
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}
