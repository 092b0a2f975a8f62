package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/relay/internal/bridge"
	"github.com/agentstation/relay/internal/feed"
	"github.com/agentstation/relay/internal/server"
	"github.com/agentstation/relay/pkg/constants"
	"github.com/agentstation/relay/pkg/logging"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve feeds over WebSocket and SSE",
	Long: `Start the relay HTTP server.

Features:
  - Feed listing and health endpoints
  - WebSocket streaming per feed (/api/v1/feeds/{name}/ws)
  - Server-Sent Events streaming per feed (/api/v1/feeds/{name}/stream)
  - CORS support for web applications
  - Request logging and panic recovery
  - Graceful shutdown that completes feeds and releases every attachment

Feed definitions come from a YAML file:

  feeds:
    - name: heartbeat
      interval: 1s
    - name: clock
      interval: 250ms
      payload: tick

When no file is given, a built-in default set is served.`,
	Example: `  # Start on default port 8080 with the built-in feeds
  relay serve

  # Serve feeds declared in a file
  relay serve --feeds feeds.yaml

  # Custom port and bind address
  relay serve --port 3000 --host 0.0.0.0

  # Enable CORS for specific origins
  relay serve --cors-origins "https://example.com,https://app.example.com"`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration flags
	serveCmd.Flags().IntP("port", "p", 8080, "Server port")
	serveCmd.Flags().String("host", "localhost", "Bind address")
	serveCmd.Flags().String("prefix", "/api/v1", "API path prefix")

	// Feed flags
	serveCmd.Flags().String("feeds", "", "Feed definitions file (YAML), built-in defaults when empty")

	// CORS flags
	serveCmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	serveCmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	// Timeout flags
	serveCmd.Flags().Duration("read-timeout", constants.DefaultTimeout, "HTTP read timeout")
	serveCmd.Flags().Duration("idle-timeout", 120*time.Second, "HTTP idle timeout")
}

// runServe starts the relay server.
func runServe(cmd *cobra.Command, _ []string) error {
	// Parse flags
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")
	pathPrefix, _ := cmd.Flags().GetString("prefix")
	feedsFile, _ := cmd.Flags().GetString("feeds")
	corsEnabled, _ := cmd.Flags().GetBool("cors")
	corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	idleTimeout, _ := cmd.Flags().GetDuration("idle-timeout")

	// Override with environment variables
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		if p, err := parsePort(envPort); err == nil {
			port = p
		}
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
		host = envHost
	}

	logger := logging.Default()

	// Load feed definitions
	defs := feed.Defaults()
	if feedsFile != "" {
		loaded, err := feed.Load(feedsFile)
		if err != nil {
			return fmt.Errorf("loading feeds: %w", err)
		}
		defs = loaded
	}

	set, err := feed.NewSet(defs)
	if err != nil {
		return fmt.Errorf("building feeds: %w", err)
	}

	b, err := bridge.New(set, logger)
	if err != nil {
		return fmt.Errorf("building bridge: %w", err)
	}

	cfg := server.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.PathPrefix = pathPrefix
	cfg.CORSEnabled = corsEnabled || len(corsOrigins) > 0
	cfg.CORSOrigins = corsOrigins
	cfg.ReadTimeout = readTimeout
	cfg.IdleTimeout = idleTimeout

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Str("feeds_file", feedsFile).
		Msg("Starting relay server")

	srv, err := server.New(b, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start feeds and transport hubs
	srv.Start()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server with graceful shutdown
	return startServerWithGracefulShutdown(cmd.Context(), httpServer, srv, logger)
}

// startServerWithGracefulShutdown runs the HTTP server until the context is
// cancelled, then shuts down the relay before draining the listener. The
// relay goes first: completing the feeds is what releases SSE handlers, and
// the listener cannot drain while they are still streaming.
func startServerWithGracefulShutdown(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	// Server errors channel
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Msg("Server starting")

		fmt.Printf("🚀 Starting relay server on %s\n", httpServer.Addr)
		fmt.Println("   Press Ctrl+C to stop")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")

		fmt.Println("\n🛑 Shutting down relay server...")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("draining attachments: %w", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("Server stopped gracefully")
		fmt.Println("✅ Relay server stopped gracefully")
		return nil
	}
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}
