package server

import (
	"net"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// HTTP timeouts. WriteTimeout stays zero because SSE and WebSocket
	// responses are long-lived.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        8080,
		PathPrefix:  "/api/v1",
		CORSEnabled: false,
		CORSOrigins: []string{},
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
}

// Addr returns the host:port address the server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
