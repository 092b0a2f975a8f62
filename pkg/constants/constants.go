// Package constants provides shared constants used throughout the relay codebase.
// This includes timeouts, buffer sizes, file permissions, and other configuration
// values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight work during shutdown
	ShutdownTimeout = 30 * time.Second
)

// FilePermissions is the default permission for created files (rw-r--r--)
const FilePermissions = 0644

// Buffer constants define channel and queue capacities
const (
	// ClientEventBuffer is the per-client buffered channel size for event delivery.
	// Clients that fall more than this many events behind are disconnected.
	ClientEventBuffer = 256

	// RegistrationBuffer is the queue depth for pending transport client
	// registrations and removals
	RegistrationBuffer = 64
)

// Feed constants define defaults for event feed publishers
const (
	// DefaultFeedInterval is the default publish interval for ticker-driven feeds
	DefaultFeedInterval = 1 * time.Second

	// MinFeedInterval is the smallest publish interval a feed definition may request
	MinFeedInterval = 10 * time.Millisecond
)
