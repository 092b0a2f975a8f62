package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures log output for assertions in tests.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger returns a debug-level logger that writes JSON into an
// in-memory buffer.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()

	buf := &bytes.Buffer{}

	// Lower the global level so debug events reach the buffer, and
	// restore it once the test finishes.
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
	})

	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	return &TestLogger{
		Logger: &logger,
		Buffer: buf,
	}
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	return tl.Buffer.String()
}

// Lines returns the logged output split into non-empty lines, one per event.
func (tl *TestLogger) Lines() []string {
	var lines []string
	for _, line := range strings.Split(tl.Buffer.String(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Contains reports whether the captured output contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Buffer.String(), substr)
}

// AssertContains fails the test when substr is absent from the output.
func (tl *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("log output does not contain %q\noutput: %s", substr, tl.Output())
	}
}

// AssertNotContains fails the test when substr appears in the output.
func (tl *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	if tl.Contains(substr) {
		t.Errorf("log output unexpectedly contains %q\noutput: %s", substr, tl.Output())
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
