package relay

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/relay/pkg/logging"
)

// Option configures a Relay instance.
type Option func(*options)

// options are the configured options for a relay.
type options struct {
	logger *zerolog.Logger
	fault  FaultHandler
}

// defaults returns the default relay options.
func defaults() *options {
	return &options{
		logger: logging.Default(),
		fault:  nil, // nil panics at the point of delivery
	}
}

// apply applies the given options in order.
func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger configures the logger used for attach and detach events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFaultHandler configures where stream errors are delivered. By default a
// stream error panics on the delivering goroutine after cleanup, preserving
// the contract that producers of a bridged stream do not error. A fault
// handler replaces the panic with a callback, for hosts that cannot tolerate
// fire-and-forget fault propagation.
func WithFaultHandler(fn FaultHandler) Option {
	return func(o *options) {
		o.fault = fn
	}
}
