// Package streamtest provides test helpers for driving and observing streams.
package streamtest

import (
	"sync"

	"github.com/agentstation/relay/pkg/stream"
)

// Recorder is an Observer that records everything delivered to it.
//
// Recorder is safe under concurrent notification calls.
type Recorder struct {
	mu        sync.Mutex
	events    []stream.Event
	errs      []error
	completed int
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnNext implements stream.Observer.
func (r *Recorder) OnNext(e stream.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// OnError implements stream.Observer.
func (r *Recorder) OnError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// OnCompleted implements stream.Observer.
func (r *Recorder) OnCompleted() {
	r.mu.Lock()
	r.completed++
	r.mu.Unlock()
}

// Events returns a snapshot copy of recorded events.
func (r *Recorder) Events() []stream.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]stream.Event, len(r.events))
	copy(cp, r.events)
	return cp
}

// Payloads returns the payloads of recorded events, in delivery order.
func (r *Recorder) Payloads() []any {
	evs := r.Events()
	out := make([]any, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Payload)
	}
	return out
}

// Errors returns a snapshot copy of recorded errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]error, len(r.errs))
	copy(cp, r.errs)
	return cp
}

// Completions returns how many times OnCompleted was delivered.
func (r *Recorder) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminated reports whether any terminal signal has been recorded.
func (r *Recorder) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed > 0 || len(r.errs) > 0
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.errs = nil
	r.completed = 0
	r.mu.Unlock()
}
