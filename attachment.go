package relay

import (
	"sync"

	"github.com/agentstation/relay/pkg/stream"
)

// Compile-time interface check to ensure proper implementation.
var _ stream.Observer = (*attachment)(nil)

// attachment observes the stream on behalf of one Add call and resolves the
// race between "resource handle known" and "stream already terminated".
//
// Subscribe may drive the attachment through a terminal signal before it
// returns the resource handle. Two flags under mu record which side of the
// race has happened, and whichever side runs second consults them:
//
//   - setResource finds done and drops the resource without registering it;
//     the subscription already ended, there is nothing to own.
//   - terminate finds registered unset and records done; there is nothing in
//     the registry yet to remove.
//
// Exactly one of {register, drop silently} happens per attachment, whichever
// order the two sides run in.
type attachment struct {
	relay  *relay
	key    Key
	invoke InvokeFunc

	mu         sync.Mutex
	registered bool // resource handed to the registry
	done       bool // terminal signal arrived before the resource was known
}

// OnNext forwards one value to the handler invocation. No queueing, no
// deduplication, no state change.
func (a *attachment) OnNext(e stream.Event) {
	a.invoke(e.Sender, e.Payload)
}

// OnError performs the same registry bookkeeping as completion, then raises
// the error as an unhandled fault. Cleanup is never skipped even though the
// error is fatal.
func (a *attachment) OnError(err error) {
	a.terminate()

	if fault := a.relay.options.fault; fault != nil {
		fault(err)
		return
	}
	panic(err)
}

// OnCompleted ends the attachment with no error.
func (a *attachment) OnCompleted() {
	a.terminate()
}

// setResource resolves the subscription resource returned by Subscribe. It is
// called exactly once, immediately after Subscribe returns.
func (a *attachment) setResource(res stream.Resource) {
	if res == nil {
		res = stream.Nop()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done {
		// The subscription ended before it was ever observable externally.
		// The resource represents an already-finished subscription and is
		// intentionally never registered.
		return
	}
	a.relay.registry.register(a.key, res)
	a.registered = true
}

// terminate handles a terminal stream signal. The registry pop happens under
// the attachment lock; disposal of the popped resource happens after both
// locks are released.
func (a *attachment) terminate() {
	a.mu.Lock()
	if !a.registered {
		a.done = true
		a.mu.Unlock()
		return
	}
	res, ok := a.relay.registry.removeOne(a.key)
	a.mu.Unlock()

	if ok {
		res.Dispose()
	}
}
