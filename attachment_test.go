package relay

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/relay/pkg/stream"
)

func newTestRelay(opts ...Option) *relay {
	return &relay{
		options:  defaults().apply(opts...),
		registry: newRegistry(),
	}
}

func TestAttachmentHandshake(t *testing.T) {
	t.Run("resource_then_terminal", func(t *testing.T) {
		r := newTestRelay()
		att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {}}

		res := &countingResource{}
		att.setResource(res)
		require.True(t, att.registered)
		require.Equal(t, 1, r.registry.count("k"))

		att.OnCompleted()
		assert.Equal(t, 0, r.registry.count("k"))
		assert.Equal(t, int32(1), res.n.Load())
	})

	t.Run("terminal_then_resource", func(t *testing.T) {
		r := newTestRelay()
		att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {}}

		att.OnCompleted()
		require.True(t, att.done)

		// The resource arrives after the subscription already ended. It is
		// dropped, not registered and not disposed.
		res := &countingResource{}
		att.setResource(res)
		assert.False(t, att.registered)
		assert.Equal(t, 0, r.registry.count("k"))
		assert.Equal(t, int32(0), res.n.Load())
	})

	t.Run("nil_resource_substituted", func(t *testing.T) {
		r := newTestRelay()
		att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {}}

		att.setResource(nil)
		require.Equal(t, 1, r.registry.count("k"))

		// Terminating must not panic on the substituted resource.
		att.OnCompleted()
		assert.Equal(t, 0, r.registry.count("k"))
	})
}

func TestAttachmentOnNext(t *testing.T) {
	var gotSender, gotPayload any
	var calls int

	r := newTestRelay()
	att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {
		calls++
		gotSender, gotPayload = sender, payload
	}}

	att.OnNext(stream.Event{Sender: "src", Payload: 7})
	assert.Equal(t, 1, calls)
	assert.Equal(t, "src", gotSender)
	assert.Equal(t, 7, gotPayload)

	// Values do not change handshake state.
	assert.False(t, att.registered)
	assert.False(t, att.done)
}

func TestAttachmentOnError(t *testing.T) {
	boom := stderrors.New("boom")

	t.Run("cleanup_precedes_fault", func(t *testing.T) {
		var sizeAtFault = -1
		var captured error

		var r *relay
		r = newTestRelay(WithFaultHandler(func(err error) {
			captured = err
			sizeAtFault = r.registry.size()
		}))

		att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {}}
		res := &countingResource{}
		att.setResource(res)

		att.OnError(boom)
		assert.Same(t, boom, captured)
		assert.Equal(t, 0, sizeAtFault)
		assert.Equal(t, int32(1), res.n.Load())
	})

	t.Run("default_handler_panics_with_raw_error", func(t *testing.T) {
		r := newTestRelay()
		att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {}}
		res := &countingResource{}
		att.setResource(res)

		require.PanicsWithValue(t, boom, func() {
			att.OnError(boom)
		})

		// Cleanup still ran before the panic.
		assert.Equal(t, 0, r.registry.count("k"))
		assert.Equal(t, int32(1), res.n.Load())
	})

	t.Run("error_before_resource_drops_silently", func(t *testing.T) {
		var captured error
		r := newTestRelay(WithFaultHandler(func(err error) { captured = err }))
		att := &attachment{relay: r, key: "k", invoke: func(sender, payload any) {}}

		att.OnError(boom)
		require.Same(t, boom, captured)
		require.True(t, att.done)

		res := &countingResource{}
		att.setResource(res)
		assert.Equal(t, 0, r.registry.count("k"))
		assert.Equal(t, int32(0), res.n.Load())
	})
}
