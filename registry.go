package relay

import (
	"sync"

	"github.com/agentstation/relay/pkg/stream"
)

// registry maps handler keys to the subscription resources they own, in
// attach order. A key is present iff it has at least one live resource.
//
// The registry lock guards only the map mutation itself. Disposal of a
// removed resource is the caller's job and happens after removeOne returns,
// so disposal side effects that re-enter the registry cannot deadlock.
type registry struct {
	mu      sync.Mutex
	entries map[Key][]stream.Resource
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[Key][]stream.Resource),
	}
}

// register appends res to key's stack, creating the stack if absent.
func (g *registry) register(key Key, res stream.Resource) {
	g.mu.Lock()
	g.entries[key] = append(g.entries[key], res)
	g.mu.Unlock()
}

// removeOne pops the most recently registered resource for key and returns
// ownership of it to the caller. Popping a key with no live resources returns
// false; that is a defined no-op, not an error.
func (g *registry) removeOne(key Key) (stream.Resource, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stack, ok := g.entries[key]
	if !ok {
		return nil, false
	}

	last := len(stack) - 1
	res := stack[last]
	stack[last] = nil // drop the backing array's reference
	if last == 0 {
		delete(g.entries, key)
	} else {
		g.entries[key] = stack[:last]
	}
	return res, true
}

// count reports the number of live resources for key.
func (g *registry) count(key Key) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries[key])
}

// size reports the total number of live resources across all keys.
func (g *registry) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, stack := range g.entries {
		n += len(stack)
	}
	return n
}
