package feed

import (
	"context"
	"sync"

	"github.com/agentstation/relay/pkg/errors"
)

// Set is a named collection of feeds.
type Set struct {
	feeds map[string]*Feed
	order []string
}

// NewSet builds feeds for the given definitions.
func NewSet(defs []Definition) (*Set, error) {
	if len(defs) == 0 {
		return nil, errors.NewConfigError("feeds", "at least one feed definition is required", nil)
	}

	set := &Set{feeds: make(map[string]*Feed, len(defs))}
	for _, def := range defs {
		if _, exists := set.feeds[def.Name]; exists {
			return nil, &errors.ValidationError{
				Field:   "name",
				Value:   def.Name,
				Message: "duplicate feed name",
			}
		}
		f, err := New(def)
		if err != nil {
			return nil, err
		}
		set.feeds[def.Name] = f
		set.order = append(set.order, def.Name)
	}
	return set, nil
}

// Get returns the named feed.
func (s *Set) Get(name string) (*Feed, bool) {
	f, ok := s.feeds[name]
	return f, ok
}

// Lookup returns the named feed, or a NotFoundError when no feed has that
// name.
func (s *Set) Lookup(name string) (*Feed, error) {
	f, ok := s.feeds[name]
	if !ok {
		return nil, errors.NewNotFoundError("feed", name)
	}
	return f, nil
}

// Names returns the feed names in definition order.
func (s *Set) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// All returns the feeds in definition order.
func (s *Set) All() []*Feed {
	feeds := make([]*Feed, 0, len(s.order))
	for _, name := range s.order {
		feeds = append(feeds, s.feeds[name])
	}
	return feeds
}

// Run starts every feed and blocks until all of them have completed, which
// happens when ctx is canceled.
func (s *Set) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, f := range s.All() {
		wg.Add(1)
		go func(f *Feed) {
			defer wg.Done()
			f.Run(ctx)
		}(f)
	}
	wg.Wait()
}
