// Package feed provides the demo event producers bridged by the relay
// server. Each feed owns a hot subject and publishes a numbered event per
// tick; stopping a feed completes its subject, which detaches every live
// handler through the relay's terminal path.
package feed

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/relay/pkg/constants"
	"github.com/agentstation/relay/pkg/errors"
)

// Definition describes one configured feed.
type Definition struct {
	// Name identifies the feed and is the Sender on every published event.
	Name string `yaml:"name"`

	// Interval is the publish cadence as a Go duration string ("250ms",
	// "2s"). Empty means the default feed interval.
	Interval string `yaml:"interval,omitempty"`

	// Payload is an optional fixed label carried on every event.
	Payload string `yaml:"payload,omitempty"`
}

// File is the on-disk shape of a feeds definition file.
type File struct {
	Feeds []Definition `yaml:"feeds"`
}

// Validate checks that the definition is usable.
func (d Definition) Validate() error {
	if d.Name == "" {
		return &errors.ValidationError{
			Field:   "name",
			Message: "feed name must not be empty",
		}
	}
	if d.Interval == "" {
		return nil
	}

	every, err := time.ParseDuration(d.Interval)
	if err != nil {
		return &errors.ValidationError{
			Field:   "interval",
			Value:   d.Interval,
			Message: "not a valid duration",
		}
	}
	if every < constants.MinFeedInterval {
		return &errors.ValidationError{
			Field:   "interval",
			Value:   d.Interval,
			Message: fmt.Sprintf("must be at least %s", constants.MinFeedInterval),
		}
	}
	return nil
}

// Every returns the publish interval, falling back to the default when no
// interval is configured. Call Validate first; an unparseable interval also
// falls back rather than failing here.
func (d Definition) Every() time.Duration {
	if d.Interval == "" {
		return constants.DefaultFeedInterval
	}
	every, err := time.ParseDuration(d.Interval)
	if err != nil {
		return constants.DefaultFeedInterval
	}
	return every
}

// Load reads and validates feed definitions from a YAML file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if len(file.Feeds) == 0 {
		return nil, errors.NewConfigError("feeds", "no feed definitions in "+path, nil)
	}

	seen := make(map[string]bool, len(file.Feeds))
	for _, def := range file.Feeds {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if seen[def.Name] {
			return nil, &errors.ValidationError{
				Field:   "name",
				Value:   def.Name,
				Message: "duplicate feed name",
			}
		}
		seen[def.Name] = true
	}
	return file.Feeds, nil
}

// Defaults returns the built-in feeds used when no definitions file is given.
func Defaults() []Definition {
	return []Definition{
		{Name: "heartbeat", Interval: "1s", Payload: "ping"},
		{Name: "clock", Interval: "5s"},
	}
}
