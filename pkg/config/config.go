package config

import (
	"strings"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
)

// Journal output formats.
const (
	JournalText = "text"
	JournalLog  = "log"
)

// Instance declares one component instance.
type Instance struct {
	Name   string                 `koanf:"name" toml:"name" yaml:"name"`
	Type   string                 `koanf:"type" toml:"type" yaml:"type"`
	Params map[string]interface{} `koanf:"params" toml:"params,omitempty" yaml:"params,omitempty"`
	Refs   map[string]string      `koanf:"refs" toml:"refs,omitempty" yaml:"refs,omitempty"`
}

// Journal holds diagnostic stream settings.
type Journal struct {
	Format    string            `koanf:"format" toml:"format" yaml:"format"`
	WatchRank int               `koanf:"watch_rank" toml:"watch_rank" yaml:"watch_rank"`
	Streams   []journal.Setting `koanf:"streams" toml:"streams,omitempty" yaml:"streams,omitempty"`
}

// RunConfig is a complete run description.
type RunConfig struct {
	Toolboxes  []string               `koanf:"toolboxes" toml:"toolboxes" yaml:"toolboxes"`
	Params     map[string]interface{} `koanf:"params" toml:"params,omitempty" yaml:"params,omitempty"`
	Components []Instance             `koanf:"components" toml:"components,omitempty" yaml:"components,omitempty"`
	Journal    Journal                `koanf:"journal" toml:"journal" yaml:"journal"`
}

// Validate checks the structural rules the loaders cannot express.
func (c *RunConfig) Validate() error {
	for i, tb := range c.Toolboxes {
		if strings.TrimSpace(tb) == "" {
			return errors.Newf(errors.ErrConfigValid, "toolbox entry %d is empty", i).
				WithDetail("index", i)
		}
	}

	seen := make(map[string]int, len(c.Components))
	for i, in := range c.Components {
		if in.Name == "" {
			return errors.Newf(errors.ErrConfigValid, "component %d has no name", i).
				WithDetail("index", i)
		}
		if in.Type == "" {
			return errors.Newf(errors.ErrConfigValid, "component '%s' has no type", in.Name).
				WithDetail("instance", in.Name)
		}
		if prev, dup := seen[in.Name]; dup {
			return errors.Newf(errors.ErrConfigValid,
				"component '%s' is declared twice (entries %d and %d)", in.Name, prev, i).
				WithDetail("instance", in.Name)
		}
		seen[in.Name] = i
	}

	switch c.Journal.Format {
	case "", JournalText, JournalLog:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown journal format '%s'", c.Journal.Format).
			WithDetail("format", c.Journal.Format)
	}
	if c.Journal.WatchRank < 0 {
		return errors.Newf(errors.ErrConfigValid, "journal watch rank %d is negative", c.Journal.WatchRank)
	}
	return nil
}

// Component returns the declared instance with the given name.
func (c *RunConfig) Component(name string) (Instance, bool) {
	for _, in := range c.Components {
		if in.Name == name {
			return in, true
		}
	}
	return Instance{}, false
}
