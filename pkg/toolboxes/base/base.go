// Package base is the root demo toolbox. It registers the abstract
// Component type the other demo types descend from, a placeholder stub and
// a step counter.
package base

import (
	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/toolbox"
)

// Name is the catalogue name of this toolbox.
const Name = "Base"

// Registered type names.
const (
	ComponentType = "Component"
	StubType      = "Stub"
	CounterType   = "Counter"
)

type baseToolbox struct{}

// New creates the toolbox.
func New() toolbox.Toolbox { return &baseToolbox{} }

// Register submits the toolbox to m.
func Register(m *toolbox.Manager) (int, error) {
	return m.Submit(Name, New)
}

func (*baseToolbox) Dependencies() string { return "" }

func (*baseToolbox) Initialise(env *toolbox.Env) error {
	if err := env.Types.RegisterAbstract(ComponentType, ""); err != nil {
		return err
	}
	if err := env.Types.RegisterStub(StubType); err != nil {
		return err
	}
	if err := env.Types.Register(CounterType, ComponentType, NewCounter); err != nil {
		return err
	}
	env.Stream(journal.Debug).Printf("registered %s, %s, %s\n", ComponentType, StubType, CounterType)
	return nil
}

func (*baseToolbox) Finalise(env *toolbox.Env) error {
	env.Stream(journal.Debug).Printf("finalised\n")
	return nil
}

// Counter counts Execute calls and reports every Interval steps on the
// watched rank.
type Counter struct {
	Label    string `param:"label"`
	Interval int    `param:"interval"`

	count int
	info  *journal.Stream
}

// NewCounter is the Counter constructor.
func NewCounter() component.Component {
	return &Counter{Interval: 1}
}

// Count returns the number of completed steps.
func (c *Counter) Count() int { return c.count }

func (c *Counter) AssignFromConfig(b component.Binder) error {
	if err := b.Params().Decode(c); err != nil {
		return err
	}
	if c.Label == "" {
		c.Label = b.InstanceName()
	}
	if c.Interval < 1 {
		return errors.Newf(errors.ErrBadParam, "counter '%s' needs a positive interval, got %d", b.InstanceName(), c.Interval).
			WithDetail("param", "interval")
	}
	c.info = b.Stream(journal.Info)
	return nil
}

func (c *Counter) Build(component.Resolver) error { return nil }

func (c *Counter) Initialise() error {
	c.count = 0
	return nil
}

func (c *Counter) Execute() error {
	c.count++
	if c.count%c.Interval == 0 {
		c.info.RPrintf("%s: step %d\n", c.Label, c.count)
	}
	return nil
}

func (c *Counter) Destroy() error { return nil }
