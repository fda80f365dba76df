package component

import (
	"github.com/arthur-debert/stgcore/pkg/errors"
)

// State is the lifecycle position of an instance.
type State int

const (
	StateUnconstructed State = iota
	StateConstructed
	StateConfigBound
	StateBuilt
	StateInitialised
	StateExecuting
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnconstructed:
		return "unconstructed"
	case StateConstructed:
		return "constructed"
	case StateConfigBound:
		return "config-bound"
	case StateBuilt:
		return "built"
	case StateInitialised:
		return "initialised"
	case StateExecuting:
		return "executing"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Phase names used in errors and logs.
const (
	PhaseConstruct  = "construct"
	PhaseAssign     = "assign"
	PhaseBuild      = "build"
	PhaseInitialise = "initialise"
	PhaseExecute    = "execute"
	PhaseDestroy    = "destroy"
)

// Instance drives one component through its lifecycle.
type Instance struct {
	name       string
	typeName   string
	comp       Component
	state      State
	executions int
}

// NewInstance returns an unconstructed instance.
func NewInstance(name, typeName string) *Instance {
	return &Instance{name: name, typeName: typeName}
}

// Name returns the instance name.
func (i *Instance) Name() string { return i.name }

// TypeName returns the registered type name.
func (i *Instance) TypeName() string { return i.typeName }

// State returns the current lifecycle state.
func (i *Instance) State() State { return i.state }

// Component returns the wrapped component, nil before Construct.
func (i *Instance) Component() Component { return i.comp }

// Executions returns how many times Execute completed.
func (i *Instance) Executions() int { return i.executions }

// Construct allocates the component with ctor.
func (i *Instance) Construct(ctor Constructor) error {
	if err := i.expect(PhaseConstruct, StateUnconstructed); err != nil {
		return err
	}
	if ctor == nil {
		return i.phaseError(PhaseConstruct, errors.New(errors.ErrInvalidInput, "nil constructor"))
	}
	c := ctor()
	if c == nil {
		return i.phaseError(PhaseConstruct, errors.New(errors.ErrInternal, "constructor returned nil"))
	}
	i.comp = c
	i.state = StateConstructed
	return nil
}

// Assign binds configuration.
func (i *Instance) Assign(b Binder) error {
	if err := i.expect(PhaseAssign, StateConstructed); err != nil {
		return err
	}
	if err := i.comp.AssignFromConfig(b); err != nil {
		return i.phaseError(PhaseAssign, err)
	}
	i.state = StateConfigBound
	return nil
}

// Build resolves references.
func (i *Instance) Build(r Resolver) error {
	if err := i.expect(PhaseBuild, StateConfigBound); err != nil {
		return err
	}
	if err := i.comp.Build(r); err != nil {
		return i.phaseError(PhaseBuild, err)
	}
	i.state = StateBuilt
	return nil
}

// Initialise prepares derived state.
func (i *Instance) Initialise() error {
	if err := i.expect(PhaseInitialise, StateBuilt); err != nil {
		return err
	}
	if err := i.comp.Initialise(); err != nil {
		return i.phaseError(PhaseInitialise, err)
	}
	i.state = StateInitialised
	return nil
}

// Execute runs the component; it may be called repeatedly once initialised.
func (i *Instance) Execute() error {
	if err := i.expect(PhaseExecute, StateInitialised, StateExecuting); err != nil {
		return err
	}
	if err := i.comp.Execute(); err != nil {
		return i.phaseError(PhaseExecute, err)
	}
	i.state = StateExecuting
	i.executions++
	return nil
}

// Destroy releases the component from any state. The instance is marked
// destroyed even if the hook fails; a second call does nothing.
func (i *Instance) Destroy() error {
	if i.state == StateDestroyed {
		return nil
	}
	comp := i.comp
	i.state = StateDestroyed
	if comp == nil {
		return nil
	}
	if err := comp.Destroy(); err != nil {
		return i.phaseError(PhaseDestroy, err)
	}
	return nil
}

func (i *Instance) expect(phase string, allowed ...State) error {
	for _, s := range allowed {
		if i.state == s {
			return nil
		}
	}
	return errors.Newf(errors.ErrPhaseViolation,
		"cannot %s instance '%s' in state %s", phase, i.name, i.state).
		WithDetail("instance", i.name).
		WithDetail("phase", phase).
		WithDetail("state", i.state.String())
}

func (i *Instance) phaseError(phase string, err error) error {
	return errors.Wrapf(err, errors.ErrComponentPhase,
		"%s of instance '%s' (type %s) failed", phase, i.name, i.typeName).
		WithDetail("instance", i.name).
		WithDetail("type", i.typeName).
		WithDetail("phase", phase)
}
