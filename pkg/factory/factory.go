package factory

import (
	stderrors "errors"

	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/config"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/logging"
	"github.com/arthur-debert/stgcore/pkg/registry"
	"github.com/rs/zerolog"
)

// Spec is the declarative description of one instance.
type Spec struct {
	Params component.Params
	// Refs maps reference fields to target instance names.
	Refs map[string]string
}

// Factory owns the instances of one run.
type Factory struct {
	types     *registry.TypeRegistry
	journal   *journal.Journal
	root      component.Params
	directory registry.Registry[*component.Instance]
	specs     map[string]Spec
	// busy maps instances whose Build or Initialise hook is running to
	// that phase.
	busy      map[string]string
	info      *journal.Stream
	logger    zerolog.Logger
}

// New creates a factory that looks types up in types and gives every
// instance root as the run-wide parameter dictionary.
func New(types *registry.TypeRegistry, j *journal.Journal, root component.Params) *Factory {
	if j == nil {
		j = journal.New()
	}
	if root == nil {
		root = component.Params{}
	}
	return &Factory{
		types:     types,
		journal:   j,
		root:      root,
		directory: registry.New[*component.Instance](),
		specs:     make(map[string]Spec),
		busy:      make(map[string]string),
		info:      j.Register(journal.Info, "Factory"),
		logger:    logging.GetLogger("factory"),
	}
}

// Construct creates instanceName from typeName and binds its configuration.
// The instance is kept in the directory even when Assign fails so that
// DestroyAll can release it.
func (f *Factory) Construct(typeName, instanceName string, spec Spec) (string, error) {
	if instanceName == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "instance of type '%s' has no name", typeName).
			WithDetail("type", typeName)
	}
	if f.directory.Has(instanceName) {
		existing, _ := f.directory.Get(instanceName)
		return "", errors.Newf(errors.ErrDuplicateInstance, "instance '%s' already exists", instanceName).
			WithDetail("instance", instanceName).
			WithDetail("type", existing.TypeName())
	}

	ctor, err := f.types.Lookup(typeName)
	if err != nil {
		return "", errors.Wrapf(err, errors.GetErrorCode(err),
			"cannot construct instance '%s'", instanceName).
			WithDetail("instance", instanceName).
			WithDetail("type", typeName)
	}

	inst := component.NewInstance(instanceName, typeName)
	if _, err := f.directory.Register(instanceName, inst); err != nil {
		return "", err
	}
	if spec.Params == nil {
		spec.Params = component.Params{}
	}
	f.specs[instanceName] = spec

	f.logger.Debug().Str("instance", instanceName).Str("type", typeName).Msg("Constructing instance")
	if err := inst.Construct(ctor); err != nil {
		return instanceName, err
	}
	if err := inst.Assign(&binder{factory: f, inst: inst, spec: spec}); err != nil {
		return instanceName, err
	}
	f.info.Printf("constructed %s (%s)\n", instanceName, typeName)
	return instanceName, nil
}

// ConstructAll constructs every declared instance in order and stops at
// the first failure.
func (f *Factory) ConstructAll(instances []config.Instance) error {
	for _, in := range instances {
		spec := Spec{Params: component.Params(in.Params), Refs: in.Refs}
		if _, err := f.Construct(in.Type, in.Name, spec); err != nil {
			return err
		}
	}
	return nil
}

// BuildAll resolves references for every constructed instance. Instances
// that are already built are skipped.
func (f *Factory) BuildAll() error {
	done := logging.LogOperationStart(f.logger, "build-all")
	defer done()

	for _, inst := range f.ordered() {
		if err := f.build(inst); err != nil {
			return err
		}
	}
	return nil
}

// InitialiseAll initialises instances in declaration order. It refuses to
// start unless every instance has been built.
func (f *Factory) InitialiseAll() error {
	insts := f.ordered()
	for _, inst := range insts {
		switch inst.State() {
		case component.StateBuilt, component.StateInitialised, component.StateExecuting:
		default:
			return errors.Newf(errors.ErrPhaseViolation,
				"cannot initialise: instance '%s' is %s, not built", inst.Name(), inst.State()).
				WithDetail("instance", inst.Name()).
				WithDetail("phase", component.PhaseInitialise).
				WithDetail("state", inst.State().String())
		}
	}

	done := logging.LogOperationStart(f.logger, "initialise-all")
	defer done()

	for _, inst := range insts {
		if err := f.initialise(inst); err != nil {
			return err
		}
	}
	return nil
}

// build runs Build for inst unless it is already past it. Peers may call
// it early through Resolver.EnsureBuilt.
func (f *Factory) build(inst *component.Instance) error {
	if inst.State() >= component.StateBuilt && inst.State() != component.StateDestroyed {
		return nil
	}
	if err := f.enter(inst, component.PhaseBuild); err != nil {
		return err
	}
	defer delete(f.busy, inst.Name())

	if err := inst.Build(&resolver{factory: f, from: inst.Name()}); err != nil {
		return err
	}
	f.info.Printf("built %s\n", inst.Name())
	return nil
}

// initialise runs Initialise for a built inst; later states are left alone.
func (f *Factory) initialise(inst *component.Instance) error {
	if inst.State() == component.StateInitialised || inst.State() == component.StateExecuting {
		return nil
	}
	if err := f.enter(inst, component.PhaseInitialise); err != nil {
		return err
	}
	defer delete(f.busy, inst.Name())

	if err := inst.Initialise(); err != nil {
		return err
	}
	f.info.Printf("initialised %s\n", inst.Name())
	return nil
}

// enter marks inst busy in phase. An instance reached again while one of
// its own hooks runs is a reference cycle.
func (f *Factory) enter(inst *component.Instance, phase string) error {
	if running, ok := f.busy[inst.Name()]; ok {
		return errors.Newf(errors.ErrCyclicDependency,
			"instance '%s' was asked to %s while its %s is still running", inst.Name(), phase, running).
			WithDetail("instance", inst.Name()).
			WithDetail("phase", phase)
	}
	f.busy[inst.Name()] = phase
	return nil
}

// ExecuteAll runs Execute on every instance in declaration order.
func (f *Factory) ExecuteAll() error {
	for _, inst := range f.ordered() {
		if err := inst.Execute(); err != nil {
			return err
		}
	}
	return nil
}

// DestroyAll destroys every instance in reverse declaration order,
// whatever its state. All failures are reported together.
func (f *Factory) DestroyAll() error {
	insts := f.ordered()
	var errs []error
	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		if inst.State() == component.StateDestroyed {
			continue
		}
		if err := inst.Destroy(); err != nil {
			f.logger.Error().Err(err).Str("instance", inst.Name()).Msg("Destroy failed")
			errs = append(errs, err)
			continue
		}
		f.logger.Debug().Str("instance", inst.Name()).Msg("Destroyed instance")
	}
	return stderrors.Join(errs...)
}

// Get returns the component of a named instance.
func (f *Factory) Get(name string) (component.Component, error) {
	inst, err := f.Instance(name)
	if err != nil {
		return nil, err
	}
	return inst.Component(), nil
}

// Instance returns the lifecycle wrapper of a named instance.
func (f *Factory) Instance(name string) (*component.Instance, error) {
	inst, err := f.directory.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "no instance named '%s'", name).
			WithDetail("instance", name)
	}
	return inst, nil
}

// Names returns instance names in declaration order.
func (f *Factory) Names() []string {
	return f.directory.Ordered()
}

// Len returns the number of instances.
func (f *Factory) Len() int {
	return f.directory.Count()
}

// Types returns the type registry instances are created from.
func (f *Factory) Types() *registry.TypeRegistry {
	return f.types
}

func (f *Factory) ordered() []*component.Instance {
	names := f.directory.Ordered()
	out := make([]*component.Instance, 0, len(names))
	for _, n := range names {
		out = append(out, registry.MustGet(f.directory, n))
	}
	return out
}
