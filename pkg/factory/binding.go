package factory

import (
	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
)

type binder struct {
	factory *Factory
	inst    *component.Instance
	spec    Spec
}

func (b *binder) InstanceName() string     { return b.inst.Name() }
func (b *binder) TypeName() string         { return b.inst.TypeName() }
func (b *binder) Params() component.Params { return b.spec.Params }
func (b *binder) Root() component.Params   { return b.factory.root }

// Reference looks in Refs first and falls back to a string parameter of
// the same name, which is how references appear in XML inputs.
func (b *binder) Reference(field string) (component.Ref, error) {
	ref := b.OptionalReference(field)
	if ref.IsZero() {
		return ref, errors.Newf(errors.ErrMissingParam,
			"instance '%s' requires a reference '%s'", b.inst.Name(), field).
			WithDetail("instance", b.inst.Name()).
			WithDetail("param", field)
	}
	return ref, nil
}

func (b *binder) OptionalReference(field string) component.Ref {
	if target, ok := b.spec.Refs[field]; ok && target != "" {
		return component.Ref{Field: field, Target: target}
	}
	if target, ok := b.spec.Params[field].(string); ok && target != "" {
		return component.Ref{Field: field, Target: target}
	}
	return component.Ref{Field: field}
}

func (b *binder) Stream(c journal.Category) *journal.Stream {
	return b.factory.journal.Register(c, b.inst.TypeName()+"."+b.inst.Name())
}

type resolver struct {
	factory *Factory
	from    string
}

func (r *resolver) Resolve(ref component.Ref) (component.Component, error) {
	inst, err := r.peer(ref)
	if err != nil || inst == nil {
		return nil, err
	}
	return inst.Component(), nil
}

func (r *resolver) ResolveKind(ref component.Ref, typeName string) (component.Component, error) {
	c, err := r.Resolve(ref)
	if err != nil || c == nil {
		return c, err
	}
	target, _ := r.factory.directory.Get(ref.Target)
	if !r.factory.types.IsA(target.TypeName(), typeName) {
		return nil, errors.Newf(errors.ErrBadParam,
			"instance '%s' references '%s' of type %s, expected a %s",
			r.from, ref.Target, target.TypeName(), typeName).
			WithDetail("instance", r.from).
			WithDetail("reference", ref.Target).
			WithDetail("field", ref.Field)
	}
	return c, nil
}

func (r *resolver) EnsureBuilt(ref component.Ref) error {
	inst, err := r.peer(ref)
	if err != nil || inst == nil {
		return err
	}
	return r.factory.build(inst)
}

func (r *resolver) EnsureInitialised(ref component.Ref) error {
	inst, err := r.peer(ref)
	if err != nil || inst == nil {
		return err
	}
	if err := r.factory.build(inst); err != nil {
		return err
	}
	return r.factory.initialise(inst)
}

func (r *resolver) peer(ref component.Ref) (*component.Instance, error) {
	if ref.IsZero() {
		return nil, nil
	}
	inst, err := r.factory.directory.Get(ref.Target)
	if err != nil || inst.Component() == nil || inst.State() == component.StateDestroyed {
		return nil, r.unresolved(ref)
	}
	return inst, nil
}

func (r *resolver) unresolved(ref component.Ref) error {
	return errors.Newf(errors.ErrUnresolvedReference,
		"instance '%s' references '%s' through '%s', which was never constructed",
		r.from, ref.Target, ref.Field).
		WithDetail("instance", r.from).
		WithDetail("reference", ref.Target).
		WithDetail("field", ref.Field)
}
