package component

import (
	"reflect"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
)

// Component is implemented by every component variant, one method per
// lifecycle phase after construction.
type Component interface {
	// AssignFromConfig binds parameters and records references by name.
	AssignFromConfig(b Binder) error
	// Build resolves recorded references to live peers.
	Build(r Resolver) error
	// Initialise computes state that depends on built peers.
	Initialise() error
	// Execute runs the steady-state operation.
	Execute() error
	// Destroy releases resources.
	Destroy() error
}

// Constructor allocates a default instance of a component type.
type Constructor func() Component

// Binder is what a component sees while its configuration is assigned.
type Binder interface {
	// InstanceName is the unique name of the instance being configured.
	InstanceName() string
	// TypeName is the registered type the instance was created from.
	TypeName() string
	// Params are the instance's own parameters.
	Params() Params
	// Root holds the run-wide parameters shared by all instances.
	Root() Params
	// Reference returns the tentative reference stored under field.
	// A missing field is MISSING_PARAM.
	Reference(field string) (Ref, error)
	// OptionalReference returns a zero Ref when field is absent.
	OptionalReference(field string) Ref
	// Stream returns this instance's stream in a category.
	Stream(c journal.Category) *journal.Stream
}

// Resolver turns references into live components during Build.
type Resolver interface {
	// Resolve returns the instance a reference names. A zero Ref resolves
	// to nil without error; a name that was never constructed is
	// UNRESOLVED_REFERENCE.
	Resolve(ref Ref) (Component, error)
	// ResolveKind is Resolve plus a check that the target's type is, or
	// descends from, typeName.
	ResolveKind(ref Ref, typeName string) (Component, error)
	// EnsureBuilt builds the referenced instance now if it is not built
	// yet. A zero Ref is a no-op.
	EnsureBuilt(ref Ref) error
	// EnsureInitialised builds and initialises the referenced instance now
	// if needed, so Initialise may read state its peer computes in its own
	// Initialise. It does nothing for an instance already initialised.
	// A resolver stays usable after Build returns.
	EnsureInitialised(ref Ref) error
}

// Ref is a tentative reference from one instance to another by name.
type Ref struct {
	// Field is the configuration key the reference was read from.
	Field string
	// Target is the instance name it points to.
	Target string
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool { return r.Target == "" }

func (r Ref) String() string {
	if r.IsZero() {
		return "<none>"
	}
	return r.Field + "->" + r.Target
}

// ResolveAs resolves ref and asserts the result implements T. An unset
// optional reference yields the zero T.
func ResolveAs[T any](r Resolver, ref Ref) (T, error) {
	var zero T
	c, err := r.Resolve(ref)
	if err != nil || c == nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, errors.Newf(errors.ErrBadParam,
			"reference %s points to an instance that does not provide %s", ref, reflect.TypeOf((*T)(nil)).Elem()).
			WithDetail("reference", ref.Target).
			WithDetail("field", ref.Field)
	}
	return typed, nil
}
