package registry

import (
	"reflect"
	"sync"

	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/logging"
)

// Kind tags what a registered type name can be used for.
type Kind int

const (
	// KindConcrete types have a constructor and can be instantiated.
	KindConcrete Kind = iota
	// KindAbstract types only exist as parents in the hierarchy.
	KindAbstract
	// KindStub types are placeholders that do no work.
	KindStub
)

func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindAbstract:
		return "abstract"
	case KindStub:
		return "stub"
	default:
		return "unknown"
	}
}

// TypeEntry is one registered component type.
type TypeEntry struct {
	Name        string
	Parent      string
	Constructor component.Constructor
	Kind        Kind
	// Owner is the toolbox that registered the type, if any.
	Owner string
}

// IsStub reports whether the entry was registered as a stub.
func (e *TypeEntry) IsStub() bool { return e.Kind == KindStub }

// TypeRegistrar is the write side of the type registry handed to toolboxes.
type TypeRegistrar interface {
	Register(name, parent string, ctor component.Constructor) error
	RegisterAbstract(name, parent string) error
	RegisterStub(name string) error
}

// TypeRegistry maps type names to constructors and single parents.
//
// Registration happens on the startup goroutine; afterwards the registry
// is read-only. The lock only makes concurrent readers safe.
type TypeRegistry struct {
	mu      sync.RWMutex
	entries Registry[*TypeEntry]
}

// NewTypeRegistry returns an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{entries: New[*TypeEntry]()}
}

// Register adds a concrete type. Registering the same name again with the
// same constructor and parent is a no-op; anything else is DUPLICATE_TYPE.
func (t *TypeRegistry) Register(name, parent string, ctor component.Constructor) error {
	if ctor == nil {
		return errors.Newf(errors.ErrInvalidInput, "type '%s' registered without a constructor", name).
			WithDetail("type", name)
	}
	return t.add(&TypeEntry{Name: name, Parent: parent, Constructor: ctor, Kind: KindConcrete})
}

// RegisterAbstract adds a type that can only be used as a parent.
func (t *TypeRegistry) RegisterAbstract(name, parent string) error {
	return t.add(&TypeEntry{Name: name, Parent: parent, Kind: KindAbstract})
}

// RegisterStub adds a placeholder type backed by component.NewStub.
func (t *TypeRegistry) RegisterStub(name string) error {
	return t.add(&TypeEntry{Name: name, Constructor: component.NewStub, Kind: KindStub})
}

// Owned returns a registrar that stamps every entry with the given owner.
func (t *TypeRegistry) Owned(owner string) TypeRegistrar {
	return &ownedRegistrar{types: t, owner: owner}
}

func (t *TypeRegistry) add(entry *TypeEntry) error {
	logger := logging.GetLogger("registry.types")

	if entry.Name == "" {
		return errors.New(errors.ErrInvalidInput, "type name cannot be empty")
	}
	if entry.Parent == entry.Name {
		return errors.Newf(errors.ErrInvalidInput, "type '%s' cannot be its own parent", entry.Name).
			WithDetail("type", entry.Name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	existing, err := t.entries.Get(entry.Name)
	if err == nil {
		if sameEntry(existing, entry) {
			logger.Trace().Str("type", entry.Name).Msg("Type already registered, ignoring")
			return nil
		}
		return errors.Newf(errors.ErrDuplicateType,
			"type '%s' is already registered with a different definition", entry.Name).
			WithDetail("type", entry.Name).
			WithDetail("owner", existing.Owner)
	}

	if _, err := t.entries.Register(entry.Name, entry); err != nil {
		return err
	}
	logger.Debug().
		Str("type", entry.Name).
		Str("parent", entry.Parent).
		Str("kind", entry.Kind.String()).
		Str("owner", entry.Owner).
		Msg("Registered type")
	return nil
}

// Lookup returns the constructor for a concrete or stub type.
func (t *TypeRegistry) Lookup(name string) (component.Constructor, error) {
	entry, err := t.Entry(name)
	if err != nil {
		return nil, err
	}
	if entry.Kind == KindAbstract {
		return nil, errors.Newf(errors.ErrUnknownType, "type '%s' is abstract and cannot be constructed", name).
			WithDetail("type", name).
			WithDetail("abstract", true)
	}
	return entry.Constructor, nil
}

// Entry returns the full registry entry for a type.
func (t *TypeRegistry) Entry(name string) (*TypeEntry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, err := t.entries.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrUnknownType, "type '%s' is not registered", name).
			WithDetail("type", name)
	}
	return entry, nil
}

// Has reports whether a type name is registered.
func (t *TypeRegistry) Has(name string) bool {
	return t.entries.Has(name)
}

// IsA walks the parent chain of name looking for ancestor. A type is
// always an instance of itself. Parents that are not registered end the
// walk, so the answer is computed from whatever is known at query time.
func (t *TypeRegistry) IsA(name, ancestor string) bool {
	for _, n := range t.Ancestry(name) {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Ancestry returns name followed by its parents up to the root. Unknown
// names yield an empty slice.
func (t *TypeRegistry) Ancestry(name string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var chain []string
	// The walk is bounded by the number of entries so a corrupt chain
	// cannot loop forever.
	limit := t.entries.Count() + 1
	current := name
	for i := 0; i < limit && current != ""; i++ {
		entry, err := t.entries.Get(current)
		if err != nil {
			if i > 0 {
				// Unregistered parent: still part of the declared chain.
				chain = append(chain, current)
			}
			break
		}
		chain = append(chain, entry.Name)
		current = entry.Parent
	}
	return chain
}

// Names returns all registered type names, sorted.
func (t *TypeRegistry) Names() []string {
	return t.entries.List()
}

// Children returns the types whose direct parent is name, sorted.
func (t *TypeRegistry) Children(name string) []string {
	var children []string
	for _, n := range t.Names() {
		if entry, err := t.Entry(n); err == nil && entry.Parent == name {
			children = append(children, n)
		}
	}
	return children
}

// Count returns the number of registered types.
func (t *TypeRegistry) Count() int {
	return t.entries.Count()
}

func sameEntry(a, b *TypeEntry) bool {
	return a.Parent == b.Parent && a.Kind == b.Kind && sameConstructor(a.Constructor, b.Constructor)
}

// sameConstructor compares constructors by code pointer. Closures created
// from the same function literal share a pointer and compare equal.
func sameConstructor(a, b component.Constructor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

type ownedRegistrar struct {
	types *TypeRegistry
	owner string
}

func (o *ownedRegistrar) Register(name, parent string, ctor component.Constructor) error {
	if ctor == nil {
		return errors.Newf(errors.ErrInvalidInput, "type '%s' registered without a constructor", name).
			WithDetail("type", name)
	}
	return o.types.add(&TypeEntry{Name: name, Parent: parent, Constructor: ctor, Kind: KindConcrete, Owner: o.owner})
}

func (o *ownedRegistrar) RegisterAbstract(name, parent string) error {
	return o.types.add(&TypeEntry{Name: name, Parent: parent, Kind: KindAbstract, Owner: o.owner})
}

func (o *ownedRegistrar) RegisterStub(name string) error {
	return o.types.add(&TypeEntry{Name: name, Constructor: component.NewStub, Kind: KindStub, Owner: o.owner})
}
