package component

// Stub is a component that does nothing in every phase. Toolboxes with no
// state of their own register it through TypeRegistry.RegisterStub so it
// is tagged as a stub rather than recognised by convention.
type Stub struct{}

// NewStub is the constructor registered for stub types.
func NewStub() Component { return &Stub{} }

func (*Stub) AssignFromConfig(Binder) error { return nil }
func (*Stub) Build(Resolver) error          { return nil }
func (*Stub) Initialise() error             { return nil }
func (*Stub) Execute() error                { return nil }
func (*Stub) Destroy() error                { return nil }
