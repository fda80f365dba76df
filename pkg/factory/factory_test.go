package factory_test

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/config"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/factory"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// events records lifecycle calls across all test components.
type events []string

type geometry struct {
	log   *events
	name  string
	dims  int
	built bool
}

func (g *geometry) AssignFromConfig(b component.Binder) error {
	g.name = b.InstanceName()
	d, err := b.Params().Int("dims", 2)
	g.dims = d
	*g.log = append(*g.log, "assign:"+g.name)
	return err
}
func (g *geometry) Build(component.Resolver) error {
	g.built = true
	*g.log = append(*g.log, "build:"+g.name)
	return nil
}
func (g *geometry) Initialise() error {
	*g.log = append(*g.log, "init:"+g.name)
	return nil
}
func (g *geometry) Execute() error {
	*g.log = append(*g.log, "exec:"+g.name)
	return nil
}
func (g *geometry) Destroy() error {
	*g.log = append(*g.log, "destroy:"+g.name)
	return nil
}

type mesh struct {
	log         *events
	name        string
	geometryRef component.Ref
	geometry    *geometry
	sawBuilt    bool
}

func (m *mesh) AssignFromConfig(b component.Binder) error {
	m.name = b.InstanceName()
	ref, err := b.Reference("geometry")
	m.geometryRef = ref
	*m.log = append(*m.log, "assign:"+m.name)
	return err
}
func (m *mesh) Build(r component.Resolver) error {
	c, err := r.ResolveKind(m.geometryRef, "Geometry")
	if err != nil {
		return err
	}
	m.geometry = c.(*geometry)
	*m.log = append(*m.log, "build:"+m.name)
	return nil
}
func (m *mesh) Initialise() error {
	m.sawBuilt = m.geometry.built
	*m.log = append(*m.log, "init:"+m.name)
	return nil
}
func (m *mesh) Execute() error {
	*m.log = append(*m.log, "exec:"+m.name)
	return nil
}
func (m *mesh) Destroy() error {
	*m.log = append(*m.log, "destroy:"+m.name)
	return nil
}

type failing struct {
	component.Stub
	phase string
}

func (f *failing) Build(component.Resolver) error {
	if f.phase == "build" {
		return stderrors.New("cannot build")
	}
	return nil
}

func (f *failing) Destroy() error {
	if f.phase == "destroy" {
		return stderrors.New("cannot destroy")
	}
	return nil
}

// eager brings its peer forward from its own Build and Initialise.
type eager struct {
	component.Stub
	log     *events
	name    string
	peerRef component.Ref
	peers   component.Resolver
}

func (e *eager) AssignFromConfig(b component.Binder) error {
	e.name = b.InstanceName()
	e.peerRef = b.OptionalReference("peer")
	return nil
}
func (e *eager) Build(r component.Resolver) error {
	if err := r.EnsureBuilt(e.peerRef); err != nil {
		return err
	}
	e.peers = r
	*e.log = append(*e.log, "build:"+e.name)
	return nil
}
func (e *eager) Initialise() error {
	if err := e.peers.EnsureInitialised(e.peerRef); err != nil {
		return err
	}
	*e.log = append(*e.log, "init:"+e.name)
	return nil
}

func setup(t *testing.T) (*factory.Factory, *events) {
	t.Helper()
	log := &events{}
	types := registry.NewTypeRegistry()
	require.NoError(t, types.RegisterAbstract("Geometry", ""))
	require.NoError(t, types.Register("BoxGeometry", "Geometry", func() component.Component { return &geometry{log: log} }))
	require.NoError(t, types.Register("Mesh", "", func() component.Component { return &mesh{log: log} }))
	require.NoError(t, types.Register("FailingBuild", "", func() component.Component { return &failing{phase: "build"} }))
	require.NoError(t, types.Register("FailingDestroy", "", func() component.Component { return &failing{phase: "destroy"} }))
	require.NoError(t, types.RegisterStub("Placeholder"))
	require.NoError(t, types.Register("Eager", "", func() component.Component { return &eager{log: log} }))
	return factory.New(types, nil, component.Params{"maxTimeSteps": 5}), log
}

func TestForwardReference(t *testing.T) {
	f, log := setup(t)

	_, err := f.Construct("Mesh", "m1", factory.Spec{Refs: map[string]string{"geometry": "g1"}})
	require.NoError(t, err)
	_, err = f.Construct("BoxGeometry", "g1", factory.Spec{Params: component.Params{"dims": 3}})
	require.NoError(t, err)

	require.NoError(t, f.BuildAll())
	require.NoError(t, f.InitialiseAll())

	c, err := f.Get("m1")
	require.NoError(t, err)
	m := c.(*mesh)
	g, _ := f.Get("g1")
	assert.Same(t, g, component.Component(m.geometry))
	assert.Equal(t, 3, m.geometry.dims)
	assert.True(t, m.sawBuilt, "every instance is built before any is initialised")

	assert.Equal(t, events{
		"assign:m1", "assign:g1",
		"build:m1", "build:g1",
		"init:m1", "init:g1",
	}, *log)
}

func TestPeerPhasesOnDemand(t *testing.T) {
	f, log := setup(t)

	_, err := f.Construct("Eager", "e1", factory.Spec{Refs: map[string]string{"peer": "g1"}})
	require.NoError(t, err)
	_, err = f.Construct("BoxGeometry", "g1", factory.Spec{})
	require.NoError(t, err)
	_, err = f.Construct("Eager", "lonely", factory.Spec{})
	require.NoError(t, err)

	require.NoError(t, f.BuildAll())
	require.NoError(t, f.InitialiseAll())

	assert.Equal(t, events{
		"assign:g1",
		"build:g1", "build:e1", "build:lonely",
		"init:g1", "init:e1", "init:lonely",
	}, *log)
	for _, name := range f.Names() {
		inst, err := f.Instance(name)
		require.NoError(t, err)
		assert.Equal(t, component.StateInitialised, inst.State(), name)
	}
}

func TestPeerCycle(t *testing.T) {
	f, _ := setup(t)

	_, err := f.Construct("Eager", "e1", factory.Spec{Refs: map[string]string{"peer": "e2"}})
	require.NoError(t, err)
	_, err = f.Construct("Eager", "e2", factory.Spec{Refs: map[string]string{"peer": "e1"}})
	require.NoError(t, err)

	err = f.BuildAll()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCyclicDependency))
	assert.True(t, errors.IsErrorCode(err, errors.ErrComponentPhase))

	inst, _ := f.Instance("e1")
	assert.Equal(t, component.StateConfigBound, inst.State())
	require.NoError(t, f.DestroyAll())
}

func TestConstructErrors(t *testing.T) {
	f, _ := setup(t)
	_, err := f.Construct("BoxGeometry", "g1", factory.Spec{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		typeName string
		instance string
		code     errors.ErrorCode
	}{
		{"duplicate_instance", "BoxGeometry", "g1", errors.ErrDuplicateInstance},
		{"unknown_type", "Sphere", "s1", errors.ErrUnknownType},
		{"abstract_type", "Geometry", "a1", errors.ErrUnknownType},
		{"empty_name", "BoxGeometry", "", errors.ErrInvalidInput},
		{"missing_reference", "Mesh", "m1", errors.ErrMissingParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Construct(tt.typeName, tt.instance, factory.Spec{})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}

	// A duplicate must not replace the original instance.
	inst, err := f.Instance("g1")
	require.NoError(t, err)
	assert.Equal(t, "BoxGeometry", inst.TypeName())
}

func TestUnresolvedReference(t *testing.T) {
	f, _ := setup(t)
	_, err := f.Construct("Mesh", "m1", factory.Spec{Refs: map[string]string{"geometry": "g9"}})
	require.NoError(t, err)

	err = f.BuildAll()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedReference))
	assert.Contains(t, err.Error(), "g9")
	assert.Contains(t, err.Error(), "m1")
}

func TestReferenceOfWrongKind(t *testing.T) {
	f, _ := setup(t)
	_, err := f.Construct("Placeholder", "p1", factory.Spec{})
	require.NoError(t, err)
	_, err = f.Construct("Mesh", "m1", factory.Spec{Params: component.Params{"geometry": "p1"}})
	require.NoError(t, err, "references may be given as plain params")

	err = f.BuildAll()
	assert.True(t, errors.IsErrorCode(err, errors.ErrBadParam))
}

func TestPhaseDiscipline(t *testing.T) {
	f, _ := setup(t)
	_, err := f.Construct("BoxGeometry", "g1", factory.Spec{})
	require.NoError(t, err)

	t.Run("initialise_before_build", func(t *testing.T) {
		err := f.InitialiseAll()
		assert.True(t, errors.IsErrorCode(err, errors.ErrPhaseViolation))
	})

	t.Run("execute_before_initialise", func(t *testing.T) {
		require.NoError(t, f.BuildAll())
		err := f.ExecuteAll()
		assert.True(t, errors.IsErrorCode(err, errors.ErrPhaseViolation))
	})

	t.Run("build_all_twice_builds_once", func(t *testing.T) {
		require.NoError(t, f.BuildAll())
		require.NoError(t, f.InitialiseAll())
		require.NoError(t, f.InitialiseAll())
	})

	t.Run("execute_repeatedly", func(t *testing.T) {
		require.NoError(t, f.ExecuteAll())
		require.NoError(t, f.ExecuteAll())
		inst, _ := f.Instance("g1")
		assert.Equal(t, 2, inst.Executions())
	})
}

func TestDestroyAll(t *testing.T) {
	t.Run("reverse_order_idempotent", func(t *testing.T) {
		f, log := setup(t)
		_, _ = f.Construct("BoxGeometry", "g1", factory.Spec{})
		_, _ = f.Construct("Mesh", "m1", factory.Spec{Refs: map[string]string{"geometry": "g1"}})
		require.NoError(t, f.BuildAll())
		*log = nil

		require.NoError(t, f.DestroyAll())
		require.NoError(t, f.DestroyAll())
		assert.Equal(t, events{"destroy:m1", "destroy:g1"}, *log)
	})

	t.Run("after_failed_build", func(t *testing.T) {
		f, log := setup(t)
		_, _ = f.Construct("BoxGeometry", "g1", factory.Spec{})
		_, _ = f.Construct("FailingBuild", "bad", factory.Spec{})
		_, _ = f.Construct("BoxGeometry", "g2", factory.Spec{})

		err := f.BuildAll()
		assert.True(t, errors.IsErrorCode(err, errors.ErrComponentPhase))
		*log = nil

		require.NoError(t, f.DestroyAll())
		assert.Equal(t, events{"destroy:g2", "destroy:g1"}, *log)
		for _, name := range f.Names() {
			inst, _ := f.Instance(name)
			assert.Equal(t, component.StateDestroyed, inst.State(), name)
		}
	})

	t.Run("errors_joined_and_all_destroyed", func(t *testing.T) {
		f, log := setup(t)
		_, _ = f.Construct("BoxGeometry", "g1", factory.Spec{})
		_, _ = f.Construct("FailingDestroy", "bad", factory.Spec{})
		*log = nil

		err := f.DestroyAll()
		assert.True(t, errors.IsErrorCode(err, errors.ErrComponentPhase))
		assert.Equal(t, events{"destroy:g1"}, *log)
	})
}

func TestConstructAll(t *testing.T) {
	f, _ := setup(t)
	err := f.ConstructAll([]config.Instance{
		{Name: "m1", Type: "Mesh", Refs: map[string]string{"geometry": "g1"}},
		{Name: "g1", Type: "BoxGeometry", Params: map[string]interface{}{"dims": "3"}},
		{Name: "x", Type: "Unknown"},
		{Name: "never", Type: "BoxGeometry"},
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownType))
	assert.Equal(t, []string{"m1", "g1"}, f.Names())
	assert.Equal(t, 2, f.Len())

	_, err = f.Get("never")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestInstanceStreams(t *testing.T) {
	var out bytes.Buffer
	j := journal.New(journal.WithSink(journal.NewTextSink(&out, &out)))
	types := registry.NewTypeRegistry()

	var got *journal.Stream
	require.NoError(t, types.Register("Sensor", "", func() component.Component {
		return &sensor{onAssign: func(b component.Binder) {
			got = b.Stream(journal.Info)
			root, _ := b.Root().Int("maxTimeSteps", 0)
			got.Printf("steps=%d\n", root)
		}}
	}))

	f := factory.New(types, j, component.Params{"maxTimeSteps": 7})
	_, err := f.Construct("Sensor", "p1", factory.Spec{})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "Sensor.p1", got.Name())
	assert.Equal(t, "Sensor", got.Parent().Name())
	assert.Contains(t, out.String(), "steps=7")
}

type sensor struct {
	component.Stub
	onAssign func(component.Binder)
}

func (p *sensor) AssignFromConfig(b component.Binder) error {
	p.onAssign(b)
	return nil
}
