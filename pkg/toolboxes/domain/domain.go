// Package domain is the geometry and mesh demo toolbox.
package domain

import (
	"math"

	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/toolbox"
	"github.com/arthur-debert/stgcore/pkg/toolboxes/base"
)

// Name is the catalogue name of this toolbox.
const Name = "Domain"

// Registered type names.
const (
	GeometryType    = "Geometry"
	BoxGeometryType = "BoxGeometry"
	MeshType        = "Mesh"
)

// Geometry is what a mesh needs from the instance its geometry
// reference points to.
type Geometry interface {
	Dims() int
	Lengths() []float64
}

// NodeSet is implemented by anything with a fixed number of nodes.
type NodeSet interface {
	NodeCount() int
}

type domainToolbox struct{}

// New creates the toolbox.
func New() toolbox.Toolbox { return &domainToolbox{} }

// Register submits the toolbox and its dependencies to m.
func Register(m *toolbox.Manager) (int, error) {
	if _, err := base.Register(m); err != nil {
		return -1, err
	}
	return m.Submit(Name, New)
}

func (*domainToolbox) Dependencies() string { return base.Name }

func (*domainToolbox) Initialise(env *toolbox.Env) error {
	if err := env.Types.RegisterAbstract(GeometryType, base.ComponentType); err != nil {
		return err
	}
	if err := env.Types.Register(BoxGeometryType, GeometryType, NewBoxGeometry); err != nil {
		return err
	}
	return env.Types.Register(MeshType, base.ComponentType, NewMesh)
}

func (*domainToolbox) Finalise(*toolbox.Env) error { return nil }

// BoxGeometry is an axis-aligned box.
type BoxGeometry struct {
	Dimensions int       `param:"dims"`
	Sizes      []float64 `param:"lengths"`
}

// NewBoxGeometry is the BoxGeometry constructor.
func NewBoxGeometry() component.Component {
	return &BoxGeometry{Dimensions: 2}
}

func (g *BoxGeometry) Dims() int          { return g.Dimensions }
func (g *BoxGeometry) Lengths() []float64 { return g.Sizes }

func (g *BoxGeometry) AssignFromConfig(b component.Binder) error {
	if err := b.Params().Decode(g); err != nil {
		return err
	}
	if g.Dimensions < 1 || g.Dimensions > 3 {
		return errors.Newf(errors.ErrBadParam, "geometry '%s' has %d dimensions, expected 1 to 3", b.InstanceName(), g.Dimensions).
			WithDetail("param", "dims")
	}
	if len(g.Sizes) == 0 {
		g.Sizes = make([]float64, g.Dimensions)
		for i := range g.Sizes {
			g.Sizes[i] = 1
		}
	}
	if len(g.Sizes) != g.Dimensions {
		return errors.Newf(errors.ErrBadParam, "geometry '%s' has %d lengths for %d dimensions", b.InstanceName(), len(g.Sizes), g.Dimensions).
			WithDetail("param", "lengths")
	}
	return nil
}

func (g *BoxGeometry) Build(component.Resolver) error { return nil }
func (g *BoxGeometry) Initialise() error              { return nil }
func (g *BoxGeometry) Execute() error                 { return nil }
func (g *BoxGeometry) Destroy() error                 { return nil }

// Mesh is a regular grid over a geometry.
type Mesh struct {
	resolution  int
	geometryRef component.Ref
	peers       component.Resolver
	geometry    Geometry
	nodes       int
	spacing     []float64
	info        *journal.Stream
}

// NewMesh is the Mesh constructor.
func NewMesh() component.Component { return &Mesh{} }

// NodeCount returns the number of grid nodes once initialised.
func (m *Mesh) NodeCount() int { return m.nodes }

// Spacing returns the cell size along each axis once initialised.
func (m *Mesh) Spacing() []float64 { return m.spacing }

// Geometry returns the geometry the mesh was built on.
func (m *Mesh) Geometry() Geometry { return m.geometry }

func (m *Mesh) AssignFromConfig(b component.Binder) error {
	res, err := b.Params().Int("resolution", 8)
	if err != nil {
		return err
	}
	if res < 1 {
		return errors.Newf(errors.ErrBadParam, "mesh '%s' needs a positive resolution, got %d", b.InstanceName(), res).
			WithDetail("param", "resolution")
	}
	m.resolution = res
	m.info = b.Stream(journal.Info)

	ref, err := b.Reference("geometry")
	m.geometryRef = ref
	return err
}

func (m *Mesh) Build(r component.Resolver) error {
	c, err := r.ResolveKind(m.geometryRef, GeometryType)
	if err != nil {
		return err
	}
	g, ok := c.(Geometry)
	if !ok {
		return errors.Newf(errors.ErrBadParam, "instance '%s' is registered as a %s but has no extent", m.geometryRef.Target, GeometryType).
			WithDetail("reference", m.geometryRef.Target)
	}
	m.geometry = g
	m.peers = r
	return nil
}

func (m *Mesh) Initialise() error {
	if err := m.peers.EnsureInitialised(m.geometryRef); err != nil {
		return err
	}
	dims := m.geometry.Dims()
	m.nodes = int(math.Pow(float64(m.resolution+1), float64(dims)))
	m.spacing = make([]float64, dims)
	for i, l := range m.geometry.Lengths() {
		m.spacing[i] = l / float64(m.resolution)
	}
	m.info.RPrintf("%d nodes over %d dimension(s)\n", m.nodes, dims)
	return nil
}

func (m *Mesh) Execute() error { return nil }

func (m *Mesh) Destroy() error {
	m.geometry = nil
	m.spacing = nil
	m.peers = nil
	return nil
}
