// Package fem is the field-variable demo toolbox.
package fem

import (
	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/toolbox"
	"github.com/arthur-debert/stgcore/pkg/toolboxes/base"
	"github.com/arthur-debert/stgcore/pkg/toolboxes/domain"
)

// Name is the catalogue name of this toolbox.
const Name = "FEM"

// FeVariableType is the registered name of FeVariable.
const FeVariableType = "FeVariable"

type femToolbox struct{}

// New creates the toolbox.
func New() toolbox.Toolbox { return &femToolbox{} }

// Register submits the toolbox and its dependencies to m.
func Register(m *toolbox.Manager) (int, error) {
	if _, err := domain.Register(m); err != nil {
		return -1, err
	}
	return m.Submit(Name, New)
}

func (*femToolbox) Dependencies() string { return domain.Name }

func (*femToolbox) Initialise(env *toolbox.Env) error {
	return env.Types.Register(FeVariableType, base.ComponentType, NewFeVariable)
}

func (*femToolbox) Finalise(*toolbox.Env) error { return nil }

// FeVariable holds dofs values per node of a mesh and advances them on
// every step.
type FeVariable struct {
	meshRef component.Ref
	peers   component.Resolver
	mesh    domain.NodeSet
	dofs    int
	initial float64
	values  []float64
	steps   int
	info    *journal.Stream
}

// NewFeVariable is the FeVariable constructor.
func NewFeVariable() component.Component { return &FeVariable{} }

// Values returns the current field values.
func (v *FeVariable) Values() []float64 { return v.values }

// Steps returns the number of executed steps.
func (v *FeVariable) Steps() int { return v.steps }

func (v *FeVariable) AssignFromConfig(b component.Binder) error {
	p := b.Params()
	dofs, err := p.Int("dofs", 1)
	if err != nil {
		return err
	}
	if dofs < 1 {
		return errors.Newf(errors.ErrBadParam, "variable '%s' needs at least one dof, got %d", b.InstanceName(), dofs).
			WithDetail("param", "dofs")
	}
	if v.initial, err = p.Float("initial", 0); err != nil {
		return err
	}
	v.dofs = dofs
	v.info = b.Stream(journal.Info)

	v.meshRef, err = b.Reference("mesh")
	return err
}

func (v *FeVariable) Build(r component.Resolver) error {
	mesh, err := component.ResolveAs[domain.NodeSet](r, v.meshRef)
	if err != nil {
		return err
	}
	v.mesh = mesh
	v.peers = r
	return nil
}

func (v *FeVariable) Initialise() error {
	// the node count is only known once the mesh is initialised
	if err := v.peers.EnsureInitialised(v.meshRef); err != nil {
		return err
	}
	v.values = make([]float64, v.mesh.NodeCount()*v.dofs)
	for i := range v.values {
		v.values[i] = v.initial
	}
	return nil
}

func (v *FeVariable) Execute() error {
	v.steps++
	for i := range v.values {
		v.values[i]++
	}
	v.info.RPrintf("step %d: %d values\n", v.steps, len(v.values))
	return nil
}

func (v *FeVariable) Destroy() error {
	v.values = nil
	v.mesh = nil
	v.peers = nil
	return nil
}
