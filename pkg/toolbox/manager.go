package toolbox

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/logging"
	"github.com/arthur-debert/stgcore/pkg/registry"
	"github.com/rs/zerolog"
)

type entry struct {
	name    string
	ctor    Constructor
	toolbox Toolbox
	deps    []string
}

// Manager is the toolbox catalogue of one process.
//
// It is driven from a single goroutine during startup and shutdown.
// Toolbox hooks may call back into the manager to submit or initialise
// other toolboxes.
type Manager struct {
	catalogue    registry.Registry[*entry]
	types        *registry.TypeRegistry
	journal      *journal.Journal
	args         []string
	initialised  map[string]bool
	initialising map[string]bool
	// inProgress lists the toolboxes whose hooks are running, outermost first.
	inProgress   []string
	initOrder    []string
	info         *journal.Stream
	logger       zerolog.Logger
}

// NewManager creates an empty catalogue that initialises toolboxes
// against types and j.
func NewManager(types *registry.TypeRegistry, j *journal.Journal, args []string) *Manager {
	if types == nil {
		types = registry.NewTypeRegistry()
	}
	if j == nil {
		j = journal.New()
	}
	return &Manager{
		catalogue:    registry.New[*entry](),
		types:        types,
		journal:      j,
		args:         args,
		initialised:  make(map[string]bool),
		initialising: make(map[string]bool),
		info:         j.Register(journal.Info, "Toolbox"),
		logger:       logging.GetLogger("toolbox"),
	}
}

// Submit adds a toolbox to the catalogue and returns its index.
// Submitting the same name with the same constructor returns the existing
// index; a different constructor is DUPLICATE_TOOLBOX.
func (m *Manager) Submit(name string, ctor Constructor) (int, error) {
	if ctor == nil {
		return -1, errors.Newf(errors.ErrInvalidInput, "toolbox '%s' submitted without a constructor", name).
			WithDetail("toolbox", name)
	}

	if existing, err := m.catalogue.Get(name); err == nil {
		idx := m.catalogue.Index(name)
		if reflect.ValueOf(existing.ctor).Pointer() == reflect.ValueOf(ctor).Pointer() {
			return idx, nil
		}
		return idx, errors.Newf(errors.ErrDuplicateToolbox,
			"toolbox '%s' is already submitted with a different constructor", name).
			WithDetail("toolbox", name)
	}

	tb := ctor()
	if tb == nil {
		return -1, errors.Newf(errors.ErrInvalidInput, "constructor of toolbox '%s' returned nil", name).
			WithDetail("toolbox", name)
	}

	e := &entry{
		name:    name,
		ctor:    ctor,
		toolbox: tb,
		deps:    ParseDependencies(tb.Dependencies()),
	}
	idx, err := m.catalogue.Register(name, e)
	if err != nil {
		return idx, err
	}
	m.logger.Debug().Str("toolbox", name).Int("index", idx).Strs("deps", e.deps).Msg("Toolbox submitted")
	return idx, nil
}

// EnsureInitialised initialises name and everything it depends on.
// Already-initialised toolboxes are skipped, so calling it again does no
// work. The whole pending dependency closure is checked before any hook
// runs: an unknown name or a cycle leaves nothing newly initialised.
//
// A hook asking for its own toolbox is a no-op. A hook asking for a
// toolbox that depends on one still initialising is CYCLIC_DEPENDENCY.
func (m *Manager) EnsureInitialised(name string) error {
	if m.initialised[name] || m.initialising[name] {
		return nil
	}
	if !m.catalogue.Has(name) {
		return errors.Newf(errors.ErrUnknownToolbox, "toolbox '%s' is not in the catalogue", name).
			WithDetail("toolbox", name)
	}

	if err := m.validate(name, nil, make(map[string]bool)); err != nil {
		m.logger.Error().Err(err).Str("toolbox", name).Msg("Toolbox dependencies are invalid")
		return err
	}
	return m.initialise(name)
}

// LoadAll initialises the named toolboxes in order.
func (m *Manager) LoadAll(names []string) error {
	for _, name := range names {
		if err := m.EnsureInitialised(name); err != nil {
			return err
		}
	}
	return nil
}

// validate walks the not-yet-initialised dependency closure of name.
// path holds the current walk; checked holds names whose closure is known
// to be sound.
func (m *Manager) validate(name string, path []string, checked map[string]bool) error {
	if m.initialised[name] || checked[name] {
		return nil
	}
	if m.initialising[name] {
		return m.inProgressCycle(name, path)
	}
	for i, p := range path {
		if p == name {
			cycle := append(append([]string{}, path[i:]...), name)
			return errors.Newf(errors.ErrCyclicDependency,
				"toolbox dependency cycle: %s", strings.Join(cycle, " -> ")).
				WithDetail("toolbox", name).
				WithDetail("cycle", cycle)
		}
	}

	e, err := m.catalogue.Get(name)
	if err != nil {
		from := ""
		if len(path) > 0 {
			from = path[len(path)-1]
		}
		return errors.Newf(errors.ErrUnknownDependency,
			"toolbox '%s' depends on '%s', which is not in the catalogue", from, name).
			WithDetail("toolbox", from).
			WithDetail("dependency", name)
	}

	path = append(path, name)
	for _, dep := range e.deps {
		if err := m.validate(dep, path, checked); err != nil {
			return err
		}
	}
	checked[name] = true
	return nil
}

// inProgressCycle reports a dependency on name, whose hook has not
// returned yet. The cycle runs from name through the hooks above it and
// the walk in path.
func (m *Manager) inProgressCycle(name string, path []string) error {
	var cycle []string
	for i, p := range m.inProgress {
		if p == name {
			cycle = append(cycle, m.inProgress[i:]...)
			break
		}
	}
	cycle = append(append(cycle, path...), name)
	return errors.Newf(errors.ErrCyclicDependency,
		"toolbox dependency cycle through initialising '%s': %s", name, strings.Join(cycle, " -> ")).
		WithDetail("toolbox", name).
		WithDetail("cycle", cycle)
}

func (m *Manager) initialise(name string) error {
	if m.initialised[name] || m.initialising[name] {
		return nil
	}
	e := registry.MustGet(m.catalogue, name)

	m.initialising[name] = true
	m.inProgress = append(m.inProgress, name)
	defer func() {
		delete(m.initialising, name)
		m.inProgress = m.inProgress[:len(m.inProgress)-1]
	}()

	for _, dep := range e.deps {
		if err := m.initialise(dep); err != nil {
			return err
		}
	}

	m.info.Printf("initialising toolbox %s\n", name)
	if err := e.toolbox.Initialise(m.env(name)); err != nil {
		return errors.Wrapf(err, errors.ErrToolboxInit, "toolbox '%s' failed to initialise", name).
			WithDetail("toolbox", name)
	}

	m.initialised[name] = true
	m.initOrder = append(m.initOrder, name)
	m.logger.Debug().Str("toolbox", name).Int("position", len(m.initOrder)).Msg("Toolbox initialised")
	return nil
}

// FinaliseAll finalises initialised toolboxes in reverse initialisation
// order, once each. Toolboxes that never finished initialising are
// skipped. Every hook runs even if an earlier one fails.
func (m *Manager) FinaliseAll() error {
	var errs []error
	for i := len(m.initOrder) - 1; i >= 0; i-- {
		name := m.initOrder[i]
		if !m.initialised[name] {
			continue
		}
		e := registry.MustGet(m.catalogue, name)
		delete(m.initialised, name)

		if err := e.toolbox.Finalise(m.env(name)); err != nil {
			m.logger.Error().Err(err).Str("toolbox", name).Msg("Toolbox failed to finalise")
			errs = append(errs, errors.Wrapf(err, errors.ErrToolboxFinalise, "toolbox '%s' failed to finalise", name).
				WithDetail("toolbox", name))
			continue
		}
		m.logger.Debug().Str("toolbox", name).Msg("Toolbox finalised")
	}
	m.initOrder = nil
	return stderrors.Join(errs...)
}

func (m *Manager) env(name string) *Env {
	return &Env{
		Name:     name,
		Types:    m.types.Owned(name),
		Registry: m.types,
		Journal:  m.journal,
		Args:     m.args,
		Manager:  m,
	}
}

// InitOrder returns toolbox names in the order they were initialised.
func (m *Manager) InitOrder() []string {
	out := make([]string, len(m.initOrder))
	copy(out, m.initOrder)
	return out
}

// Names returns the catalogue in submission order.
func (m *Manager) Names() []string {
	return m.catalogue.Ordered()
}

// Index returns the catalogue index of name, or -1.
func (m *Manager) Index(name string) int {
	return m.catalogue.Index(name)
}

// IsInitialised reports whether name has been initialised and not yet
// finalised.
func (m *Manager) IsInitialised(name string) bool {
	return m.initialised[name]
}

// Dependencies returns the declared dependencies of name.
func (m *Manager) Dependencies(name string) ([]string, error) {
	e, err := m.catalogue.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrUnknownToolbox, "toolbox '%s' is not in the catalogue", name).
			WithDetail("toolbox", name)
	}
	out := make([]string, len(e.deps))
	copy(out, e.deps)
	return out, nil
}
