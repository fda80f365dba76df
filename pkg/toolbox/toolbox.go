// Package toolbox manages loadable modules.
//
// A toolbox declares the toolboxes it depends on and registers component
// types when initialised. The Manager keeps a catalogue of submitted
// toolboxes, initialises them in dependency order exactly once each and
// finalises them in reverse.
package toolbox

import (
	"strings"

	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/registry"
)

// Toolbox is implemented by every loadable module.
type Toolbox interface {
	// Dependencies lists required toolbox names separated by whitespace
	// or commas.
	Dependencies() string
	// Initialise registers the toolbox's types. It runs once, after every
	// dependency has been initialised.
	Initialise(env *Env) error
	// Finalise undoes Initialise. It only runs for initialised toolboxes.
	Finalise(env *Env) error
}

// Constructor creates a toolbox for the catalogue.
type Constructor func() Toolbox

// Env is what a toolbox sees during Initialise and Finalise.
type Env struct {
	// Name is the toolbox being initialised.
	Name string
	// Types registers component types owned by this toolbox.
	Types registry.TypeRegistrar
	// Registry answers type queries.
	Registry *registry.TypeRegistry
	Journal  *journal.Journal
	// Args are the process arguments.
	Args []string
	// Manager allows a toolbox to submit and initialise nested toolboxes.
	Manager *Manager
}

// Stream returns the toolbox's own stream in a category.
func (e *Env) Stream(c journal.Category) *journal.Stream {
	return e.Journal.Register(c, e.Name)
}

// ParseDependencies splits a dependency string into names.
func ParseDependencies(deps string) []string {
	return strings.FieldsFunc(deps, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Func adapts plain functions to a Toolbox. Nil hooks do nothing.
type Func struct {
	Deps     string
	OnInit   func(env *Env) error
	OnFinish func(env *Env) error
}

func (f *Func) Dependencies() string { return f.Deps }

func (f *Func) Initialise(env *Env) error {
	if f.OnInit == nil {
		return nil
	}
	return f.OnInit(env)
}

func (f *Func) Finalise(env *Env) error {
	if f.OnFinish == nil {
		return nil
	}
	return f.OnFinish(env)
}
