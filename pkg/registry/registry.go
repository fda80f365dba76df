package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/stgcore/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name.
// Items keep the index they were registered at; Ordered returns them in that order.
type Registry[T any] interface {
	// Register adds an item to the registry and returns its index
	Register(name string, item T) (int, error)

	// Get retrieves an item from the registry
	Get(name string) (T, error)

	// Index returns the registration index of a name, or -1
	Index(name string) int

	// List returns all registered names, sorted
	List() []string

	// Ordered returns all registered names in registration order
	Ordered() []string

	// Has checks if an item is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

type slot[T any] struct {
	index int
	item  T
}

// registry is the internal implementation of Registry
type registry[T any] struct {
	mu    sync.RWMutex
	items map[string]slot[T]
	order []string
}

// New creates a new Registry instance
func New[T any]() Registry[T] {
	return &registry[T]{
		items: make(map[string]slot[T]),
	}
}

// Register adds an item to the registry
func (r *registry[T]) Register(name string, item T) (int, error) {
	if name == "" {
		return -1, errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.items[name]; exists {
		return existing.index, errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name).
			WithDetail("name", name)
	}

	idx := len(r.order)
	r.items[name] = slot[T]{index: idx, item: item}
	r.order = append(r.order, name)
	return idx, nil
}

// Get retrieves an item from the registry
func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name).
			WithDetail("name", name)
	}

	return s.item, nil
}

func (r *registry[T]) Index(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.items[name]; ok {
		return s.index
	}
	return -1
}

// List returns all registered names in sorted order
func (r *registry[T]) List() []string {
	names := r.Ordered()
	sort.Strings(names)
	return names
}

func (r *registry[T]) Ordered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Has checks if an item is registered
func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

// Count returns the number of registered items
func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustGet retrieves an item and panics if not found
func MustGet[T any](reg Registry[T], name string) T {
	item, err := reg.Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to get %s: %v", name, err))
	}
	return item
}
