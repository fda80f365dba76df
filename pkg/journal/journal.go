package journal

import (
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/stgcore/pkg/errors"
)

// Category is the type of a stream tree.
type Category string

const (
	Info  Category = "info"
	Debug Category = "debug"
	Error Category = "error"
	Dump  Category = "dump"
)

// Categories lists the built-in categories in display order.
var Categories = []Category{Info, Debug, Error, Dump}

// defaultEnabled is the root state of each category before any setting.
var defaultEnabled = map[Category]bool{
	Info:  true,
	Debug: false,
	Error: true,
	Dump:  true,
}

// Setting enables or disables one stream. An empty Name addresses the
// category root.
type Setting struct {
	Category string `koanf:"category" yaml:"category" toml:"category"`
	Name     string `koanf:"name" yaml:"name,omitempty" toml:"name,omitempty"`
	Enabled  bool   `koanf:"enabled" yaml:"enabled" toml:"enabled"`
}

type streamKey struct {
	category Category
	name     string
}

// Journal owns every stream of one process.
type Journal struct {
	mu          sync.RWMutex
	streams     map[streamKey]*Stream
	roots       map[Category]*Stream
	sink        Sink
	rank        int
	watchedRank int
}

// Option configures a Journal.
type Option func(*Journal)

// WithSink sets the output sink.
func WithSink(s Sink) Option {
	return func(j *Journal) { j.sink = s }
}

// WithRank sets the rank of this process and the rank RPrintf writes on.
func WithRank(rank, watched int) Option {
	return func(j *Journal) {
		j.rank = rank
		j.watchedRank = watched
	}
}

// New creates a journal with the built-in category roots.
func New(opts ...Option) *Journal {
	j := &Journal{
		streams: make(map[streamKey]*Stream),
		roots:   make(map[Category]*Stream),
		sink:    NewTextSink(nil, nil),
	}
	for _, opt := range opts {
		opt(j)
	}
	for _, c := range Categories {
		j.root(c)
	}
	return j
}

// root returns the root stream of a category, creating it if needed.
// Callers must not hold j.mu.
func (j *Journal) root(c Category) *Stream {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rootLocked(c)
}

func (j *Journal) rootLocked(c Category) *Stream {
	if r, ok := j.roots[c]; ok {
		return r
	}
	enabled, known := defaultEnabled[c]
	if !known {
		enabled = true
	}
	r := &Stream{journal: j, category: c}
	r.override = &enabled
	j.roots[c] = r
	j.streams[streamKey{category: c}] = r
	return r
}

// Root returns the root stream of a category.
func (j *Journal) Root(c Category) *Stream {
	return j.root(c)
}

// Register returns the stream (category, name), creating it and any
// missing ancestors. Registering an existing pair returns the same stream.
// Empty segments are dropped, so "a..b" and ".a.b." both name "a.b".
func (j *Journal) Register(c Category, name string) *Stream {
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool { return r == '.' }), ".")

	j.mu.Lock()
	defer j.mu.Unlock()

	if s, ok := j.streams[streamKey{category: c, name: name}]; ok {
		return s
	}

	parent := j.rootLocked(c)
	if name == "" {
		return parent
	}

	parts := strings.Split(name, ".")
	for i := range parts {
		full := strings.Join(parts[:i+1], ".")
		key := streamKey{category: c, name: full}
		s, ok := j.streams[key]
		if !ok {
			s = &Stream{journal: j, category: c, name: full, parent: parent}
			j.streams[key] = s
		}
		parent = s
	}
	return parent
}

// EnableCategory sets the override on a category root.
func (j *Journal) EnableCategory(c Category, enabled bool) {
	j.Root(c).SetEnabled(enabled)
}

// Apply enables or disables streams from configuration.
func (j *Journal) Apply(settings []Setting) error {
	for _, s := range settings {
		c := Category(strings.ToLower(s.Category))
		if _, ok := defaultEnabled[c]; !ok {
			return errors.Newf(errors.ErrInvalidInput, "unknown journal category '%s'", s.Category).
				WithDetail("category", s.Category)
		}
		j.Register(c, s.Name).SetEnabled(s.Enabled)
	}
	return nil
}

// SetWatchedRank changes the rank RPrintf writes on.
func (j *Journal) SetWatchedRank(rank int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.watchedRank = rank
}

// Rank returns the rank of this process.
func (j *Journal) Rank() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.rank
}

// WatchedRank returns the rank RPrintf writes on.
func (j *Journal) WatchedRank() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.watchedRank
}

// Streams returns every registered stream sorted by category then name.
func (j *Journal) Streams() []*Stream {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]*Stream, 0, len(j.streams))
	for _, s := range j.streams {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].category != out[b].category {
			return out[a].category < out[b].category
		}
		return out[a].name < out[b].name
	})
	return out
}
