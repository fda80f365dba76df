package journal

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/stgcore/pkg/errors"
)

const indentUnit = "   "

// Stream is a named diagnostic channel. Streams are created through
// Journal.Register and live as long as their journal.
type Stream struct {
	journal  *Journal
	category Category
	name     string
	parent   *Stream
	override *bool
	indent   int
}

// Name returns the dotted stream name; the category root has an empty name.
func (s *Stream) Name() string { return s.name }

// Category returns the stream's category.
func (s *Stream) Category() Category { return s.category }

// Parent returns the parent stream, nil for a category root.
func (s *Stream) Parent() *Stream { return s.parent }

// FullName returns "category.name", or just the category for a root.
func (s *Stream) FullName() string {
	if s.name == "" {
		return string(s.category)
	}
	return string(s.category) + "." + s.name
}

// Enabled reports the effective state: the nearest explicit override on
// the stream or its ancestors.
func (s *Stream) Enabled() bool {
	s.journal.mu.RLock()
	defer s.journal.mu.RUnlock()
	return s.enabledLocked()
}

func (s *Stream) enabledLocked() bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.override != nil {
			return *cur.override
		}
	}
	return false
}

// SetEnabled sets an explicit override on this stream. Descendants
// without their own override follow it.
func (s *Stream) SetEnabled(enabled bool) {
	s.journal.mu.Lock()
	defer s.journal.mu.Unlock()
	v := enabled
	s.override = &v
}

// ClearOverride removes this stream's own setting so it inherits again.
// Category roots always keep a setting and are reset to their default.
func (s *Stream) ClearOverride() {
	s.journal.mu.Lock()
	defer s.journal.mu.Unlock()
	if s.parent == nil {
		v := defaultEnabled[s.category]
		s.override = &v
		return
	}
	s.override = nil
}

// Indent increases the indentation of subsequent output.
func (s *Stream) Indent() {
	s.journal.mu.Lock()
	defer s.journal.mu.Unlock()
	s.indent++
}

// Unindent decreases the indentation; it never goes below zero.
func (s *Stream) Unindent() {
	s.journal.mu.Lock()
	defer s.journal.mu.Unlock()
	if s.indent > 0 {
		s.indent--
	}
}

// Printf writes a formatted message if the stream is enabled and reports
// whether anything was written.
func (s *Stream) Printf(format string, args ...interface{}) bool {
	s.journal.mu.RLock()
	enabled := s.enabledLocked()
	indent := s.indent
	sink := s.journal.sink
	s.journal.mu.RUnlock()

	if !enabled || sink == nil {
		return false
	}
	sink.Emit(s, indentText(fmt.Sprintf(format, args...), indent))
	return true
}

// RPrintf is Printf restricted to the watched rank.
func (s *Stream) RPrintf(format string, args ...interface{}) bool {
	s.journal.mu.RLock()
	watched := s.journal.rank == s.journal.watchedRank
	s.journal.mu.RUnlock()

	if !watched {
		return false
	}
	return s.Printf(format, args...)
}

// Firewall checks an invariant. When cond is false the message goes to
// the error stream of the same name and a FIREWALL error is returned.
func (s *Stream) Firewall(cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	s.journal.Register(Error, s.name).Printf("%s\n", strings.TrimRight(msg, "\n"))
	return errors.New(errors.ErrFirewall, msg).
		WithDetail("stream", s.FullName())
}

func indentText(text string, level int) string {
	if level == 0 || text == "" {
		return text
	}
	prefix := strings.Repeat(indentUnit, level)
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(line)
	}
	return b.String()
}
