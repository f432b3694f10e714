package cursor

import "slices"

// Text is the read-only view of a buffer that cursor movement needs.
type Text interface {
	LineCount() int
	LineLen(line int) int
	LineText(line int) (string, error)
}

// Set is an ordered, non-empty collection of cursors. One of them is
// the primary cursor: the most recently added one, or the one that
// absorbed it in a merge.
type Set struct {
	cursors []Cursor
	primary int
}

// NewSet returns a set holding one cursor at (0,0).
func NewSet() *Set {
	return &Set{cursors: []Cursor{{}}}
}

// Len returns the number of cursors.
func (s *Set) Len() int { return len(s.cursors) }

// All returns a copy of the cursors in ascending order.
func (s *Set) All() []Cursor {
	return slices.Clone(s.cursors)
}

// Primary returns the primary cursor.
func (s *Set) Primary() Cursor { return s.cursors[s.primary] }

// PrimaryIndex returns the position of the primary cursor in All.
func (s *Set) PrimaryIndex() int { return s.primary }

// Heads returns the head of every cursor in ascending order.
func (s *Set) Heads() []Point {
	out := make([]Point, len(s.cursors))
	for i, c := range s.cursors {
		out[i] = c.Head
	}
	return out
}

// Selections returns one ordered range per cursor, start before end.
func (s *Set) Selections() []Range {
	out := make([]Range, len(s.cursors))
	for i, c := range s.cursors {
		out[i] = c.Range()
	}
	return out
}

// HasSelection reports whether any cursor selects text.
func (s *Set) HasSelection() bool {
	return slices.ContainsFunc(s.cursors, Cursor.HasSelection)
}

// Reset replaces the set with a single cursor at p.
func (s *Set) Reset(p Point) {
	s.cursors = []Cursor{At(p)}
	s.primary = 0
}

// Replace installs cursors, making the one at index primary. An empty
// slice resets the set to (0,0).
func (s *Set) Replace(cursors []Cursor, primary int) {
	if len(cursors) == 0 {
		s.Reset(Point{})
		return
	}
	s.cursors = slices.Clone(cursors)
	s.primary = min(max(primary, 0), len(cursors)-1)
	s.normalize()
}

// Add inserts c and makes it primary.
func (s *Set) Add(c Cursor) {
	s.cursors = append(s.cursors, c)
	s.primary = len(s.cursors) - 1
	s.normalize()
}

// CollapseToPrimary drops every cursor but the primary one.
func (s *Set) CollapseToPrimary() {
	s.cursors = []Cursor{s.Primary()}
	s.primary = 0
}

// ClearSelections collapses every selection to its head.
func (s *Set) ClearSelections() {
	s.Each(func(c Cursor) Cursor { return c.moveTo(c.Head, false) })
}

// Each replaces every cursor with f applied to it, then normalizes.
func (s *Set) Each(f func(Cursor) Cursor) {
	for i, c := range s.cursors {
		s.cursors[i] = f(c)
	}
	s.normalize()
}

// Clamp pulls every cursor back inside t, as needed after the text
// changed underneath the set.
func (s *Set) Clamp(t Text) {
	s.Each(func(c Cursor) Cursor {
		c.Anchor = clamp(t, c.Anchor)
		c.Head = clamp(t, c.Head)
		return c
	})
}

// normalize sorts the cursors and merges any that overlap, touch or
// share a head. The primary index follows the cursor it pointed at.
func (s *Set) normalize() {
	if len(s.cursors) <= 1 {
		s.primary = 0
		return
	}

	type entry struct {
		c       Cursor
		primary bool
	}
	entries := make([]entry, len(s.cursors))
	for i, c := range s.cursors {
		entries[i] = entry{c: c, primary: i == s.primary}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if d := a.c.Start().Compare(b.c.Start()); d != 0 {
			return d
		}
		return b.c.End().Compare(a.c.End())
	})

	merged := entries[:1]
	for _, e := range entries[1:] {
		last := &merged[len(merged)-1]
		if e.c.Start().After(last.c.End()) {
			merged = append(merged, e)
			continue
		}
		if e.primary {
			last.c = e.c.merge(last.c)
		} else {
			last.c = last.c.merge(e.c)
		}
		last.primary = last.primary || e.primary
	}

	s.cursors = s.cursors[:0]
	s.primary = 0
	for i, e := range merged {
		s.cursors = append(s.cursors, e.c)
		if e.primary {
			s.primary = i
		}
	}
}

func clamp(t Text, p Point) Point {
	switch {
	case p.Line < 0:
		return Point{}
	case p.Line >= t.LineCount():
		last := t.LineCount() - 1
		return Point{Line: last, Column: t.LineLen(last)}
	}
	return Point{Line: p.Line, Column: min(max(p.Column, 0), t.LineLen(p.Line))}
}
