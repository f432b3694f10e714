package history

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
)

// Point is an alias for buffer.Point for convenience.
type Point = buffer.Point

// Kind is the direction of a recorded edit.
type Kind uint8

const (
	// Insert records text written at a point.
	Insert Kind = iota
	// Delete records text removed starting at a point.
	Delete
)

// String returns "insert" or "delete".
func (k Kind) String() string {
	if k == Delete {
		return "delete"
	}
	return "insert"
}

// Record is one invertible change. At is where the text starts both
// before a delete and after an insert, so the affected range is always
// At to At.Advance(Text).
type Record struct {
	Kind Kind
	At   Point
	Text string
	Time time.Time
}

// End returns the point just past the recorded text.
func (r Record) End() Point { return r.At.Advance(r.Text) }

// Invert returns the record that undoes r.
func (r Record) Invert() Record {
	inv := r
	if r.Kind == Insert {
		inv.Kind = Delete
	} else {
		inv.Kind = Insert
	}
	return inv
}

// Apply performs the record against t.
func (r Record) Apply(t Target) error {
	if r.Kind == Insert {
		_, err := t.Insert(r.At, r.Text)
		return err
	}
	_, err := t.DeleteRange(r.At, r.End())
	return err
}

// String returns a short description such as `insert "ab" at (0:3)`.
func (r Record) String() string {
	return fmt.Sprintf("%s %q at %s", r.Kind, r.Text, r.At)
}

// singleChar reports whether the record changes exactly one character
// that is not a line break, the only kind of edit that coalesces.
func (r Record) singleChar() bool {
	if utf8.RuneCountInString(r.Text) != 1 {
		return false
	}
	return r.Text != "\n"
}

// Target is what records are applied to; *buffer.Buffer satisfies it.
type Target interface {
	Insert(p Point, text string) (Point, error)
	DeleteRange(a, b Point) (string, error)
}

// Snapshot is the cursor set as it was before or after a group.
type Snapshot struct {
	Cursors []cursor.Cursor
	Primary int
}

// TakeSnapshot copies the state of s.
func TakeSnapshot(s *cursor.Set) Snapshot {
	return Snapshot{Cursors: s.All(), Primary: s.PrimaryIndex()}
}

// Restore installs the snapshot into s.
func (sn Snapshot) Restore(s *cursor.Set) {
	s.Replace(sn.Cursors, sn.Primary)
}

// State is the lifecycle of the newest group.
type State uint8

const (
	// Idle means no group is open for coalescing.
	Idle State = iota
	// Accumulating means the newest group still accepts typed characters.
	Accumulating
	// Closed means the group is final.
	Closed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Closed:
		return "closed"
	}
	return "idle"
}

// Group is one undo step: records applied in order, and the cursor
// sets on either side of them.
type Group struct {
	Records []Record
	Before  Snapshot
	After   Snapshot

	state State
	last  time.Time
}

// State returns Accumulating or Closed.
func (g *Group) State() State { return g.state }

// Description summarizes the group for listings.
func (g *Group) Description() string {
	switch len(g.Records) {
	case 0:
		return "empty"
	case 1:
		return g.Records[0].String()
	}
	return fmt.Sprintf("%d edits starting with %s", len(g.Records), g.Records[0])
}

// absorb merges a single-character record into the group's last record
// when it continues it. Typing appends, backspace prepends and delete
// forward appends at the same point.
func (g *Group) absorb(r Record) bool {
	last := &g.Records[len(g.Records)-1]
	if last.Kind != r.Kind {
		return false
	}
	switch {
	case r.Kind == Insert && r.At == last.End():
		last.Text += r.Text
	case r.Kind == Delete && r.End() == last.At:
		last.At = r.At
		last.Text = r.Text + last.Text
	case r.Kind == Delete && r.At == last.At:
		last.Text += r.Text
	default:
		return false
	}
	last.Time = r.Time
	return true
}
