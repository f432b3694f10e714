package cursor

import (
	"fmt"

	"github.com/dshills/quill/internal/engine/buffer"
)

// Point is an alias for buffer.Point for convenience.
type Point = buffer.Point

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Cursor is an insertion point with an optional selection. Head is where
// typing happens; Anchor is where the selection started.
type Cursor struct {
	Anchor Point
	Head   Point

	goal    int
	hasGoal bool
}

// At returns a cursor at p with no selection.
func At(p Point) Cursor {
	return Cursor{Anchor: p, Head: p}
}

// Select returns a cursor selecting from anchor to head.
func Select(anchor, head Point) Cursor {
	return Cursor{Anchor: anchor, Head: head}
}

// HasSelection reports whether the anchor differs from the head.
func (c Cursor) HasSelection() bool {
	return c.Anchor != c.Head
}

// Range returns the selection ordered start to end.
func (c Cursor) Range() Range {
	return buffer.NewRange(c.Anchor, c.Head)
}

// Start returns the earlier of anchor and head.
func (c Cursor) Start() Point { return c.Range().Start }

// End returns the later of anchor and head.
func (c Cursor) End() Point { return c.Range().End }

// Goal returns the remembered column for vertical movement.
func (c Cursor) Goal() (int, bool) {
	return c.goal, c.hasGoal
}

// String returns the cursor as "anchor->head" or just the head.
func (c Cursor) String() string {
	if !c.HasSelection() {
		return c.Head.String()
	}
	return fmt.Sprintf("%s->%s", c.Anchor, c.Head)
}

// moveTo places the head at p. Without extend the selection collapses.
// The goal column is cleared; vertical moves set it afterwards.
func (c Cursor) moveTo(p Point, extend bool) Cursor {
	out := Cursor{Anchor: c.Anchor, Head: p}
	if !extend {
		out.Anchor = p
	}
	return out
}

func (c Cursor) withGoal(goal int) Cursor {
	c.goal, c.hasGoal = goal, true
	return c
}

// merge returns the union of two overlapping cursors. The receiver's
// direction and goal win.
func (c Cursor) merge(other Cursor) Cursor {
	a, b := c.Range(), other.Range()
	start, end := a.Start, a.End
	if b.Start.Before(start) {
		start = b.Start
	}
	if b.End.After(end) {
		end = b.End
	}
	out := c
	if c.Head.Before(c.Anchor) {
		out.Anchor, out.Head = end, start
	} else {
		out.Anchor, out.Head = start, end
	}
	return out
}
