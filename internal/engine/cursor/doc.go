// Package cursor implements cursors, selections and the multi-cursor set
// of a buffer.
//
// A Cursor is a head and an anchor; it has a selection when the two
// differ. Positions are buffer.Point values, so a cursor never holds a
// reference into the text that an edit could invalidate.
//
// A Set is never empty and is kept sorted by position. After every
// operation cursors whose selections overlap, touch, or share a head are
// merged, so no two cursors ever sit at the same place.
//
// Vertical movement remembers a goal column, counted in chars: moving
// through a short line clamps the visible column but the goal is
// restored on a longer line.
// Any horizontal movement resets the goal.
package cursor
