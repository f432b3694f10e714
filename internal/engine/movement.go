package engine

import "github.com/dshills/quill/internal/engine/cursor"

// ============================================================================
// Cursor Movement
// ============================================================================

// Every movement applies to all cursors and closes the open undo group,
// so typing after a move starts a new undo step.

// MoveLeft moves every cursor one character left.
func (e *Engine) MoveLeft(extend bool) {
	e.cursors.MoveLeft(e.buf, extend)
	e.moved()
}

// MoveRight moves every cursor one character right.
func (e *Engine) MoveRight(extend bool) {
	e.cursors.MoveRight(e.buf, extend)
	e.moved()
}

// MoveUp moves every cursor one line up, keeping its desired column.
func (e *Engine) MoveUp(extend bool) {
	e.cursors.MoveUp(e.buf, 1, extend)
	e.moved()
}

// MoveDown moves every cursor one line down, keeping its desired column.
func (e *Engine) MoveDown(extend bool) {
	e.cursors.MoveDown(e.buf, 1, extend)
	e.moved()
}

// PageUp moves every cursor up by the viewport height.
func (e *Engine) PageUp(extend bool) {
	e.cursors.MoveUp(e.buf, max(e.height-1, 1), extend)
	e.moved()
}

// PageDown moves every cursor down by the viewport height.
func (e *Engine) PageDown(extend bool) {
	e.cursors.MoveDown(e.buf, max(e.height-1, 1), extend)
	e.moved()
}

// MoveToLineStart moves every cursor to column 0.
func (e *Engine) MoveToLineStart(extend bool) {
	e.cursors.MoveToLineStart(extend)
	e.moved()
}

// MoveToLineStartSmart moves to the first non-blank character, or to
// column 0 when already there.
func (e *Engine) MoveToLineStartSmart(extend bool) {
	e.cursors.SmartHome(e.buf, extend)
	e.moved()
}

// MoveToLineEnd moves every cursor past the last character of its line.
func (e *Engine) MoveToLineEnd(extend bool) {
	e.cursors.MoveToLineEnd(e.buf, extend)
	e.moved()
}

// MoveWordLeft moves every cursor to the previous word start.
func (e *Engine) MoveWordLeft(extend bool) {
	e.cursors.MoveWordLeft(e.buf, extend)
	e.moved()
}

// MoveWordRight moves every cursor to the next word end.
func (e *Engine) MoveWordRight(extend bool) {
	e.cursors.MoveWordRight(e.buf, extend)
	e.moved()
}

// MoveToBufferStart moves every cursor to (0,0).
func (e *Engine) MoveToBufferStart(extend bool) {
	e.cursors.MoveToBufferStart(extend)
	e.moved()
}

// MoveToBufferEnd moves every cursor to the end of the text.
func (e *Engine) MoveToBufferEnd(extend bool) {
	e.cursors.MoveToBufferEnd(e.buf, extend)
	e.moved()
}

// SetCursor collapses the set to one cursor at p, clamped into the
// text.
func (e *Engine) SetCursor(p Point, extend bool) {
	e.cursors.MoveTo(e.buf, p, extend)
	e.moved()
}

// GoToLine places a single cursor at the start of line, clamped into
// the text.
func (e *Engine) GoToLine(line int) {
	e.SetCursor(Point{Line: line}, false)
}

// ============================================================================
// Selection
// ============================================================================

// SelectAll selects the whole text with a single cursor.
func (e *Engine) SelectAll() {
	e.cursors.SelectAll(e.buf)
	e.moved()
}

// SelectLine extends every cursor over its whole lines.
func (e *Engine) SelectLine() {
	e.cursors.SelectLine(e.buf)
	e.moved()
}

// SelectWord selects the word under every cursor. Cursors not on a word
// are left alone.
func (e *Engine) SelectWord() {
	e.cursors.Each(func(c Cursor) Cursor {
		line, err := e.buf.LineText(c.Head.Line)
		if err != nil {
			return c
		}
		start, end, ok := cursor.WordAt(line, c.Head.Column)
		if !ok {
			return c
		}
		return cursor.Select(Point{Line: c.Head.Line, Column: start}, Point{Line: c.Head.Line, Column: end})
	})
	e.moved()
}

// ClearSelection collapses every selection to its head.
func (e *Engine) ClearSelection() {
	e.cursors.ClearSelections()
	e.moved()
}

// ============================================================================
// Multiple Cursors
// ============================================================================

// AddCursorAbove adds a cursor on the line above the topmost cursor.
// It reports false when there is no such line.
func (e *Engine) AddCursorAbove() bool {
	ok := e.cursors.AddAbove(e.buf)
	e.moved()
	return ok
}

// AddCursorBelow adds a cursor on the line below the bottom cursor.
func (e *Engine) AddCursorBelow() bool {
	ok := e.cursors.AddBelow(e.buf)
	e.moved()
	return ok
}

// AddCursor adds a cursor at p, clamped into the text. It becomes the
// primary cursor.
func (e *Engine) AddCursor(p Point) {
	e.cursors.AddAt(e.buf, p)
	e.moved()
}

// CollapseCursors drops every cursor but the primary one.
func (e *Engine) CollapseCursors() {
	e.cursors.CollapseToPrimary()
	e.moved()
}
