package engine

import "github.com/dshills/quill/internal/engine/cursor"

// ============================================================================
// Viewport Queries
// ============================================================================

// ScreenPosition is a cell relative to the viewport's top-left corner.
// Row or Col is negative or past the viewport size when the cursor is
// scrolled out of view.
type ScreenPosition struct {
	Row int
	Col int
}

// VisibleLine is one line of text inside the viewport.
type VisibleLine struct {
	Number int
	Text   string
}

// SetViewport sets the number of text rows and cell columns the
// rendering side shows, then scrolls the primary cursor into view.
func (e *Engine) SetViewport(height, width int) {
	e.height = max(height, 1)
	e.width = max(width, 1)
	e.ScrollToCursor()
}

// Viewport returns the first visible line, the first visible cell, and
// the size in rows and cells.
func (e *Engine) Viewport() (top, left, height, width int) {
	return e.top, e.left, e.height, e.width
}

// ScrollTo sets the first visible line, clamped into the text.
func (e *Engine) ScrollTo(line int) {
	e.top = min(max(line, 0), e.buf.LineCount()-1)
}

// ScrollToCursor adjusts the viewport so the primary cursor's head is
// visible.
func (e *Engine) ScrollToCursor() {
	head := e.cursors.Primary().Head
	switch {
	case head.Line < e.top:
		e.top = head.Line
	case head.Line >= e.top+e.height:
		e.top = head.Line - e.height + 1
	}

	col := e.displayColumn(head)
	switch {
	case col < e.left:
		e.left = col
	case col >= e.left+e.width:
		e.left = col - e.width + 1
	}
}

// VisibleLines returns the lines inside the viewport.
func (e *Engine) VisibleLines() []VisibleLine {
	lines := e.buf.Lines(e.top, e.height)
	out := make([]VisibleLine, len(lines))
	for i, text := range lines {
		out[i] = VisibleLine{Number: e.top + i, Text: text}
	}
	return out
}

// VisibleRange returns the first and last visible line numbers.
func (e *Engine) VisibleRange() (first, last int) {
	return e.top, min(e.top+e.height, e.buf.LineCount()) - 1
}

// CursorScreenPosition returns where the primary cursor's head is drawn,
// with tabs expanded and wide characters taking two cells.
func (e *Engine) CursorScreenPosition() ScreenPosition {
	head := e.cursors.Primary().Head
	return ScreenPosition{Row: head.Line - e.top, Col: e.displayColumn(head) - e.left}
}

// CursorScreenPositions returns the screen position of every cursor.
func (e *Engine) CursorScreenPositions() []ScreenPosition {
	all := e.cursors.All()
	out := make([]ScreenPosition, len(all))
	for i, c := range all {
		out[i] = ScreenPosition{Row: c.Head.Line - e.top, Col: e.displayColumn(c.Head) - e.left}
	}
	return out
}

// PointAtScreen converts a viewport cell to a point in the text, as for
// a mouse click. The result is clamped into the text.
func (e *Engine) PointAtScreen(pos ScreenPosition) Point {
	line := min(max(e.top+pos.Row, 0), e.buf.LineCount()-1)
	text, _ := e.buf.LineText(line)
	col := cursor.ColumnAtDisplay(text, max(e.left+pos.Col, 0), e.tabWidth)
	return Point{Line: line, Column: col}
}

// MatchingBracket returns the bracket paired with the one at or just
// before the primary cursor.
func (e *Engine) MatchingBracket() (at, match Point, ok bool) {
	head := e.cursors.Primary().Head
	off := e.offsetOf(head)
	for _, o := range []int{off, off - 1} {
		if o < 0 || o >= e.buf.Len() {
			continue
		}
		if m, found := e.matchBracket(o); found {
			a, _ := e.buf.PointAt(o)
			b, _ := e.buf.PointAt(m)
			return a, b, true
		}
	}
	return Point{}, Point{}, false
}

var bracketPairs = map[rune]struct {
	pair    rune
	forward bool
}{
	'(': {')', true}, '[': {']', true}, '{': {'}', true},
	')': {'(', false}, ']': {'[', false}, '}': {'{', false},
}

func (e *Engine) matchBracket(off int) (int, bool) {
	p, _ := e.buf.PointAt(off)
	r, err := e.buf.CharAt(p)
	if err != nil {
		return 0, false
	}
	info, ok := bracketPairs[r]
	if !ok {
		return 0, false
	}
	step := 1
	if !info.forward {
		step = -1
	}
	// Walk line by line from the bracket; base is the char offset of
	// the current line's start.
	depth := 0
	line, col, base := p.Line, p.Column, off-p.Column
	for {
		text, err := e.buf.LineText(line)
		if err != nil {
			return 0, false
		}
		runes := []rune(text)
		for i := col; i >= 0 && i < len(runes); i += step {
			switch runes[i] {
			case r:
				depth++
			case info.pair:
				depth--
				if depth == 0 {
					return base + i, true
				}
			}
		}
		if step > 0 {
			base += len(runes) + 1
			line++
			col = 0
			if line >= e.buf.LineCount() {
				return 0, false
			}
			continue
		}
		if line == 0 {
			return 0, false
		}
		line--
		col = e.buf.LineLen(line) - 1
		base -= col + 2
	}
}

func (e *Engine) displayColumn(p Point) int {
	text, err := e.buf.LineText(p.Line)
	if err != nil {
		return 0
	}
	return cursor.DisplayColumn(text, p.Column, e.tabWidth)
}
