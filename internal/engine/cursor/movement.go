package cursor

import (
	"strings"
	"unicode"
)

// Movement Operations
//
// Every movement applies to all cursors and takes an extend flag: with
// extend only the head moves and the anchor stays; without it the
// selection collapses onto the new head.

// MoveLeft moves one character left, wrapping to the end of the previous
// line. A non-extending move over a selection lands on its start.
func (s *Set) MoveLeft(t Text, extend bool) {
	s.Each(func(c Cursor) Cursor {
		if !extend && c.HasSelection() {
			return c.moveTo(c.Start(), false)
		}
		return c.moveTo(left(t, c.Head), extend)
	})
}

// MoveRight moves one character right, wrapping to the start of the
// next line. A non-extending move over a selection lands on its end.
func (s *Set) MoveRight(t Text, extend bool) {
	s.Each(func(c Cursor) Cursor {
		if !extend && c.HasSelection() {
			return c.moveTo(c.End(), false)
		}
		return c.moveTo(right(t, c.Head), extend)
	})
}

// MoveUp moves n lines up keeping the goal column. From the first line
// the cursor goes to column 0.
func (s *Set) MoveUp(t Text, n int, extend bool) {
	s.Each(func(c Cursor) Cursor { return vertical(t, c, -n, extend) })
}

// MoveDown moves n lines down keeping the goal column. From the last
// line the cursor goes to the end of the buffer.
func (s *Set) MoveDown(t Text, n int, extend bool) {
	s.Each(func(c Cursor) Cursor { return vertical(t, c, n, extend) })
}

// MoveToLineStart moves to column 0.
func (s *Set) MoveToLineStart(extend bool) {
	s.Each(func(c Cursor) Cursor {
		return c.moveTo(Point{Line: c.Head.Line}, extend)
	})
}

// MoveToLineEnd moves past the last character of the line.
func (s *Set) MoveToLineEnd(t Text, extend bool) {
	s.Each(func(c Cursor) Cursor {
		return c.moveTo(Point{Line: c.Head.Line, Column: t.LineLen(c.Head.Line)}, extend)
	})
}

// SmartHome moves to the first non-blank character of the line, or to
// column 0 when already there.
func (s *Set) SmartHome(t Text, extend bool) {
	s.Each(func(c Cursor) Cursor {
		line, _ := t.LineText(c.Head.Line)
		indent := len([]rune(line)) - len([]rune(strings.TrimLeftFunc(line, unicode.IsSpace)))
		col := indent
		if c.Head.Column == indent {
			col = 0
		}
		return c.moveTo(Point{Line: c.Head.Line, Column: col}, extend)
	})
}

// MoveToBufferStart moves to (0,0).
func (s *Set) MoveToBufferStart(extend bool) {
	s.Each(func(c Cursor) Cursor { return c.moveTo(Point{}, extend) })
}

// MoveToBufferEnd moves past the last character of the buffer.
func (s *Set) MoveToBufferEnd(t Text, extend bool) {
	end := clamp(t, Point{Line: t.LineCount()})
	s.Each(func(c Cursor) Cursor { return c.moveTo(end, extend) })
}

// MoveWordLeft moves to the start of the previous word, or to the end of
// the previous line from column 0.
func (s *Set) MoveWordLeft(t Text, extend bool) {
	s.Each(func(c Cursor) Cursor {
		return c.moveTo(WordLeft(t, c.Head), extend)
	})
}

// WordLeft returns the start of the word before p, or the end of the
// previous line when p is at a line start.
func WordLeft(t Text, p Point) Point {
	if p.Column == 0 {
		return left(t, p)
	}
	line, _ := t.LineText(p.Line)
	return Point{Line: p.Line, Column: wordStartBefore(line, p.Column)}
}

// MoveWordRight moves to the end of the next word, or to the start of
// the next line from the line end.
func (s *Set) MoveWordRight(t Text, extend bool) {
	s.Each(func(c Cursor) Cursor {
		if c.Head.Column >= t.LineLen(c.Head.Line) {
			return c.moveTo(right(t, c.Head), extend)
		}
		line, _ := t.LineText(c.Head.Line)
		return c.moveTo(Point{Line: c.Head.Line, Column: wordEndAfter(line, c.Head.Column)}, extend)
	})
}

// MoveTo collapses the set to a single cursor at p, clamped into t.
func (s *Set) MoveTo(t Text, p Point, extend bool) {
	c := s.Primary().moveTo(clamp(t, p), extend)
	s.cursors = []Cursor{c}
	s.primary = 0
}

// SelectAll collapses the set to one cursor selecting the whole text.
func (s *Set) SelectAll(t Text) {
	s.cursors = []Cursor{Select(Point{}, clamp(t, Point{Line: t.LineCount()}))}
	s.primary = 0
}

// SelectLine extends every cursor to cover its whole line, including the
// newline when there is one.
func (s *Set) SelectLine(t Text) {
	s.Each(func(c Cursor) Cursor {
		start := Point{Line: c.Start().Line}
		end := Point{Line: c.End().Line + 1}
		if end.Line >= t.LineCount() {
			end = clamp(t, end)
		}
		return Select(start, end)
	})
}

// Multi-cursor Operations

// AddAbove adds a cursor on the line above the topmost cursor, at its
// goal column. It reports false when the topmost cursor is on line 0.
func (s *Set) AddAbove(t Text) bool {
	return s.addVertical(t, s.cursors[0], -1)
}

// AddBelow adds a cursor on the line below the bottom cursor.
func (s *Set) AddBelow(t Text) bool {
	return s.addVertical(t, s.cursors[len(s.cursors)-1], 1)
}

func (s *Set) addVertical(t Text, from Cursor, dir int) bool {
	line := from.Head.Line + dir
	if line < 0 || line >= t.LineCount() {
		return false
	}
	goal := from.Head.Column
	if g, ok := from.Goal(); ok {
		goal = g
	}
	c := At(Point{Line: line, Column: min(goal, t.LineLen(line))}).withGoal(goal)
	n := s.Len()
	s.Add(c)
	return s.Len() > n
}

// AddAt adds a cursor at p, clamped into t. Adding at an existing head
// merges with it.
func (s *Set) AddAt(t Text, p Point) {
	s.Add(At(clamp(t, p)))
}

func left(t Text, p Point) Point {
	switch {
	case p.Column > 0:
		return Point{Line: p.Line, Column: p.Column - 1}
	case p.Line > 0:
		return Point{Line: p.Line - 1, Column: t.LineLen(p.Line - 1)}
	}
	return p
}

func right(t Text, p Point) Point {
	switch {
	case p.Column < t.LineLen(p.Line):
		return Point{Line: p.Line, Column: p.Column + 1}
	case p.Line+1 < t.LineCount():
		return Point{Line: p.Line + 1}
	}
	return p
}

func vertical(t Text, c Cursor, delta int, extend bool) Cursor {
	goal := c.Head.Column
	if g, ok := c.Goal(); ok {
		goal = g
	}
	line := c.Head.Line + delta
	switch {
	case line < 0:
		return c.moveTo(Point{}, extend)
	case line >= t.LineCount():
		return c.moveTo(clamp(t, Point{Line: t.LineCount()}), extend)
	}
	return c.moveTo(Point{Line: line, Column: min(goal, t.LineLen(line))}, extend).withGoal(goal)
}
