package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/cursor"
)

// ============================================================================
// Typing
// ============================================================================

// InsertText replaces every selection with text, or inserts it at every
// cursor. Line breaks in text are normalized to '\n'.
func (e *Engine) InsertText(text string, now time.Time) error {
	text = normalizeNewlines(text)
	if text == "" {
		return nil
	}
	if !utf8.ValidString(text) {
		return ErrInvalidText
	}
	n := utf8.RuneCountInString(text)
	edits, err := e.cursorEdits(func(_ Cursor, start, end int) edit {
		return edit{start: start, end: end, text: text, caret: n}
	})
	if err != nil {
		return err
	}
	return e.apply(edits, now)
}

// InsertNewline breaks the line at every cursor. With auto-indent the
// new line copies the leading whitespace of the old one and gains one
// level after an opening bracket or a colon.
func (e *Engine) InsertNewline(now time.Time) error {
	edits, err := e.cursorEdits(func(c Cursor, start, end int) edit {
		text := "\n"
		if e.autoIndent {
			line, _ := e.buf.LineText(c.Start().Line)
			text += e.indentAfter(line, c.Start().Column)
		}
		return edit{start: start, end: end, text: text, caret: utf8.RuneCountInString(text)}
	})
	if err != nil {
		return err
	}
	return e.apply(edits, now)
}

// indentAfter returns the indentation for a line broken at col.
func (e *Engine) indentAfter(line string, col int) string {
	before := string([]rune(line)[:min(col, utf8.RuneCountInString(line))])
	indent := before[:len(before)-len(strings.TrimLeft(before, " \t"))]

	trimmed := strings.TrimRight(before, " \t")
	if trimmed == "" {
		return indent
	}
	switch trimmed[len(trimmed)-1] {
	case '{', '[', '(', ':':
		if strings.Contains(indent, "\t") {
			return indent + "\t"
		}
		return indent + strings.Repeat(" ", e.tabWidth)
	}
	return indent
}

// Backspace deletes every selection, or the character before every
// cursor. At the start of the buffer it does nothing.
func (e *Engine) Backspace(now time.Time) error {
	edits, err := e.cursorEdits(func(c Cursor, start, end int) edit {
		if c.HasSelection() || start == 0 {
			return edit{start: start, end: end}
		}
		return edit{start: start - 1, end: end}
	})
	if err != nil {
		return err
	}
	return e.apply(edits, now)
}

// DeleteForward deletes every selection, or the character after every
// cursor. At the end of the buffer it does nothing.
func (e *Engine) DeleteForward(now time.Time) error {
	total := e.buf.Len()
	edits, err := e.cursorEdits(func(c Cursor, start, end int) edit {
		if c.HasSelection() || end == total {
			return edit{start: start, end: end}
		}
		return edit{start: start, end: end + 1}
	})
	if err != nil {
		return err
	}
	return e.apply(edits, now)
}

// DeleteWordLeft deletes every selection, or back to the start of the
// word before every cursor.
func (e *Engine) DeleteWordLeft(now time.Time) error {
	edits, err := e.cursorEdits(func(c Cursor, start, end int) edit {
		if c.HasSelection() {
			return edit{start: start, end: end}
		}
		return edit{start: e.offsetOf(cursor.WordLeft(e.buf, c.Head)), end: end}
	})
	if err != nil {
		return err
	}
	return e.apply(edits, now)
}

// ============================================================================
// Clipboard
// ============================================================================

// SelectedText returns the selected text of every cursor, joined with
// '\n' in cursor order. Cursors without a selection are skipped.
func (e *Engine) SelectedText() string {
	var parts []string
	for _, r := range e.cursors.Selections() {
		if r.IsEmpty() {
			continue
		}
		s, err := e.buf.TextRange(r.Start, r.End)
		if err == nil {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Copy returns the selected text. Without any selection it returns the
// primary cursor's line including its newline, so pasting it inserts a
// whole line.
func (e *Engine) Copy() string {
	if e.cursors.HasSelection() {
		return e.SelectedText()
	}
	line := e.cursors.Primary().Head.Line
	text, _ := e.buf.LineText(line)
	return text + "\n"
}

// Cut returns the selected text and deletes it. Without a selection it
// does nothing and returns "".
func (e *Engine) Cut(now time.Time) (string, error) {
	if !e.cursors.HasSelection() {
		return "", nil
	}
	text := e.SelectedText()
	edits, err := e.cursorEdits(func(_ Cursor, start, end int) edit {
		return edit{start: start, end: end}
	})
	if err != nil {
		return "", err
	}
	if err := e.apply(edits, now); err != nil {
		return "", err
	}
	return text, nil
}

// Paste inserts text at every cursor. When text has exactly one line per
// cursor, each cursor receives its own line.
func (e *Engine) Paste(text string, now time.Time) error {
	text = normalizeNewlines(text)
	if text == "" {
		return nil
	}
	if !utf8.ValidString(text) {
		return ErrInvalidText
	}
	lines := strings.Split(text, "\n")
	if e.cursors.Len() == 1 || len(lines) != e.cursors.Len() {
		return e.InsertText(text, now)
	}
	i := 0
	edits, err := e.cursorEdits(func(_ Cursor, start, end int) edit {
		line := lines[i]
		i++
		return edit{start: start, end: end, text: line, caret: utf8.RuneCountInString(line)}
	})
	if err != nil {
		return err
	}
	return e.apply(edits, now)
}

// ============================================================================
// Line Operations
// ============================================================================

// DuplicateLine copies the line under every cursor below itself. Each
// cursor moves to the copy at the same column.
func (e *Engine) DuplicateLine(now time.Time) error {
	seen := map[int]bool{}
	var edits []edit
	for _, c := range e.cursors.All() {
		line := c.Head.Line
		if seen[line] {
			continue
		}
		seen[line] = true
		text, err := e.buf.LineText(line)
		if err != nil {
			return err
		}
		start := e.offsetOf(Point{Line: line})
		n := utf8.RuneCountInString(text)
		edits = append(edits, edit{start: start, end: start, text: text + "\n", caret: n + 1 + c.Head.Column})
	}
	return e.apply(edits, now)
}

// MoveLineUp swaps the primary cursor's line with the one above it.
// Other cursors are dropped. On the first line it does nothing.
func (e *Engine) MoveLineUp(now time.Time) error {
	line := e.cursors.Primary().Head.Line
	if line == 0 {
		return nil
	}
	return e.swapLines(line-1, line, true, now)
}

// MoveLineDown swaps the primary cursor's line with the one below it.
func (e *Engine) MoveLineDown(now time.Time) error {
	line := e.cursors.Primary().Head.Line
	if line+1 >= e.buf.LineCount() {
		return nil
	}
	return e.swapLines(line, line+1, false, now)
}

// swapLines exchanges lines a and a+1 as a single replacement of both.
// up says the cursor starts on line b.
func (e *Engine) swapLines(a, b int, up bool, now time.Time) error {
	if e.readOnly {
		return ErrReadOnly
	}
	first, err := e.buf.LineText(a)
	if err != nil {
		return err
	}
	second, err := e.buf.LineText(b)
	if err != nil {
		return err
	}
	col := e.cursors.Primary().Head.Column
	e.cursors.CollapseToPrimary()
	e.cursors.ClearSelections()

	start := e.offsetOf(Point{Line: a})
	end := e.offsetOf(Point{Line: b, Column: utf8.RuneCountInString(second)})
	caret := utf8.RuneCountInString(second) + 1 + col
	if up {
		caret = col
	}
	return e.apply([]edit{{start: start, end: end, text: second + "\n" + first, caret: caret}}, now)
}

// Indent inserts one level of indentation at the start of every line
// touched by a cursor.
func (e *Engine) Indent(now time.Time) error {
	unit := strings.Repeat(" ", e.tabWidth)
	var edits []edit
	shifted := map[int]int{}
	for _, line := range e.touchedLines() {
		shifted[line] = len(unit)
		start := e.offsetOf(Point{Line: line})
		edits = append(edits, edit{start: start, end: start, text: unit})
	}
	return e.shiftLines(edits, shifted, now)
}

// Outdent removes up to one level of leading indentation from every
// line touched by a cursor.
func (e *Engine) Outdent(now time.Time) error {
	var edits []edit
	shifted := map[int]int{}
	for _, line := range e.touchedLines() {
		text, _ := e.buf.LineText(line)
		n := 0
		if strings.HasPrefix(text, "\t") {
			n = 1
		} else {
			for n < e.tabWidth && n < len(text) && text[n] == ' ' {
				n++
			}
		}
		if n == 0 {
			continue
		}
		shifted[line] = -n
		start := e.offsetOf(Point{Line: line})
		edits = append(edits, edit{start: start, end: start + n})
	}
	return e.shiftLines(edits, shifted, now)
}

// shiftLines applies line-prefix edits and moves each cursor end by the
// amount its line was shifted.
func (e *Engine) shiftLines(edits []edit, shifted map[int]int, now time.Time) error {
	if len(edits) == 0 {
		return nil
	}
	shift := func(p Point) Point {
		p.Column = max(p.Column+shifted[p.Line], 0)
		return p
	}
	return e.applyWith(edits, func(c Cursor) Cursor {
		c.Anchor, c.Head = shift(c.Anchor), shift(c.Head)
		return c
	}, now)
}

// touchedLines returns each line covered by a cursor once, ascending.
func (e *Engine) touchedLines() []int {
	var lines []int
	last := -1
	for _, c := range e.cursors.All() {
		from, to := c.Start().Line, c.End().Line
		if to > from && c.End().Column == 0 {
			to--
		}
		for l := max(from, last+1); l <= to; l++ {
			lines = append(lines, l)
			last = l
		}
	}
	return lines
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
