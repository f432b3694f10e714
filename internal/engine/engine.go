package engine

import (
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/history"
)

// Re-export commonly used types for convenience.
type (
	// Point is a zero-based line and char column.
	Point = buffer.Point

	// Range is an ordered pair of points.
	Range = buffer.Range

	// Cursor is a head with an optional selection anchor.
	Cursor = cursor.Cursor

	// LineEnding specifies the line ending style written on save.
	LineEnding = buffer.LineEnding

	// Encoding is the on-disk text encoding.
	Encoding = buffer.Encoding

	// SaveOption overrides the file style for one save.
	SaveOption = buffer.SaveOption

	// OperationInfo describes one undo or redo step.
	OperationInfo = history.OperationInfo
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
)

// Engine is the editing state of one document: its buffer, the cursor
// set and the undo history. Every command that changes the text goes
// through the cursor set and is recorded before it returns.
//
// An Engine is not safe for concurrent use; one owner serializes calls.
type Engine struct {
	buf     *buffer.Buffer
	cursors *cursor.Set
	history *history.History
	search  *Search

	// Configuration
	tabWidth   int
	autoIndent bool
	readOnly   bool
	bufOpts    []buffer.Option
	histOpts   []history.Option

	// Viewport
	top    int
	height int
	left   int
	width  int

	initContent string
}

// New creates an engine over an empty or WithContent-seeded buffer.
func New(opts ...Option) *Engine {
	e := newEngine(opts)
	if e.initContent != "" {
		e.buf = buffer.NewFromString(e.initContent, e.bufOpts...)
	} else {
		e.buf = buffer.New(e.bufOpts...)
	}
	return e
}

// Open creates an engine over the file at path.
func Open(path string, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	buf, err := buffer.Load(path, e.bufOpts...)
	if err != nil {
		return nil, err
	}
	e.buf = buf
	return e, nil
}

func newEngine(opts []Option) *Engine {
	e := &Engine{
		tabWidth:   DefaultTabWidth,
		autoIndent: true,
		height:     DefaultViewportHeight,
		width:      DefaultViewportWidth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cursors = cursor.NewSet()
	e.history = history.New(e.histOpts...)
	e.search = &Search{}
	return e
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the entire buffer content.
func (e *Engine) Text() string { return e.buf.Text() }

// Len returns the content length in characters.
func (e *Engine) Len() int { return e.buf.Len() }

// LineCount returns the number of lines.
func (e *Engine) LineCount() int { return e.buf.LineCount() }

// LineText returns the text of a line without its newline.
func (e *Engine) LineText(line int) (string, error) { return e.buf.LineText(line) }

// LineLen returns the char length of line, or 0 for a missing line.
func (e *Engine) LineLen(line int) int { return e.buf.LineLen(line) }

// CharAt returns the character at p.
func (e *Engine) CharAt(p Point) (rune, error) { return e.buf.CharAt(p) }

// TextRange returns the text between two points.
func (e *Engine) TextRange(a, b Point) (string, error) { return e.buf.TextRange(a, b) }

// Path returns the file path, or "" for an unsaved buffer.
func (e *Engine) Path() string { return e.buf.Path() }

// Dirty reports whether there are unsaved changes.
func (e *Engine) Dirty() bool { return e.buf.Dirty() }

// Revision increases with every change to the text.
func (e *Engine) Revision() uint64 { return e.buf.Revision() }

// LineEnding returns the style the next save will write.
func (e *Engine) LineEnding() LineEnding { return e.buf.LineEnding() }

// Encoding returns the encoding the next save will write.
func (e *Engine) Encoding() Encoding { return e.buf.Encoding() }

// ModTime returns the file time recorded at the last load or save.
func (e *Engine) ModTime() time.Time { return e.buf.ModTime() }

// DisplayName returns the file's base name, or "" without a path.
func (e *Engine) DisplayName() string { return e.buf.DisplayName() }

// TabWidth returns the configured tab width.
func (e *Engine) TabWidth() int { return e.tabWidth }

// IsReadOnly returns true if the engine rejects edits.
func (e *Engine) IsReadOnly() bool { return e.readOnly }

// ============================================================================
// Cursor Queries
// ============================================================================

// Cursors returns every cursor in ascending order.
func (e *Engine) Cursors() []Cursor { return e.cursors.All() }

// PrimaryCursor returns the primary cursor.
func (e *Engine) PrimaryCursor() Cursor { return e.cursors.Primary() }

// CursorCount returns the number of cursors.
func (e *Engine) CursorCount() int { return e.cursors.Len() }

// Selections returns one ordered range per cursor.
func (e *Engine) Selections() []Range { return e.cursors.Selections() }

// HasSelection reports whether any cursor selects text.
func (e *Engine) HasSelection() bool { return e.cursors.HasSelection() }

// ============================================================================
// File Operations
// ============================================================================

// Save writes the buffer to path, or to its own path when path is "".
func (e *Engine) Save(path string, opts ...SaveOption) error {
	return e.buf.Save(path, opts...)
}

// Reload rereads the file from disk. Cursors go back to (0,0) and the
// history is cleared, since recorded positions no longer apply.
func (e *Engine) Reload() error {
	if err := e.buf.Reload(); err != nil {
		return err
	}
	e.cursors.Reset(Point{})
	e.history.Clear()
	e.search.refresh(e.buf)
	e.top, e.left = 0, 0
	return nil
}

// SetLineEnding changes the style used on the next save.
func (e *Engine) SetLineEnding(le LineEnding) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.buf.SetLineEnding(le)
	return nil
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo reverts the newest undo step and puts the cursors back where
// they were before it.
func (e *Engine) Undo() error {
	if e.readOnly {
		return ErrReadOnly
	}
	before, err := e.history.Undo(e.buf)
	if err != nil {
		return err
	}
	before.Restore(e.cursors)
	e.afterChange()
	return nil
}

// Redo reapplies the newest undone step and puts the cursors where they
// were after it.
func (e *Engine) Redo() error {
	if e.readOnly {
		return ErrReadOnly
	}
	after, err := e.history.Redo(e.buf)
	if err != nil {
		return err
	}
	after.Restore(e.cursors)
	e.afterChange()
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// UndoCount returns the number of undo steps.
func (e *Engine) UndoCount() int { return e.history.UndoCount() }

// RedoCount returns the number of redo steps.
func (e *Engine) RedoCount() int { return e.history.RedoCount() }

// UndoInfo lists the undo steps, oldest first.
func (e *Engine) UndoInfo() []OperationInfo { return e.history.UndoInfo() }

// ============================================================================
// Edit Application
// ============================================================================

// edit replaces the chars [start, end) of the pre-command text with
// text. caret is where the cursor lands, in chars from start.
type edit struct {
	start, end int
	text       string
	caret      int
	anchor     int
	selects    bool
}

// apply performs a batch of ascending, non-overlapping edits as one
// undo step and moves one cursor to each edit's caret. Positions are
// shifted by a running delta so every edit can be computed against the
// text as it was before the command. On failure the buffer is restored
// and nothing is recorded.
func (e *Engine) apply(edits []edit, now time.Time) error {
	return e.applyWith(edits, nil, now)
}

// applyWith is apply, except that a non-nil keep maps the existing
// cursors to their new places instead of using the edit carets.
func (e *Engine) applyWith(edits []edit, keep func(Cursor) Cursor, now time.Time) error {
	if e.readOnly {
		return ErrReadOnly
	}
	before := history.TakeSnapshot(e.cursors)
	primary := e.cursors.PrimaryIndex()

	var records []history.Record
	cursors := make([]Cursor, 0, len(edits))
	saved := e.buf.State()
	rollback := func(err error) error {
		e.buf.Restore(saved)
		return err
	}

	delta, floor := 0, 0
	for _, ed := range edits {
		start := max(ed.start+delta, floor)
		end := max(ed.end+delta, start)

		sp, err := e.buf.PointAt(start)
		if err != nil {
			return rollback(err)
		}
		if end > start {
			ep, err := e.buf.PointAt(end)
			if err != nil {
				return rollback(err)
			}
			removed, err := e.buf.DeleteRange(sp, ep)
			if err != nil {
				return rollback(err)
			}
			records = append(records, history.Record{Kind: history.Delete, At: sp, Text: removed, Time: now})
		}
		if ed.text != "" {
			if _, err := e.buf.Insert(sp, ed.text); err != nil {
				return rollback(err)
			}
			records = append(records, history.Record{Kind: history.Insert, At: sp, Text: ed.text, Time: now})
		}

		n := utf8.RuneCountInString(ed.text)
		delta += n - (ed.end - ed.start)
		floor = start + n

		head, err := e.buf.PointAt(min(start+ed.caret, e.buf.Len()))
		if err != nil {
			return rollback(err)
		}
		c := cursor.At(head)
		if ed.selects {
			anchor, err := e.buf.PointAt(min(start+ed.anchor, e.buf.Len()))
			if err != nil {
				return rollback(err)
			}
			c = cursor.Select(anchor, head)
		}
		cursors = append(cursors, c)
	}

	if keep != nil {
		cursors = slices.Clone(before.Cursors)
		for i, c := range cursors {
			cursors[i] = keep(c)
		}
	}
	e.cursors.Replace(cursors, primary)
	e.cursors.Clamp(e.buf)
	if len(records) > 0 {
		e.history.Push(records, before, history.TakeSnapshot(e.cursors), now)
	}
	e.afterChange()
	return nil
}

// cursorEdits builds one edit per cursor with f, which receives the
// cursor's selection as char offsets.
func (e *Engine) cursorEdits(f func(c Cursor, start, end int) edit) ([]edit, error) {
	all := e.cursors.All()
	edits := make([]edit, 0, len(all))
	for _, c := range all {
		start, err := e.buf.Offset(c.Start())
		if err != nil {
			return nil, err
		}
		end, err := e.buf.Offset(c.End())
		if err != nil {
			return nil, err
		}
		edits = append(edits, f(c, start, end))
	}
	return edits, nil
}

// afterChange keeps derived state in step with the text.
func (e *Engine) afterChange() {
	e.cursors.Clamp(e.buf)
	e.search.refresh(e.buf)
	e.ScrollToCursor()
}

// moved is called after every cursor-only command.
func (e *Engine) moved() {
	e.history.Seal()
	e.ScrollToCursor()
}

// offsetOf converts p to a char offset, clamping it first.
func (e *Engine) offsetOf(p Point) int {
	off, err := e.buf.Offset(e.buf.Clamp(p))
	if err != nil {
		panic(fmt.Sprintf("clamped point %s has no offset: %v", p, err))
	}
	return off
}
