package engine

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func pt(line, col int) Point { return Point{Line: line, Column: col} }

func mustText(t *testing.T, e *Engine, want string) {
	t.Helper()
	if got := e.Text(); got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func mustHead(t *testing.T, e *Engine, want Point) {
	t.Helper()
	if got := e.PrimaryCursor().Head; got != want {
		t.Fatalf("primary head = %v, want %v", got, want)
	}
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if e.Len() != 0 || e.LineCount() != 1 {
		t.Errorf("empty engine: Len() = %d, LineCount() = %d", e.Len(), e.LineCount())
	}
	mustHead(t, e, pt(0, 0))
	if e.Dirty() {
		t.Error("new engine should be clean")
	}
}

func TestNewWithContent(t *testing.T) {
	e := New(WithContent("Hello,\nWorld!"))
	mustText(t, e, "Hello,\nWorld!")
	if e.LineCount() != 2 || e.LineLen(1) != 6 {
		t.Errorf("LineCount() = %d, LineLen(1) = %d", e.LineCount(), e.LineLen(1))
	}
	if _, err := e.LineText(5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("LineText(5) error = %v, want ErrOutOfBounds", err)
	}
}

func TestExampleScenario(t *testing.T) {
	e := New(WithContent("hello\nworld"))
	e.SetCursor(pt(0, 5), false)

	if err := e.InsertText(",", at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "hello,\nworld")
	mustHead(t, e, pt(0, 6))

	if err := e.InsertNewline(at(50)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "hello,\n\nworld")
	mustHead(t, e, pt(1, 0))

	for i := 0; i < 2; i++ {
		if err := e.Undo(); err != nil {
			t.Fatalf("Undo() #%d error = %v", i+1, err)
		}
	}
	mustText(t, e, "hello\nworld")
	mustHead(t, e, pt(0, 5))

	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("third Undo() error = %v, want ErrNothingToUndo", err)
	}
}

// ============================================================================
// Typing and Deleting
// ============================================================================

func TestInsertReplacesSelection(t *testing.T) {
	e := New(WithContent("hello world"))
	e.SetCursor(pt(0, 6), false)
	e.SetCursor(pt(0, 11), true)
	if err := e.InsertText("there", at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "hello there")
	mustHead(t, e, pt(0, 11))
	if e.HasSelection() {
		t.Error("selection should collapse after typing")
	}
}

func TestInsertNormalizesNewlines(t *testing.T) {
	e := New()
	if err := e.InsertText("a\r\nb\rc", at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "a\nb\nc")
	mustHead(t, e, pt(2, 1))
}

func TestInsertInvalidUTF8(t *testing.T) {
	e := New(WithContent("abc"))
	if err := e.InsertText("\xff", at(0)); !errors.Is(err, ErrInvalidText) {
		t.Errorf("InsertText() error = %v, want ErrInvalidText", err)
	}
	mustText(t, e, "abc")
	if e.CanUndo() || e.Dirty() {
		t.Error("failed insert should leave no trace")
	}
}

func TestBackspaceAndDelete(t *testing.T) {
	e := New(WithContent("ab\ncd"))
	e.SetCursor(pt(1, 0), false)
	if err := e.Backspace(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "abcd")
	mustHead(t, e, pt(0, 2))

	if err := e.DeleteForward(at(1000)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "abd")

	e.MoveToBufferStart(false)
	if err := e.Backspace(at(2000)); err != nil {
		t.Fatal(err)
	}
	e.MoveToBufferEnd(false)
	if err := e.DeleteForward(at(3000)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "abd")
	if e.UndoCount() != 2 {
		t.Errorf("no-op deletes should not record: UndoCount() = %d", e.UndoCount())
	}
}

func TestDeleteWordLeft(t *testing.T) {
	e := New(WithContent("hello brave world"))
	e.MoveToBufferEnd(false)
	if err := e.DeleteWordLeft(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "hello brave ")
}

func TestDeleteWordLeftUndoRestoresCaret(t *testing.T) {
	e := New(WithContent("one two\nthree four"))
	e.SetCursor(pt(0, 7), false)
	e.AddCursor(pt(1, 10))
	if err := e.DeleteWordLeft(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "one \nthree ")

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "one two\nthree four")
	if e.HasSelection() {
		t.Error("undo should restore carets, not selections")
	}
	want := []Point{pt(0, 7), pt(1, 10)}
	for i, c := range e.Cursors() {
		if c.Head != want[i] {
			t.Errorf("cursor %d = %v, want %v", i, c.Head, want[i])
		}
	}
}

func TestDeleteWordLeftReadOnlyKeepsCursors(t *testing.T) {
	e := New(WithContent("hello world"), WithReadOnly())
	e.MoveToBufferEnd(false)
	if err := e.DeleteWordLeft(at(0)); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("DeleteWordLeft() error = %v, want ErrReadOnly", err)
	}
	mustHead(t, e, pt(0, 11))
	if e.HasSelection() {
		t.Error("failed delete should not leave a selection")
	}
}

func TestAutoIndent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		head    Point
	}{
		{"copies indent", "    x = 1", "    x = 1\n    ", pt(1, 4)},
		{"after brace", "    if x {", "    if x {\n        ", pt(1, 8)},
		{"after colon with tabs", "\tdef f():", "\tdef f():\n\t\t", pt(1, 2)},
		{"no indent", "plain", "plain\n", pt(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithContent(tt.content))
			e.MoveToBufferEnd(false)
			if err := e.InsertNewline(at(0)); err != nil {
				t.Fatal(err)
			}
			mustText(t, e, tt.want)
			mustHead(t, e, tt.head)
		})
	}

	e := New(WithContent("    x"), WithAutoIndent(false))
	e.MoveToBufferEnd(false)
	e.InsertNewline(at(0))
	mustText(t, e, "    x\n")
}

// ============================================================================
// Undo/Redo and Coalescing
// ============================================================================

func TestTypingCoalesces(t *testing.T) {
	e := New()
	for i, ch := range []string{"a", "b", "c"} {
		if err := e.InsertText(ch, at(i*100)); err != nil {
			t.Fatal(err)
		}
	}
	if e.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", e.UndoCount())
	}
	e.Undo()
	mustText(t, e, "")

	e.Redo()
	mustText(t, e, "abc")
	mustHead(t, e, pt(0, 3))
}

func TestTypingPauseSplitsUndo(t *testing.T) {
	e := New()
	e.InsertText("a", at(0))
	e.InsertText("b", at(100))
	e.InsertText("c", at(900))
	if e.UndoCount() != 2 {
		t.Fatalf("UndoCount() = %d, want 2", e.UndoCount())
	}
	e.Undo()
	mustText(t, e, "ab")
}

func TestCustomCoalesceThreshold(t *testing.T) {
	e := New(WithCoalesceThreshold(2 * time.Second))
	e.InsertText("a", at(0))
	e.InsertText("b", at(1500))
	if e.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.UndoCount())
	}
}

func TestMovementSealsGroup(t *testing.T) {
	e := New()
	e.InsertText("a", at(0))
	e.MoveLeft(false)
	e.MoveRight(false)
	e.InsertText("b", at(10))
	if e.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", e.UndoCount())
	}
}

func TestBackspaceCoalesces(t *testing.T) {
	e := New(WithContent("abcdef"))
	e.MoveToBufferEnd(false)
	for i := 0; i < 3; i++ {
		e.Backspace(at(i * 50))
	}
	mustText(t, e, "abc")
	if e.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", e.UndoCount())
	}
	e.Undo()
	mustText(t, e, "abcdef")
	mustHead(t, e, pt(0, 6))
}

func TestNewEditClearsRedo(t *testing.T) {
	e := New()
	e.InsertText("one", at(0))
	e.Undo()
	e.InsertText("two", at(100))
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
	mustText(t, e, "two")
}

func TestUndoRestoresDirtyFlagSemantics(t *testing.T) {
	e := New(WithContent("x"))
	e.InsertText("y", at(0))
	if !e.Dirty() {
		t.Fatal("edit should set dirty")
	}
	e.Undo()
	if !e.Dirty() {
		t.Error("undo is an edit and keeps the buffer dirty")
	}
}

// ============================================================================
// Multi-Cursor Editing
// ============================================================================

func TestMultiCursorInsert(t *testing.T) {
	e := New(WithContent("foo\nbar\nbaz"))
	e.AddCursor(pt(1, 0))
	e.AddCursor(pt(2, 0))
	if e.CursorCount() != 3 {
		t.Fatalf("CursorCount() = %d, want 3", e.CursorCount())
	}
	if err := e.InsertText("// ", at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "// foo\n// bar\n// baz")
	for i, c := range e.Cursors() {
		if c.Head != pt(i, 3) {
			t.Errorf("cursor %d = %v, want (%d:3)", i, c, i)
		}
	}

	e.Undo()
	mustText(t, e, "foo\nbar\nbaz")
	if e.CursorCount() != 3 {
		t.Errorf("undo should restore 3 cursors, got %d", e.CursorCount())
	}
}

func TestMultiCursorSameLine(t *testing.T) {
	e := New(WithContent("a-b-c"))
	e.AddCursor(pt(0, 2))
	e.AddCursor(pt(0, 4))
	e.InsertText("X", at(0))
	mustText(t, e, "Xa-Xb-Xc")
	if e.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.UndoCount())
	}
}

func TestMultiCursorBackspaceMerges(t *testing.T) {
	e := New(WithContent("abc"))
	e.SetCursor(pt(0, 1), false)
	e.AddCursor(pt(0, 2))
	if err := e.Backspace(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "c")
	if e.CursorCount() != 1 {
		t.Errorf("CursorCount() = %d, want 1 after heads collide", e.CursorCount())
	}
	mustHead(t, e, pt(0, 0))
}

func TestMultiCursorDoesNotCoalesceAcrossMoves(t *testing.T) {
	e := New(WithContent("a\nb"))
	e.AddCursor(pt(1, 1))
	e.MoveToLineEnd(false)
	e.InsertText("1", at(0))
	e.InsertText("2", at(10))
	mustText(t, e, "a12\nb12")
	if e.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", e.UndoCount())
	}
}

func TestAddCursorAboveBelow(t *testing.T) {
	e := New(WithContent("one\ntwo\nthree"))
	e.SetCursor(pt(1, 2), false)
	if !e.AddCursorAbove() || !e.AddCursorBelow() {
		t.Fatal("AddCursorAbove/Below should succeed")
	}
	if e.AddCursorBelow() {
		t.Error("AddCursorBelow on the last line should fail")
	}
	if e.CursorCount() != 3 {
		t.Errorf("CursorCount() = %d, want 3", e.CursorCount())
	}
	e.CollapseCursors()
	if e.CursorCount() != 1 {
		t.Errorf("CollapseCursors left %d", e.CursorCount())
	}
}

// ============================================================================
// Clipboard
// ============================================================================

func TestCutCopyPaste(t *testing.T) {
	e := New(WithContent("hello world"))
	e.SetCursor(pt(0, 0), false)
	e.SetCursor(pt(0, 6), true)
	if got := e.Copy(); got != "hello " {
		t.Errorf("Copy() = %q", got)
	}
	cut, err := e.Cut(at(0))
	if err != nil || cut != "hello " {
		t.Fatalf("Cut() = %q, %v", cut, err)
	}
	mustText(t, e, "world")

	e.MoveToBufferEnd(false)
	if err := e.Paste(" "+cut, at(1000)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "world hello ")
}

func TestCopyWithoutSelectionCopiesLine(t *testing.T) {
	e := New(WithContent("first\nsecond"))
	e.SetCursor(pt(1, 2), false)
	if got := e.Copy(); got != "second\n" {
		t.Errorf("Copy() = %q, want %q", got, "second\n")
	}
	if cut, _ := e.Cut(at(0)); cut != "" {
		t.Errorf("Cut() without selection = %q", cut)
	}
}

func TestPasteDistributesLines(t *testing.T) {
	e := New(WithContent("x\ny"))
	e.SetCursor(pt(0, 1), false)
	e.AddCursor(pt(1, 1))
	if err := e.Paste("A\r\nB", at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "xA\nyB")
}

func TestPasteInvalidUTF8(t *testing.T) {
	e := New(WithContent("a\nb"))
	e.SetCursor(pt(0, 1), false)
	e.AddCursor(pt(1, 1))
	rev := e.Revision()
	if err := e.Paste("x\n\xff", at(0)); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("Paste() error = %v, want ErrInvalidText", err)
	}
	mustText(t, e, "a\nb")
	if e.Dirty() || e.Revision() != rev || e.CanUndo() {
		t.Errorf("failed paste left a trace: dirty=%v revision=%d->%d", e.Dirty(), rev, e.Revision())
	}
}

func TestFailedBatchRollsBack(t *testing.T) {
	e := New(WithContent("abc"))
	rev := e.Revision()
	err := e.apply([]edit{
		{start: 0, end: 1, text: "X"},
		{start: 2, end: 2, text: "\xff"},
	}, at(0))
	if err == nil {
		t.Fatal("apply() should fail on invalid text")
	}
	mustText(t, e, "abc")
	if e.Dirty() || e.Revision() != rev || e.CanUndo() {
		t.Errorf("rollback left a trace: dirty=%v revision=%d->%d", e.Dirty(), rev, e.Revision())
	}
}

// ============================================================================
// Line Operations
// ============================================================================

func TestDuplicateLine(t *testing.T) {
	e := New(WithContent("abc\ndef"))
	e.SetCursor(pt(0, 1), false)
	if err := e.DuplicateLine(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "abc\nabc\ndef")
	mustHead(t, e, pt(1, 1))

	e.SetCursor(pt(2, 3), false)
	e.DuplicateLine(at(1000))
	mustText(t, e, "abc\nabc\ndef\ndef")
	mustHead(t, e, pt(3, 3))
}

func TestMoveLines(t *testing.T) {
	e := New(WithContent("one\ntwo\nthree"))
	e.SetCursor(pt(0, 1), false)
	if err := e.MoveLineDown(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "two\none\nthree")
	mustHead(t, e, pt(1, 1))

	e.SetCursor(pt(2, 2), false)
	if err := e.MoveLineUp(at(1000)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "two\nthree\none")
	mustHead(t, e, pt(1, 2))

	e.SetCursor(pt(0, 0), false)
	e.MoveLineUp(at(2000))
	e.MoveToBufferEnd(false)
	e.MoveLineDown(at(3000))
	mustText(t, e, "two\nthree\none")

	e.Undo()
	e.Undo()
	mustText(t, e, "one\ntwo\nthree")
}

func TestIndentOutdent(t *testing.T) {
	e := New(WithContent("a\nb\nc"))
	e.SetCursor(pt(0, 0), false)
	e.SetCursor(pt(1, 1), true)
	if err := e.Indent(at(0)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "    a\n    b\nc")
	c := e.PrimaryCursor()
	if c.Anchor != pt(0, 4) || c.Head != pt(1, 5) {
		t.Errorf("cursor after Indent = %v", c)
	}

	if err := e.Outdent(at(1000)); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "a\nb\nc")
	e.Undo()
	mustText(t, e, "    a\n    b\nc")
}

// ============================================================================
// Movement and Selection
// ============================================================================

func TestStickyColumnThroughEngine(t *testing.T) {
	e := New(WithContent("0123456789ab\nxyz\n0123456789ab"))
	e.SetCursor(pt(2, 10), false)
	e.MoveUp(false)
	mustHead(t, e, pt(1, 3))
	e.MoveDown(false)
	mustHead(t, e, pt(2, 10))
}

func TestSelectWordAndLine(t *testing.T) {
	e := New(WithContent("say hello there\nnext"))
	e.SetCursor(pt(0, 6), false)
	e.SelectWord()
	if got := e.SelectedText(); got != "hello" {
		t.Errorf("SelectWord() selected %q", got)
	}
	e.SelectLine()
	if got := e.SelectedText(); got != "say hello there\n" {
		t.Errorf("SelectLine() selected %q", got)
	}
	e.ClearSelection()
	if e.HasSelection() {
		t.Error("ClearSelection() left a selection")
	}
	e.SelectAll()
	if got := e.SelectedText(); got != e.Text() {
		t.Errorf("SelectAll() selected %q", got)
	}
}

func TestGoToLine(t *testing.T) {
	e := New(WithContent("a\nb\nc"))
	e.GoToLine(2)
	mustHead(t, e, pt(2, 0))
	e.GoToLine(99)
	mustHead(t, e, pt(2, 1))
}

// ============================================================================
// Search
// ============================================================================

func TestFindAndNavigate(t *testing.T) {
	e := New(WithContent("foo bar foo\nFOO"))
	n, err := e.Find("foo", SearchOptions{})
	if err != nil || n != 3 {
		t.Fatalf("Find() = %d, %v; want 3", n, err)
	}
	if got := e.Selections()[0]; got != (Range{Start: pt(0, 0), End: pt(0, 3)}) {
		t.Errorf("first match = %v", got)
	}
	e.FindNext()
	e.FindNext()
	if got := e.Selections()[0]; got.Start != pt(1, 0) {
		t.Errorf("third match = %v", got)
	}
	e.FindNext()
	if got := e.Selections()[0]; got.Start != pt(0, 0) {
		t.Errorf("FindNext should wrap, got %v", got)
	}
	e.FindPrev()
	if got := e.Search().Status(); got != "3 of 3" {
		t.Errorf("Status() = %q", got)
	}

	if n, _ := e.Find("foo", SearchOptions{CaseSensitive: true}); n != 2 {
		t.Errorf("case-sensitive Find() = %d, want 2", n)
	}
	if _, err := e.Find("(", SearchOptions{Regex: true}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Find() error = %v, want ErrInvalidPattern", err)
	}
}

func TestReplace(t *testing.T) {
	e := New(WithContent("foo bar foo"))
	e.Find("foo", SearchOptions{})
	ok, err := e.ReplaceCurrent("baz", at(0))
	if !ok || err != nil {
		t.Fatalf("ReplaceCurrent() = %v, %v", ok, err)
	}
	mustText(t, e, "baz bar foo")
	if got := e.Selections()[0]; got.Start != pt(0, 8) {
		t.Errorf("next match should be selected, got %v", got)
	}

	n, err := e.ReplaceAll("qux", at(1000))
	if err != nil || n != 1 {
		t.Fatalf("ReplaceAll() = %d, %v", n, err)
	}
	mustText(t, e, "baz bar qux")
}

func TestReplaceAllIsOneUndoStep(t *testing.T) {
	e := New(WithContent("a1 b2 c3"))
	if n, _ := e.Find(`([a-z])(\d)`, SearchOptions{Regex: true}); n != 3 {
		t.Fatalf("Find() = %d, want 3", n)
	}
	n, err := e.ReplaceAll("$2$1", at(0))
	if err != nil || n != 3 {
		t.Fatalf("ReplaceAll() = %d, %v", n, err)
	}
	mustText(t, e, "1a 2b 3c")
	if e.Search().Count() != 0 {
		t.Errorf("matches after replace = %d, want 0", e.Search().Count())
	}
	e.Undo()
	mustText(t, e, "a1 b2 c3")
	if e.Search().Count() != 3 {
		t.Errorf("matches after undo = %d, want 3", e.Search().Count())
	}
}

func TestMatchesInLines(t *testing.T) {
	e := New(WithContent("x\nx\nx\nx"))
	e.Find("x", SearchOptions{})
	if got := e.Search().MatchesInLines(1, 2); len(got) != 2 {
		t.Errorf("MatchesInLines(1, 2) = %v", got)
	}
}

// ============================================================================
// Viewport Queries
// ============================================================================

func TestCursorScreenPosition(t *testing.T) {
	e := New(WithContent("\tab\n日本語"), WithTabWidth(4))
	e.SetCursor(pt(0, 1), false)
	if got := e.CursorScreenPosition(); got != (ScreenPosition{Row: 0, Col: 4}) {
		t.Errorf("CursorScreenPosition() = %+v, want {0 4}", got)
	}
	e.SetCursor(pt(1, 2), false)
	if got := e.CursorScreenPosition(); got != (ScreenPosition{Row: 1, Col: 4}) {
		t.Errorf("CursorScreenPosition() = %+v, want {1 4}", got)
	}
	if got := e.PointAtScreen(ScreenPosition{Row: 0, Col: 5}); got != pt(0, 2) {
		t.Errorf("PointAtScreen() = %v, want (0:2)", got)
	}
}

func TestViewportScrolling(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strings.Repeat("x", i)
	}
	e := New(WithContent(strings.Join(lines, "\n")), WithViewport(3, 80))
	e.GoToLine(5)
	first, last := e.VisibleRange()
	if first != 3 || last != 5 {
		t.Errorf("VisibleRange() = %d, %d; want 3, 5", first, last)
	}
	visible := e.VisibleLines()
	if len(visible) != 3 || visible[2].Number != 5 || visible[2].Text != "xxxxx" {
		t.Errorf("VisibleLines() = %+v", visible)
	}
	if got := e.CursorScreenPosition(); got.Row != 2 {
		t.Errorf("cursor row = %d, want 2", got.Row)
	}
	e.PageUp(false)
	mustHead(t, e, pt(3, 0))
}

func TestMatchingBracket(t *testing.T) {
	e := New(WithContent("f(a[1], {b})"))
	e.SetCursor(pt(0, 1), false)
	a, b, ok := e.MatchingBracket()
	if !ok || a != pt(0, 1) || b != pt(0, 11) {
		t.Errorf("MatchingBracket() = %v, %v, %v", a, b, ok)
	}
	e.SetCursor(pt(0, 6), false)
	if a, b, ok := e.MatchingBracket(); !ok || a != pt(0, 5) || b != pt(0, 3) {
		t.Errorf("MatchingBracket() before cursor = %v, %v, %v", a, b, ok)
	}
}

func TestMatchingBracketAcrossLines(t *testing.T) {
	e := New(WithContent("fn(é) {\n\tif ü {\n\t\tx()\n\t}\n}"))
	e.SetCursor(pt(0, 6), false)
	if a, b, ok := e.MatchingBracket(); !ok || a != pt(0, 6) || b != pt(4, 0) {
		t.Errorf("MatchingBracket() forward = %v, %v, %v", a, b, ok)
	}
	e.SetCursor(pt(3, 1), false)
	if a, b, ok := e.MatchingBracket(); !ok || a != pt(3, 1) || b != pt(1, 6) {
		t.Errorf("MatchingBracket() backward = %v, %v, %v", a, b, ok)
	}
	e.SetCursor(pt(4, 1), false)
	if a, b, ok := e.MatchingBracket(); !ok || a != pt(4, 0) || b != pt(0, 6) {
		t.Errorf("MatchingBracket() from end = %v, %v, %v", a, b, ok)
	}

	e = New(WithContent("(\n(\n)"))
	if _, _, ok := e.MatchingBracket(); ok {
		t.Error("unbalanced bracket should not match")
	}
}

// ============================================================================
// Files and Read-Only
// ============================================================================

func TestOpenEditSaveCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("a\r\nb\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "a\nb\n")
	e.SetCursor(pt(0, 1), false)
	e.InsertText("!", at(0))
	if !e.Dirty() {
		t.Fatal("edit should mark dirty")
	}
	if err := e.Save(""); err != nil {
		t.Fatal(err)
	}
	if e.Dirty() {
		t.Error("save should clear dirty")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a!\r\nb\r\n" {
		t.Errorf("saved %q", data)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want not-exist", err)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	e := New(WithContent("x"))
	if err := e.Save(""); !errors.Is(err, ErrPathRequired) {
		t.Errorf("Save() error = %v, want ErrPathRequired", err)
	}
}

func TestReloadResetsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	os.WriteFile(path, []byte("old"), 0o644)
	e, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	e.MoveToBufferEnd(false)
	e.InsertText("er", at(0))
	e.AddCursor(pt(0, 0))

	os.WriteFile(path, []byte("new content"), 0o644)
	if err := e.Reload(); err != nil {
		t.Fatal(err)
	}
	mustText(t, e, "new content")
	mustHead(t, e, pt(0, 0))
	if e.CursorCount() != 1 || e.CanUndo() || e.Dirty() {
		t.Errorf("Reload() left cursors=%d canUndo=%v dirty=%v", e.CursorCount(), e.CanUndo(), e.Dirty())
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithContent("fixed"), WithReadOnly())
	if err := e.InsertText("x", at(0)); !errors.Is(err, ErrReadOnly) {
		t.Errorf("InsertText() error = %v, want ErrReadOnly", err)
	}
	if err := e.Backspace(at(0)); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Backspace() error = %v, want ErrReadOnly", err)
	}
	mustText(t, e, "fixed")
	e.MoveRight(false)
	mustHead(t, e, pt(0, 1))
}

// ============================================================================
// Properties
// ============================================================================

func TestUndoAllRestoresTextProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.StringMatching(`[ab {}\n]{0,30}`).Draw(t, "initial")
		e := New(WithContent(initial))
		ms := 0

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			ms += rapid.IntRange(0, 800).Draw(t, "gap")
			now := at(ms)
			switch rapid.IntRange(0, 11).Draw(t, "op") {
			case 0:
				e.InsertText(rapid.StringMatching(`[xyz]{1,2}`).Draw(t, "text"), now)
			case 1:
				e.InsertNewline(now)
			case 2:
				e.Backspace(now)
			case 3:
				e.DeleteForward(now)
			case 4:
				e.MoveLeft(rapid.Bool().Draw(t, "extend"))
			case 5:
				e.MoveDown(rapid.Bool().Draw(t, "extend"))
			case 6:
				e.AddCursorBelow()
			case 7:
				e.DuplicateLine(now)
			case 8:
				e.MoveLineDown(now)
			case 9:
				e.Indent(now)
			case 10:
				e.Paste("p\nq", now)
			case 11:
				e.MoveWordRight(true)
			}
		}

		final := e.Text()
		for e.CanUndo() {
			if err := e.Undo(); err != nil {
				t.Fatal(err)
			}
		}
		if e.Text() != initial {
			t.Fatalf("after undo all Text() = %q, want %q", e.Text(), initial)
		}
		for e.CanRedo() {
			if err := e.Redo(); err != nil {
				t.Fatal(err)
			}
		}
		if e.Text() != final {
			t.Fatalf("after redo all Text() = %q, want %q", e.Text(), final)
		}
	})
}

// TestEditingMatchesModel drives a large buffer with scattered and
// consecutive edits, undo and redo, and compares it against a plain
// rune slice after every step.
func TestEditingMatchesModel(t *testing.T) {
	base := []rune(strings.Repeat("lorem ipsum dolor\n", 256*1024/18+1))
	rapid.Check(t, func(t *rapid.T) {
		e := New(WithContent(string(base)))
		startHeight := e.buf.TreeHeight()

		model := slices.Clone(base)
		pos := 0
		var undo, redo [][]rune
		ms := 0

		record := func(before []rune) {
			undo = append(undo, before)
			redo = nil
		}
		place := func(off int) {
			p, err := e.buf.PointAt(off)
			if err != nil {
				t.Fatal(err)
			}
			e.SetCursor(p, false)
			pos = off
		}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			ms += 1000
			now := at(ms)
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0:
				place(rapid.IntRange(0, len(model)).Draw(t, "at"))
			case 1, 2:
				text := []rune(rapid.StringMatching(`[a-z é世\n]{1,8}`).Draw(t, "text"))
				if err := e.InsertText(string(text), now); err != nil {
					t.Fatal(err)
				}
				record(model)
				model = slices.Concat(model[:pos:pos], text, model[pos:])
				pos += len(text)
			case 3:
				if err := e.Backspace(now); err != nil {
					t.Fatal(err)
				}
				if pos > 0 {
					record(model)
					model = slices.Concat(model[:pos-1:pos-1], model[pos:])
					pos--
				}
			case 4:
				text := []rune(rapid.StringMatching(`[xyz]{1,40}\n[xyz]{0,40}`).Draw(t, "paste"))
				if err := e.Paste(string(text), now); err != nil {
					t.Fatal(err)
				}
				record(model)
				model = slices.Concat(model[:pos:pos], text, model[pos:])
				pos += len(text)
			case 5:
				if len(undo) == 0 {
					continue
				}
				if err := e.Undo(); err != nil {
					t.Fatal(err)
				}
				redo = append(redo, model)
				model = undo[len(undo)-1]
				undo = undo[:len(undo)-1]
				place(e.offsetOf(e.PrimaryCursor().Head))
			case 6:
				if len(redo) == 0 {
					continue
				}
				if err := e.Redo(); err != nil {
					t.Fatal(err)
				}
				undo = append(undo, model)
				model = redo[len(redo)-1]
				redo = redo[:len(redo)-1]
				place(e.offsetOf(e.PrimaryCursor().Head))
			}

			if e.Len() != len(model) || e.Text() != string(model) {
				t.Fatalf("step %d: text diverged from model (len %d, want %d)", i, e.Len(), len(model))
			}
			if h := e.buf.TreeHeight(); h > startHeight+2 {
				t.Fatalf("step %d: tree height %d, started at %d", i, h, startHeight)
			}
		}

		// Typing a run of characters in one place must not deepen the tree.
		place(len(model) / 2)
		for i := 0; i < 500; i++ {
			ms += 10
			if err := e.InsertText("k", at(ms)); err != nil {
				t.Fatal(err)
			}
		}
		if h := e.buf.TreeHeight(); h > startHeight+2 {
			t.Fatalf("tree height %d after typing, started at %d", h, startHeight)
		}
	})
}
