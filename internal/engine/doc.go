// Package engine provides the editing core of one open document.
//
// The engine package is the facade over its sub-packages, combining the
// text, the cursors and the undo history behind editing commands:
//
//   - rope: B+ tree rope for text storage (O(log n) line and offset lookups)
//   - buffer: file-backed text with line ending and encoding handling
//   - cursor: the sorted, self-merging multi-cursor set and its movement
//   - history: undo/redo groups with time-based coalescing
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("hello\nworld"))
//	e.SetCursor(engine.Point{Line: 0, Column: 5}, false)
//	e.InsertText(",", time.Now())  // "hello,\nworld"
//	e.InsertNewline(time.Now())    // "hello,\n\nworld"
//	e.Undo()
//
// Commands that change text take the time of the keystroke. The engine
// has no clock of its own; consecutive typed characters join one undo
// step only when the caller's timestamps are close enough.
//
// # Multiple Cursors
//
// Every command applies to all cursors. Edits are computed against the
// text as it was before the command and applied front to back, so each
// cursor's change lands where the user saw it:
//
//	e := engine.New(engine.WithContent("foo\nbar"))
//	e.AddCursorBelow()
//	e.InsertText("// ", time.Now()) // "// foo\n// bar"
//
// # Files
//
// Open loads a file and remembers its line ending and encoding; Save
// writes them back unless overridden:
//
//	e, err := engine.Open("notes.txt")
//	...
//	err = e.Save("", buffer.SaveLineEnding(buffer.LineEndingLF))
//
// # Thread Safety
//
// An Engine is owned by one goroutine. It does no locking and performs
// no background work; only Open, Save and Reload touch the disk.
package engine
