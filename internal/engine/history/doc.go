// Package history provides undo/redo for a single buffer.
//
// Every edit is stored as a list of Records, each an insert or a delete
// of some text at a point. A delete is undone by inserting the removed
// text back and an insert by deleting it again, so a record carries
// everything needed in both directions.
//
// # Groups
//
// Records are pushed in Groups, one per user edit, together with the
// cursor sets before and after:
//
//	h := history.New(history.WithCoalesceThreshold(500 * time.Millisecond))
//	h.Push(records, before, after, now)
//
//	before, err := h.Undo(buf)
//	after, err := h.Redo(buf)
//
// # Coalescing
//
// A group made of one typed character stays Accumulating. The next
// single-character edit of the same kind, adjacent to it and pushed
// within the threshold, joins it; anything else closes it. Typing a
// word therefore undoes in one step. Callers pass the time of each edit
// so the policy can be tested without waiting.
//
// Seal closes the open group explicitly, which the editor does on cursor
// movement. Pushing any edit clears the redo stack.
package history
