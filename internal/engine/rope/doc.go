// Package rope provides an immutable rope for editor text.
//
// The rope is a B+ tree whose leaves hold bounded UTF-8 chunks and whose
// internal nodes cache a TextSummary (bytes, chars, newlines) per child.
// Translating between char offsets, byte offsets and line starts descends
// by those summaries and costs O(log n) regardless of file size.
//
//	r := rope.FromString("hello\nworld")
//	r = r.Insert(r.CharToByte(5), ",")
//	r.LineText(0)   // "hello,"
//	r.LineStart(1)  // 7
//
// Edits return new ropes and never modify the receiver.
package rope
