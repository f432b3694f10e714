// Package buffer holds the text of one file on top of a rope.
//
// A Buffer addresses text by Point (zero-based line and column, with the
// column counted in characters) and converts to and from absolute char
// offsets in O(log n). It remembers the file's path, encoding and line
// ending style so that an unchanged buffer saves back to identical bytes.
//
//	buf := buffer.NewFromString("hello\nworld")
//	end, _ := buf.Insert(buffer.Point{Line: 0, Column: 5}, ",")
//	// end == Point{0, 6}, buf.Dirty() == true
//
// Buffer methods are not safe for concurrent use; the caller serializes
// access.
package buffer
