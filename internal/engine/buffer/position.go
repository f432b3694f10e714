package buffer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Point is a zero-based line and column. The column counts characters,
// not bytes, and may equal the line length to address the line end.
type Point struct {
	Line   int
	Column int
}

// String returns the point as "(line:column)".
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1, 0 or 1 as p sorts before, equal to or after other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before reports whether p sorts before other.
func (p Point) Before(other Point) bool { return p.Compare(other) < 0 }

// After reports whether p sorts after other.
func (p Point) After(other Point) bool { return p.Compare(other) > 0 }

// Advance returns the point reached by writing text starting at p.
func (p Point) Advance(text string) Point {
	nl := strings.Count(text, "\n")
	if nl == 0 {
		return Point{Line: p.Line, Column: p.Column + utf8.RuneCountInString(text)}
	}
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return Point{Line: p.Line + nl, Column: utf8.RuneCountInString(last)}
}

// Range is a span between two points. Start never sorts after End.
type Range struct {
	Start Point
	End   Point
}

// NewRange orders a and b into a Range.
func NewRange(a, b Point) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsEmpty reports whether the range spans no text.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether p lies within the range, ends included.
func (r Range) Contains(p Point) bool {
	return !p.Before(r.Start) && !p.After(r.End)
}

// String returns the range as "(l:c)-(l:c)".
func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}
