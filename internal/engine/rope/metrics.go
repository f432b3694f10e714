package rope

import "unicode/utf8"

// ByteOffset is an absolute UTF-8 byte position in the rope.
type ByteOffset uint64

// CharOffset is an absolute character (rune) position in the rope.
type CharOffset uint64

// TextSummary holds the aggregated metrics of a text span.
// Summaries form a monoid under Add, which lets internal nodes answer
// offset and line queries without visiting their leaves.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes ByteOffset

	// Chars is the rune count.
	Chars CharOffset

	// Lines is the number of '\n' characters.
	Lines uint32

	// LongestLine is the char length of the longest line.
	LongestLine uint32

	// FirstLineChars is the char length of the first line (excluding newline).
	FirstLineChars uint32

	// LastLineChars is the char length of the last line.
	LastLineChars uint32

	// Flags record text properties used for fast paths.
	Flags TextFlags
}

// TextFlags indicate text properties for fast paths.
type TextFlags uint8

const (
	// FlagASCII is set when every character is ASCII, so chars == bytes.
	FlagASCII TextFlags = 1 << iota

	// FlagHasNewlines is set when the span contains '\n'.
	FlagHasNewlines

	// FlagHasTabs is set when the span contains '\t'.
	FlagHasTabs
)

// Add combines two summaries. The receiver is the text on the left.
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}

	out := TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
		Flags: (s.Flags & other.Flags & FlagASCII) |
			((s.Flags | other.Flags) &^ FlagASCII),
	}

	if other.Lines > 0 {
		joined := s.LastLineChars + other.FirstLineChars
		out.LongestLine = max(s.LongestLine, other.LongestLine, joined)
		out.FirstLineChars = s.FirstLineChars
		if s.Lines == 0 {
			out.FirstLineChars = joined
		}
		out.LastLineChars = other.LastLineChars
		return out
	}

	joined := s.LastLineChars + other.LastLineChars
	out.LongestLine = max(s.LongestLine, joined)
	out.FirstLineChars = s.FirstLineChars
	if s.Lines == 0 {
		out.FirstLineChars = joined
	}
	out.LastLineChars = joined
	return out
}

// IsZero reports whether the summary describes empty text.
func (s TextSummary) IsZero() bool {
	return s.Bytes == 0
}

func emptySummary() TextSummary {
	return TextSummary{Flags: FlagASCII}
}

// ComputeSummary calculates the metrics of s.
func ComputeSummary(s string) TextSummary {
	sum := emptySummary()
	if len(s) == 0 {
		return sum
	}
	sum.Bytes = ByteOffset(len(s))

	var lineLen uint32
	for _, r := range s {
		sum.Chars++
		if r >= utf8.RuneSelf {
			sum.Flags &^= FlagASCII
		}
		switch r {
		case '\n':
			if sum.Lines == 0 {
				sum.FirstLineChars = lineLen
			}
			sum.Lines++
			sum.LongestLine = max(sum.LongestLine, lineLen)
			sum.Flags |= FlagHasNewlines
			lineLen = 0
			continue
		case '\t':
			sum.Flags |= FlagHasTabs
		}
		lineLen++
	}

	sum.LastLineChars = lineLen
	sum.LongestLine = max(sum.LongestLine, lineLen)
	if sum.Lines == 0 {
		sum.FirstLineChars = lineLen
	}
	return sum
}

// byteOfChar returns the byte index of the n-th rune of s, or len(s)
// when n is at or beyond the rune count.
func byteOfChar(s string, n CharOffset, ascii bool) int {
	if ascii {
		return int(min(CharOffset(len(s)), n))
	}
	var i CharOffset
	for b := range s {
		if i == n {
			return b
		}
		i++
	}
	return len(s)
}

// charsIn returns the rune count of s.
func charsIn(s string, ascii bool) CharOffset {
	if ascii {
		return CharOffset(len(s))
	}
	return CharOffset(utf8.RuneCountInString(s))
}

// nthNewline returns the byte index just past the n-th '\n' in s (1-based),
// or -1 if s holds fewer than n newlines.
func nthNewline(s string, n uint32) int {
	if n == 0 {
		return 0
	}
	var seen uint32
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			seen++
			if seen == n {
				return i + 1
			}
		}
	}
	return -1
}
