package cursor

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// span is one Unicode word-boundary segment of a line, in char columns.
type span struct {
	start, end int
	word       bool
}

// wordSpans splits a line at Unicode word boundaries (UAX #29). Spans of
// whitespace or punctuation are kept with word set to false.
func wordSpans(line string) []span {
	var spans []span
	state := -1
	col := 0
	for len(line) > 0 {
		var seg string
		seg, line, state = uniseg.FirstWordInString(line, state)
		n := utf8.RuneCountInString(seg)
		spans = append(spans, span{start: col, end: col + n, word: isWordSegment(seg)})
		col += n
	}
	return spans
}

func isWordSegment(seg string) bool {
	for _, r := range seg {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// wordStartBefore returns the start column of the last word that begins
// before col, or 0.
func wordStartBefore(line string, col int) int {
	best := 0
	for _, sp := range wordSpans(line) {
		if sp.start >= col {
			break
		}
		if sp.word {
			best = sp.start
		}
	}
	return best
}

// wordEndAfter returns the end column of the first word that ends after
// col, or the line length.
func wordEndAfter(line string, col int) int {
	spans := wordSpans(line)
	for _, sp := range spans {
		if sp.word && sp.end > col {
			return sp.end
		}
	}
	if len(spans) == 0 {
		return col
	}
	return spans[len(spans)-1].end
}

// WordAt returns the column range of the word under or just before col,
// and false when there is none.
func WordAt(line string, col int) (start, end int, ok bool) {
	for _, sp := range wordSpans(line) {
		if sp.word && sp.start <= col && col <= sp.end {
			return sp.start, sp.end, true
		}
	}
	return 0, 0, false
}
