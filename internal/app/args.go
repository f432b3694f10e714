package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/quill/internal/engine"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits a command line on blanks. Double-quoted words take Go
// escapes (\n, \t, \"); single-quoted words are literal. Adjacent quoted
// and bare parts join into one word.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		inArg bool
	)
	for i := 0; i < len(line); {
		switch c := line[i]; c {
		case ' ', '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
			i++
		case '"':
			end := closingQuote(line, i)
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			s, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return nil, fmt.Errorf("bad quoted text %s: %w", line[i:end+1], err)
			}
			cur.WriteString(s)
			inArg = true
			i = end + 1
		case '\'':
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			cur.WriteString(line[i+1 : i+1+end])
			inArg = true
			i += end + 2
		default:
			cur.WriteByte(c)
			inArg = true
			i++
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

func closingQuote(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// parsePoint parses a one-based "LINE" or "LINE:COL" into a zero-based
// point. hasCol is false when no column was given.
func parsePoint(s string) (p engine.Point, hasCol bool, err error) {
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return engine.Point{}, false, fmt.Errorf("bad line %q", lineStr)
	}
	p.Line = line - 1
	if hasCol {
		col, err := strconv.Atoi(colStr)
		if err != nil || col < 1 {
			return engine.Point{}, false, fmt.Errorf("bad column %q", colStr)
		}
		p.Column = col - 1
	}
	return p, hasCol, nil
}

// parseIndex parses a one-based index into a zero-based one.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad index %q", s)
	}
	return n - 1, nil
}

// hasFlag reports whether any of args equals one of names.
func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}
