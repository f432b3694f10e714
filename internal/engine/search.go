package engine

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/buffer"
)

// SearchOptions controls how a query is matched.
type SearchOptions struct {
	CaseSensitive bool
	Regex         bool
}

// Match is one occurrence of the search query.
type Match struct {
	Range Range

	start, end int
	loc        []int
}

// Search holds the active query of an engine and its matches, which
// are kept current as the text changes.
type Search struct {
	query   string
	opts    SearchOptions
	re      *regexp.Regexp
	text    string
	matches []Match
	current int
}

// Query returns the active query, or "".
func (s *Search) Query() string { return s.query }

// Options returns the options of the active query.
func (s *Search) Options() SearchOptions { return s.opts }

// Active reports whether a query is set.
func (s *Search) Active() bool { return s.re != nil }

// Count returns the number of matches.
func (s *Search) Count() int { return len(s.matches) }

// Matches returns every match in text order.
func (s *Search) Matches() []Match { return append([]Match(nil), s.matches...) }

// Current returns the selected match.
func (s *Search) Current() (Match, bool) {
	if s.current < 0 || s.current >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.current], true
}

// CurrentIndex returns the position of the selected match, or -1.
func (s *Search) CurrentIndex() int {
	if _, ok := s.Current(); !ok {
		return -1
	}
	return s.current
}

// MatchesInLines returns the matches that touch lines first..last.
func (s *Search) MatchesInLines(first, last int) []Match {
	var out []Match
	for _, m := range s.matches {
		if m.Range.End.Line < first {
			continue
		}
		if m.Range.Start.Line > last {
			break
		}
		out = append(out, m)
	}
	return out
}

// Status returns a summary such as "3 of 7", or "" without a query.
func (s *Search) Status() string {
	if !s.Active() {
		return ""
	}
	if len(s.matches) == 0 {
		return "no matches"
	}
	return fmt.Sprintf("%d of %d", s.CurrentIndex()+1, len(s.matches))
}

func (s *Search) compile(query string, opts SearchOptions) error {
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(query)
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	s.query, s.opts, s.re = query, opts, re
	return nil
}

func (s *Search) clear() {
	*s = Search{}
}

// refresh recomputes the matches against buf, keeping the selection on
// the first match at or after the previously selected one.
func (s *Search) refresh(buf *buffer.Buffer) {
	if s.re == nil {
		return
	}
	prev := -1
	if m, ok := s.Current(); ok {
		prev = m.start
	}

	s.text = buf.Text()
	s.matches = s.matches[:0]
	chars, last := 0, 0
	for _, loc := range s.re.FindAllStringSubmatchIndex(s.text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		chars += utf8.RuneCountInString(s.text[last:loc[0]])
		start := chars
		chars += utf8.RuneCountInString(s.text[loc[0]:loc[1]])
		last = loc[1]

		sp, err := buf.PointAt(start)
		if err != nil {
			continue
		}
		ep, err := buf.PointAt(chars)
		if err != nil {
			continue
		}
		s.matches = append(s.matches, Match{Range: Range{Start: sp, End: ep}, start: start, end: chars, loc: loc})
	}

	s.current = -1
	if prev >= 0 {
		s.current = s.nearest(prev)
	}
}

// nearest returns the index of the first match starting at or after
// offset, wrapping to 0.
func (s *Search) nearest(offset int) int {
	if len(s.matches) == 0 {
		return -1
	}
	for i, m := range s.matches {
		if m.start >= offset {
			return i
		}
	}
	return 0
}

// replacement returns the text that replaces m, expanding $1 style
// references in regex mode.
func (s *Search) replacement(m Match, repl string) string {
	if !s.opts.Regex {
		return repl
	}
	return string(s.re.ExpandString(nil, repl, s.text, m.loc))
}

// ============================================================================
// Engine Search Commands
// ============================================================================

// Search returns the engine's search state.
func (e *Engine) Search() *Search { return e.search }

// Find sets the query and selects the first match at or after the
// primary cursor. It returns the number of matches.
func (e *Engine) Find(query string, opts SearchOptions) (int, error) {
	if query == "" {
		e.search.clear()
		return 0, nil
	}
	if err := e.search.compile(query, opts); err != nil {
		return 0, err
	}
	e.search.current = -1
	e.search.refresh(e.buf)
	if n := e.search.Count(); n > 0 {
		e.selectMatch(e.search.nearest(e.offsetOf(e.cursors.Primary().Start())))
	}
	return e.search.Count(), nil
}

// FindNext selects the next match, wrapping around. It reports false
// when there are no matches.
func (e *Engine) FindNext() bool {
	n := e.search.Count()
	if n == 0 {
		return false
	}
	i := e.search.current + 1
	if e.search.current < 0 {
		i = e.search.nearest(e.offsetOf(e.cursors.Primary().End()))
	}
	e.selectMatch(i % n)
	return true
}

// FindPrev selects the previous match, wrapping around.
func (e *Engine) FindPrev() bool {
	n := e.search.Count()
	if n == 0 {
		return false
	}
	i := e.search.current - 1
	if i < 0 {
		i = n - 1
	}
	e.selectMatch(i)
	return true
}

// ClearSearch drops the query and its matches.
func (e *Engine) ClearSearch() {
	e.search.clear()
}

func (e *Engine) selectMatch(i int) {
	e.search.current = i
	m := e.search.matches[i]
	e.cursors.Replace([]Cursor{selectRange(m.Range)}, 0)
	e.moved()
}

// ReplaceCurrent replaces the selected match and selects the next one.
// It reports false when no match is selected.
func (e *Engine) ReplaceCurrent(repl string, now time.Time) (bool, error) {
	m, ok := e.search.Current()
	if !ok {
		return false, nil
	}
	text := e.search.replacement(m, repl)
	e.cursors.Replace([]Cursor{selectRange(m.Range)}, 0)
	ed := edit{start: m.start, end: m.end, text: text, caret: utf8.RuneCountInString(text)}
	if err := e.apply([]edit{ed}, now); err != nil {
		return false, err
	}
	e.history.Seal()
	if i := e.search.nearest(m.start + utf8.RuneCountInString(text)); i >= 0 {
		e.selectMatch(i)
	}
	return true, nil
}

// ReplaceAll replaces every match as one undo step and returns how many
// were replaced. The cursor ends after the last replacement.
func (e *Engine) ReplaceAll(repl string, now time.Time) (int, error) {
	matches := e.search.Matches()
	if len(matches) == 0 {
		return 0, nil
	}
	edits := make([]edit, len(matches))
	for i, m := range matches {
		text := e.search.replacement(m, repl)
		edits[i] = edit{start: m.start, end: m.end, text: text, caret: utf8.RuneCountInString(text)}
	}
	if err := e.apply(edits, now); err != nil {
		return 0, err
	}
	all := e.cursors.All()
	e.cursors.Replace(all[len(all)-1:], 0)
	e.history.Seal()
	return len(matches), nil
}

func selectRange(r Range) Cursor {
	return Cursor{Anchor: r.Start, Head: r.End}
}
