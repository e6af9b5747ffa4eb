// Package search drives in-document find: it keeps the current term and
// match list and tells a Target what to highlight and reveal.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// Range is a match position. Line is zero-based; Start and End are rune
// columns within that line, End exclusive.
type Range struct {
	Line  int
	Start int
	End   int
}

// Target is anything that can be searched: the built-in editor, the
// embedded Neovim buffer, or the preview.
type Target interface {
	FindMatches(pattern string) []Range
	Highlight(matches []Range, current int)
	ClearHighlights()
	Reveal(r Range)
}

// Session holds search state for one Target.
type Session struct {
	target  Target
	term    string
	matches []Range
	current int
}

// NewSession returns an empty session over target.
func NewSession(target Target) *Session {
	return &Session{target: target, current: -1}
}

// SetTarget moves the session to a different target, clearing highlights
// on the old one and re-running the current term on the new one.
func (s *Session) SetTarget(target Target) {
	if s.target != nil {
		s.target.ClearHighlights()
	}
	s.target = target
	s.SetTerm(s.term)
}

// Term returns the current search term.
func (s *Session) Term() string { return s.term }

// Matches returns the current match list.
func (s *Session) Matches() []Range { return s.matches }

// Current returns the index of the focused match, or -1.
func (s *Session) Current() int { return s.current }

// SetTerm replaces the term. An empty term clears every highlight; a
// non-empty term highlights all matches and reveals the first.
func (s *Session) SetTerm(term string) {
	s.term = term
	s.matches = nil
	s.current = -1
	if s.target == nil {
		return
	}

	if term == "" {
		s.target.ClearHighlights()
		return
	}

	s.matches = s.target.FindMatches(term)
	if len(s.matches) == 0 {
		s.target.ClearHighlights()
		return
	}
	s.current = 0
	s.target.Highlight(s.matches, s.current)
	s.target.Reveal(s.matches[0])
}

// Refresh re-runs the current term, e.g. after the document changed.
// The focused match index is kept when it is still in range. Nothing is
// revealed, so the cursor stays where the user is typing.
func (s *Session) Refresh() {
	if s.target == nil || s.term == "" {
		return
	}
	cur := s.current
	s.matches = s.target.FindMatches(s.term)
	if len(s.matches) == 0 {
		s.current = -1
		s.target.ClearHighlights()
		return
	}
	if cur < 0 || cur >= len(s.matches) {
		cur = 0
	}
	s.current = cur
	s.target.Highlight(s.matches, s.current)
}

// Next focuses the following match, wrapping around.
func (s *Session) Next() (Range, bool) { return s.step(1) }

// Prev focuses the preceding match, wrapping around.
func (s *Session) Prev() (Range, bool) { return s.step(-1) }

func (s *Session) step(dir int) (Range, bool) {
	n := len(s.matches)
	if n == 0 || s.target == nil {
		return Range{}, false
	}
	s.current = ((s.current+dir)%n + n) % n
	r := s.matches[s.current]
	s.target.Highlight(s.matches, s.current)
	s.target.Reveal(r)
	return r, true
}

// Close clears highlights and forgets the term.
func (s *Session) Close() {
	if s.target != nil {
		s.target.ClearHighlights()
	}
	s.term = ""
	s.matches = nil
	s.current = -1
}

// FindInLines returns every case-insensitive literal occurrence of pattern
// in lines, compared under Unicode case folding ("Straße" matches
// "STRASSE"). Matches do not overlap and always cover whole runes of the
// original line.
func FindInLines(lines []string, pattern string) []Range {
	if pattern == "" {
		return nil
	}
	fold := cases.Fold()
	needle := []rune(fold.String(pattern))

	var out []Range
	for i, line := range lines {
		hay, pos := foldLine(fold, line)
		n := len(needle)
		for k := 0; k+n <= len(hay); {
			if runesEqual(hay[k:k+n], needle) && boundary(pos, k) && boundary(pos, k+n) {
				out = append(out, Range{Line: i, Start: pos[k], End: pos[k+n-1] + 1})
				k += n
				continue
			}
			k++
		}
	}
	return out
}

// foldLine case-folds line rune by rune. pos[k] is the column in line of
// the rune that produced folded rune k; pos has one trailing entry for the
// end of the line.
func foldLine(fold cases.Caser, line string) ([]rune, []int) {
	var hay []rune
	var pos []int
	col := 0
	for _, r := range line {
		for _, f := range fold.String(string(r)) {
			hay = append(hay, f)
			pos = append(pos, col)
		}
		col++
	}
	return hay, append(pos, col)
}

// boundary reports whether folded index k starts a new original rune.
func boundary(pos []int, k int) bool {
	return k == 0 || k == len(pos)-1 || pos[k-1] != pos[k]
}

// FindInText splits text on newlines and calls FindInLines.
func FindInText(text, pattern string) []Range {
	return FindInLines(strings.Split(text, "\n"), pattern)
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
