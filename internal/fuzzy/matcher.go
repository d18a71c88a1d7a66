// Package fuzzy decides whether captured process output satisfies a pattern
// that may contain the "..." wildcard.
//
// A pattern line that is only "..." matches zero or more whole lines. A line
// starting with "..." matches an actual line ending with the rest, a line
// ending with "..." matches an actual line starting with the rest, and a line
// wrapped in "..." matches an actual line containing the inner text. All
// other lines must be equal.
package fuzzy

import (
	"errors"
	"strings"
	"unicode"

	m "langtest.dev/pkg/langtest/internal/model"
)

// Wildcard is the elision marker.
const Wildcard = m.Wildcard

// ErrConsecutiveWildcards is returned for a pattern with two whole-line
// wildcards in a row.
var ErrConsecutiveWildcards = errors.New("can't have '" + Wildcard + "' on two consecutive lines")

// Options configures a Matcher.
type Options struct {
	// IgnoreLeadingWhitespace trims both ends of every line. When false only
	// trailing whitespace is removed, so indentation is significant.
	IgnoreLeadingWhitespace bool

	// NameMatcher enables named captures. Nil disables them.
	NameMatcher *NameMatcher
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{IgnoreLeadingWhitespace: true}
}

// Outcome describes a match attempt. On failure PatternLine and ActualLine
// point at the first divergence; -1 means that side ran out of lines.
type Outcome struct {
	Matched     bool
	PatternLine int
	ActualLine  int
}

// Matcher matches patterns against text. It is safe for concurrent use.
type Matcher struct {
	opts  Options
	names *names
}

// New builds a Matcher from opts.
func New(opts Options) *Matcher {
	mt := &Matcher{opts: opts}
	if opts.NameMatcher != nil {
		mt.names = newNames(*opts.NameMatcher)
	}

	return mt
}

// Match matches pattern against text using DefaultOptions.
func Match(pattern []string, text string) (Outcome, error) {
	return New(DefaultOptions()).Match(pattern, text)
}

// Match reports whether text conforms to pattern.
func (mt *Matcher) Match(pattern []string, text string) (Outcome, error) {
	plines := mt.patternLines(pattern)
	if err := checkWildcards(plines); err != nil {
		return Outcome{}, err
	}

	slines := mt.textLines(text)
	b := bindings(nil)
	pi, si := 0, 0

	for pi < len(plines) && si < len(slines) {
		if isWildcard(plines[pi]) {
			pi++
			if pi == len(plines) {
				return matched(), nil
			}

			for si < len(slines) {
				if _, ok := mt.matchLine(plines[pi], slines[si], b); ok {
					break
				}

				si++
			}

			continue
		}

		nb, ok := mt.matchLine(plines[pi], slines[si], b)
		if !ok {
			return Outcome{PatternLine: pi, ActualLine: si}, nil
		}

		b = nb
		pi++
		si++
	}

	switch {
	case pi == len(plines) && si == len(slines):
		return matched(), nil
	case si == len(slines) && pi+1 == len(plines) && isWildcard(plines[pi]):
		return matched(), nil
	case pi < len(plines):
		return Outcome{PatternLine: pi, ActualLine: -1}, nil
	default:
		return Outcome{PatternLine: -1, ActualLine: si}, nil
	}
}

func matched() Outcome {
	return Outcome{Matched: true, PatternLine: -1, ActualLine: -1}
}

func checkWildcards(plines []string) error {
	for i := 1; i < len(plines); i++ {
		if isWildcard(plines[i]) && isWildcard(plines[i-1]) {
			return ErrConsecutiveWildcards
		}
	}

	return nil
}

func isWildcard(line string) bool {
	return line == Wildcard
}

func (mt *Matcher) trim(line string) string {
	if mt.opts.IgnoreLeadingWhitespace {
		return strings.TrimSpace(line)
	}

	return strings.TrimRightFunc(line, unicode.IsSpace)
}

func (mt *Matcher) patternLines(pattern []string) []string {
	out := make([]string, 0, len(pattern))
	for _, p := range pattern {
		line := mt.trim(p)
		if strings.TrimSpace(line) == Wildcard {
			line = Wildcard
		}

		out = append(out, line)
	}

	return dropBlankEdges(out)
}

func (mt *Matcher) textLines(text string) []string {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))

	for _, line := range raw {
		out = append(out, mt.trim(strings.TrimSuffix(line, "\r")))
	}

	return dropBlankEdges(out)
}

func dropBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return lines[start:end]
}

// matchLine matches one pattern line against one actual line. The returned
// bindings include any names the line bound; b itself is never modified.
func (mt *Matcher) matchLine(p, s string, b bindings) (bindings, bool) {
	body, anchorStart, anchorEnd := splitMarkers(p)

	if mt.names != nil {
		if segs := mt.names.segments(body); segs.hasNames() {
			return mt.names.match(segs, s, anchorStart, anchorEnd, b)
		}
	}

	switch {
	case !anchorStart && !anchorEnd:
		return b, strings.Contains(s, body)
	case !anchorStart:
		return b, strings.HasSuffix(s, body)
	case !anchorEnd:
		return b, strings.HasPrefix(s, body)
	default:
		return b, s == body
	}
}

// splitMarkers strips leading and trailing wildcards from p. A line such as
// "...." that starts and ends with the marker but is too short to hold both
// is treated as a suffix match.
func splitMarkers(p string) (body string, anchorStart, anchorEnd bool) {
	sww := strings.HasPrefix(p, Wildcard)
	eww := strings.HasSuffix(p, Wildcard)

	switch {
	case sww && eww && len(p) >= 2*len(Wildcard):
		return p[len(Wildcard) : len(p)-len(Wildcard)], false, false
	case sww:
		return p[len(Wildcard):], false, true
	case eww:
		return p[:len(p)-len(Wildcard)], true, false
	default:
		return p, true, true
	}
}
