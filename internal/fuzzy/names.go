package fuzzy

import (
	"regexp"
	"strings"
)

// NameMatcher enables named captures. Pattern finds names inside pattern
// lines (e.g. `\$.+?\b`); Text is what a name may stand for in the actual
// output (e.g. `.+?\b`). Within one match attempt a name must stand for the
// same text at every occurrence.
type NameMatcher struct {
	Pattern *regexp.Regexp
	Text    *regexp.Regexp
}

type bindings map[string]string

type segment struct {
	text string
	name bool
}

type segments []segment

func (s segments) hasNames() bool {
	for _, seg := range s {
		if seg.name {
			return true
		}
	}

	return false
}

type names struct {
	pattern *regexp.Regexp
	text    *regexp.Regexp
}

func newNames(nm NameMatcher) *names {
	return &names{
		pattern: nm.Pattern,
		text:    regexp.MustCompile(`^(?:` + nm.Text.String() + `)`),
	}
}

func (n *names) segments(body string) segments {
	locs := n.pattern.FindAllStringIndex(body, -1)
	segs := make(segments, 0, 2*len(locs)+1)
	last := 0

	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}

		if loc[0] > last {
			segs = append(segs, segment{text: body[last:loc[0]]})
		}

		segs = append(segs, segment{text: body[loc[0]:loc[1]], name: true})
		last = loc[1]
	}

	if last < len(body) || len(segs) == 0 {
		segs = append(segs, segment{text: body[last:]})
	}

	return segs
}

func (n *names) match(segs segments, s string, anchorStart, anchorEnd bool, b bindings) (bindings, bool) {
	if anchorStart {
		return n.matchFrom(segs, s, 0, anchorEnd, b)
	}

	for pos := 0; pos <= len(s); pos++ {
		if nb, ok := n.matchFrom(segs, s, pos, anchorEnd, b); ok {
			return nb, true
		}
	}

	return b, false
}

func (n *names) matchFrom(segs segments, s string, pos int, anchorEnd bool, b bindings) (bindings, bool) {
	if len(segs) == 0 {
		if anchorEnd && pos != len(s) {
			return b, false
		}

		return b, true
	}

	seg, rest := segs[0], segs[1:]

	if !seg.name {
		if !strings.HasPrefix(s[pos:], seg.text) {
			return b, false
		}

		return n.matchFrom(rest, s, pos+len(seg.text), anchorEnd, b)
	}

	if bound, ok := b[seg.text]; ok {
		if !strings.HasPrefix(s[pos:], bound) {
			return b, false
		}

		return n.matchFrom(rest, s, pos+len(bound), anchorEnd, b)
	}

	loc := n.text.FindStringIndex(s[pos:])
	if loc == nil || loc[1] == 0 {
		return b, false
	}

	nb := make(bindings, len(b)+1)
	for k, v := range b {
		nb[k] = v
	}

	nb[seg.text] = s[pos : pos+loc[1]]

	return n.matchFrom(rest, s, pos+loc[1], anchorEnd, nb)
}
