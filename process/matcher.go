package process

import "strings"

// Matcher pairs a compiled Automaton over one single-bit ProcessType's
// pattern set with a parallel replacement vector. It is immutable once
// built and safe for concurrent use.
type Matcher struct {
	bit         Type
	automaton   *Automaton
	replacement []string
}

// newMatcher builds a Matcher for a single ProcessType bit from a
// pattern/replacement map. Entries where pattern == replacement are
// expected to already have been filtered by the caller.
func newMatcher(bit Type, dict map[string]string) *Matcher {
	patterns := make([]string, 0, len(dict))
	replacement := make([]string, 0, len(dict))
	for p, r := range dict {
		patterns = append(patterns, p)
		replacement = append(replacement, r)
	}

	kind := LeftmostLongest
	if bit.IsChinese() {
		kind = Standard
	}

	return &Matcher{
		bit:         bit,
		automaton:   Build(patterns, kind, false),
		replacement: replacement,
	}
}

// ReplaceAll scans text for non-overlapping matches of the matcher's
// configured kind and replaces each with its corresponding entry in the
// replacement vector. It returns whether anything changed and the result;
// on the no-match path it returns text unchanged with no allocation beyond
// the match scan itself.
func (m *Matcher) ReplaceAll(text string) (bool, string) {
	matches := m.automaton.NonOverlapping(text)
	if len(matches) == 0 {
		return false, text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, mt := range matches {
		b.WriteString(text[last:mt.Start])
		b.WriteString(m.replacement[mt.Pattern])
		last = mt.End
	}
	b.WriteString(text[last:])
	return true, b.String()
}

// DeleteAll is ReplaceAll with every replacement forced to empty, which is
// all WordDelete and TextDelete need.
func (m *Matcher) DeleteAll(text string) (bool, string) {
	matches := m.automaton.NonOverlapping(text)
	if len(matches) == 0 {
		return false, text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, mt := range matches {
		b.WriteString(text[last:mt.Start])
		last = mt.End
	}
	b.WriteString(text[last:])
	return true, b.String()
}
