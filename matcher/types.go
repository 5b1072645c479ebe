// Package matcher is the outermost layer: it routes a table's many
// (MatchTableType, ProcessType, word set) entries to the appropriate engine
// package and aggregates results into one report per piece of text.
package matcher

import (
	"fmt"

	"github.com/lips7/matcher-go/process"
	"github.com/lips7/matcher-go/simplematch"
)

// MatchTableType selects which engine evaluates a MatchTable's word_list.
// Only Simple ships an engine; the other four are declared so every wire
// value round-trips losslessly, and are served by whatever ExternalMatcher
// the caller registers.
type MatchTableType int

const (
	Simple MatchTableType = iota
	SimilarChar
	Acrostic
	SimilarTextLevenshtein
	Regex
)

// matchTableTypeNames holds the snake_case tokens MatchTableType values
// carry on the wire.
var matchTableTypeNames = map[MatchTableType]string{
	Simple:                 "simple",
	SimilarChar:            "similar_char",
	Acrostic:               "acrostic",
	SimilarTextLevenshtein: "similar_text_levenshtein",
	Regex:                  "regex",
}

func (t MatchTableType) String() string {
	if name, ok := matchTableTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseMatchTableType maps a wire token back to its MatchTableType.
func ParseMatchTableType(s string) (MatchTableType, error) {
	for t, name := range matchTableTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("matcher: unknown match_table_type %q", s)
}

// MarshalText encodes t as its wire token, so any text-based codec carries
// the same values the binary wire format does.
func (t MatchTableType) MarshalText() ([]byte, error) {
	name, ok := matchTableTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("matcher: unknown MatchTableType %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText is the inverse of MarshalText.
func (t *MatchTableType) UnmarshalText(b []byte) error {
	parsed, err := ParseMatchTableType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MatchTable is one named rule set: a MatchTableType plus the ProcessType
// mask its words should be evaluated under, plus the word_list itself.
// A match_id groups several MatchTables under a shared identifier, letting
// one conceptual category span more than one ProcessType (e.g. both a
// plain word list and a Fanjian-folded one).
type MatchTable struct {
	TableID           uint32
	TableType         MatchTableType
	ProcessType       process.Type
	WordList          map[simplematch.WordID]string
	ExemptionWordList []string
}

// MatchTableMap is the full wire-level configuration: MatchID -> the
// MatchTables that belong to it.
type MatchTableMap map[string][]MatchTable

// MatchWord is one satisfied word, reported with the TableID of the
// MatchTable it came from alongside its WordID/Word, so a result carries
// the full (match_id, table_id, word_id, word) provenance.
type MatchWord struct {
	TableID uint32
	simplematch.SimpleResult
}

// MatchResult reports every MatchID that matched a piece of text, together
// with the specific words (by MatchTable) responsible.
type MatchResult struct {
	MatchID string
	Words   []MatchWord
}

// ExternalMatcher is the extension point every non-Simple MatchTableType
// plugs into. No implementation ships with this module; a Matcher simply
// skips MatchTables whose TableType isn't Simple unless an ExternalMatcher
// for that type has been registered via WithExternalMatcher.
type ExternalMatcher interface {
	IsMatch(processType process.Type, wordList map[simplematch.WordID]string, text string) (bool, error)
	Process(processType process.Type, wordList map[simplematch.WordID]string, text string) ([]simplematch.SimpleResult, error)
}
