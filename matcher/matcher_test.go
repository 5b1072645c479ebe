package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lips7/matcher-go/process"
	"github.com/lips7/matcher-go/simplematch"
)

func TestMatcherRoutesByMatchID(t *testing.T) {
	tableMap := MatchTableMap{
		"spam": {
			{
				TableType:   Simple,
				ProcessType: process.None,
				WordList:    map[simplematch.WordID]string{1: "viagra&free"},
			},
		},
		"abuse": {
			{
				TableType:   Simple,
				ProcessType: process.None,
				WordList:    map[simplematch.WordID]string{2: "idiot"},
			},
		},
	}

	m, err := New(tableMap)
	require.NoError(t, err)

	results, err := m.Process("you idiot")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "abuse", results[0].MatchID)

	ok, err := m.IsMatch("free viagra now")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.IsMatch("nothing interesting here")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMatcherWordListsUseDeclaredProcessTypeOnly(t *testing.T) {
	// Word lists are evaluated under exactly the process_type their table
	// declares; only exemption lists get the unconditional
	// FanjianDeleteNormalize fold. A table declaring None gets no free
	// normalization.
	none := MatchTableMap{
		"army-day": {
			{
				TableType:   Simple,
				ProcessType: process.None,
				WordList:    map[simplematch.WordID]string{9: "八一"},
			},
		},
	}
	m, err := New(none)
	require.NoError(t, err)

	ok, err := m.IsMatch("八○一社区")
	require.NoError(t, err)
	require.False(t, ok, "a None table must not fold the interposed circle away")

	declared := MatchTableMap{
		"army-day": {
			{
				TableType:   Simple,
				ProcessType: process.DeleteNormalize,
				WordList:    map[simplematch.WordID]string{9: "八一"},
			},
		},
	}
	m, err = New(declared)
	require.NoError(t, err)

	ok, err = m.IsMatch("八○一社区")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMatcherUnknownTableTypeSkipsWithoutExternalMatcher(t *testing.T) {
	tableMap := MatchTableMap{
		"needs-regex": {
			{
				TableType:   Regex,
				ProcessType: process.None,
				WordList:    map[simplematch.WordID]string{1: "anything"},
			},
		},
	}

	m, err := New(tableMap)
	require.NoError(t, err)

	ok, err := m.IsMatch("anything goes")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMatcherResultCacheReturnsConsistentResults(t *testing.T) {
	tableMap := MatchTableMap{
		"abuse": {
			{
				TableType:   Simple,
				ProcessType: process.None,
				WordList:    map[simplematch.WordID]string{2: "idiot"},
			},
		},
	}

	m, err := New(tableMap, WithResultCache(128))
	require.NoError(t, err)

	first, err := m.Process("you idiot")
	require.NoError(t, err)
	second, err := m.Process("you idiot")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMatcherExemptionWordListSuppressesTable(t *testing.T) {
	tableMap := MatchTableMap{
		"abuse": {
			{
				TableID:           1,
				TableType:         Simple,
				ProcessType:       process.None,
				WordList:          map[simplematch.WordID]string{2: "idiot"},
				ExemptionWordList: []string{"friendly idiot banter"},
			},
		},
	}

	m, err := New(tableMap)
	require.NoError(t, err)

	ok, err := m.IsMatch("you idiot")
	require.NoError(t, err)
	require.True(t, ok)

	// IsMatch deliberately does not consult exemption lists; only Process
	// filters an exempted match_id out of its results.
	ok, err = m.IsMatch("just some friendly idiot banter here")
	require.NoError(t, err)
	require.True(t, ok)

	results, err := m.Process("you idiot")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, uint32(1), results[0].Words[0].TableID)

	results, err = m.Process("just some friendly idiot banter here")
	require.NoError(t, err)
	require.Empty(t, results, "an exemption phrase present in the text should suppress the whole match_id from Process")
}

func TestMatcherExemptionAlwaysFoldsFanjianDeleteNormalize(t *testing.T) {
	// Even though the table declares process.None, its exemption list is
	// still matched under FanjianDeleteNormalize (the documented quirk), so
	// an exemption phrase still fires when the query text carries interposed
	// fullwidth punctuation that only TextDelete would strip.
	tableMap := MatchTableMap{
		"abuse": {
			{
				TableType:         Simple,
				ProcessType:       process.None,
				WordList:          map[simplematch.WordID]string{2: "坏人"},
				ExemptionWordList: []string{"坏人是好人"},
			},
		},
	}

	m, err := New(tableMap)
	require.NoError(t, err)

	results, err := m.Process("坏人")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// The exemption phrase appears only after FanjianDeleteNormalize strips
	// the fullwidth commas; the table's own None process_type would never
	// see it.
	results, err = m.Process("坏人，是，好人")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestMatcherExemptionAggregatesAcrossTablesSharingMatchID(t *testing.T) {
	// Two MatchTables share the "abuse" match_id; the exemption list lives
	// on the second table only. It still suppresses the first table's
	// word, since exemption is evaluated per match_id (every exemption_word_list
	// under a match_id pools into one check), not per individual table.
	tableMap := MatchTableMap{
		"abuse": {
			{
				TableID:     1,
				TableType:   Simple,
				ProcessType: process.None,
				WordList:    map[simplematch.WordID]string{1: "idiot"},
			},
			{
				TableID:           2,
				TableType:         Simple,
				ProcessType:       process.None,
				WordList:          map[simplematch.WordID]string{2: "moron"},
				ExemptionWordList: []string{"idiot savant"},
			},
		},
	}

	m, err := New(tableMap)
	require.NoError(t, err)

	results, err := m.Process("what an idiot savant")
	require.NoError(t, err)
	require.Empty(t, results, "exemption declared on one table suppresses the whole shared match_id")

	results, err = m.Process("what an idiot")
	require.NoError(t, err)
	require.Len(t, results, 1)
}
