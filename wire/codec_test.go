package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lips7/matcher-go/matcher"
	"github.com/lips7/matcher-go/process"
	"github.com/lips7/matcher-go/simplematch"
)

func TestMatchTableMapRoundTrips(t *testing.T) {
	original := matcher.MatchTableMap{
		"spam": {
			{
				TableID:           7,
				TableType:         matcher.Simple,
				ProcessType:       process.FanjianDeleteNormalize | process.PinYin,
				WordList:          map[simplematch.WordID]string{4: "你好", 9: "八一"},
				ExemptionWordList: []string{"你好世界"},
			},
		},
	}

	data, err := EncodeMatchTableMap(original)
	require.NoError(t, err)

	decoded, err := DecodeMatchTableMap(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestSimpleTableRoundTrips(t *testing.T) {
	original := simplematch.SimpleTable{
		process.None:            {1: "foo&bar"},
		process.DeleteNormalize: {9: "八一"},
	}

	data, err := EncodeSimpleTable(original)
	require.NoError(t, err)

	decoded, err := DecodeSimpleTable(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestRoundTrippedTableBuildsEquivalentMatcher(t *testing.T) {
	// Serializing a SimpleTable and re-loading it must produce a matcher
	// that agrees with one built from the original on every query.
	original := simplematch.SimpleTable{
		process.FanjianDeleteNormalize | process.PinYin: {4: "你好"},
		process.None: {1: "foo&bar~baz", 7: "退保~不"},
	}

	data, err := EncodeSimpleTable(original)
	require.NoError(t, err)
	decoded, err := DecodeSimpleTable(data)
	require.NoError(t, err)

	m1, err := simplematch.New(original, nil)
	require.NoError(t, err)
	m2, err := simplematch.New(decoded, nil)
	require.NoError(t, err)

	for _, text := range []string{"你好", "ni hao", "foo bar", "foo bar baz", "退保", "不退保", ""} {
		r1, err := m1.Process(text)
		require.NoError(t, err)
		r2, err := m2.Process(text)
		require.NoError(t, err)
		require.Equalf(t, r1, r2, "round-tripped matcher disagrees on %q", text)
	}
}

func TestMatchTableTypeTravelsAsSnakeCaseToken(t *testing.T) {
	// Every MatchTableType value is carried on the wire as its snake_case
	// string token, and every one of the five round-trips distinguishably.
	types := []matcher.MatchTableType{
		matcher.Simple,
		matcher.SimilarChar,
		matcher.Acrostic,
		matcher.SimilarTextLevenshtein,
		matcher.Regex,
	}

	original := matcher.MatchTableMap{"mixed": nil}
	for i, tt := range types {
		original["mixed"] = append(original["mixed"], matcher.MatchTable{
			TableID:     uint32(i),
			TableType:   tt,
			ProcessType: process.None,
			WordList:    map[simplematch.WordID]string{1: "word"},
		})
	}

	data, err := EncodeMatchTableMap(original)
	require.NoError(t, err)
	for _, token := range []string{"simple", "similar_char", "acrostic", "similar_text_levenshtein", "regex"} {
		require.Truef(t, bytes.Contains(data, []byte(token)), "encoded blob should carry the %q token", token)
	}

	decoded, err := DecodeMatchTableMap(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecodeRejectsUnknownMatchTableType(t *testing.T) {
	blob, err := msgpack.Marshal(map[string][]wireMatchTable{
		"g": {{TableID: 1, TableType: "bogus"}},
	})
	require.NoError(t, err)

	_, err = DecodeMatchTableMap(blob)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDeserialize))
}

func TestDecodeMalformedBlobReturnsErrDeserialize(t *testing.T) {
	_, err := DecodeMatchTableMap([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDeserialize))

	_, err = DecodeSimpleTable([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDeserialize))
}
