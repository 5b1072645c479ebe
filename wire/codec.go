// Package wire serializes matcher configuration (table definitions, not
// compiled automata) to and from MessagePack, so a table built in one
// process can be shipped to and loaded by another without re-deriving it
// from source text.
package wire

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lips7/matcher-go/matcher"
	"github.com/lips7/matcher-go/process"
	"github.com/lips7/matcher-go/simplematch"
)

// ErrDeserialize is wrapped around any failure to decode a MessagePack blob
// into the shape DecodeMatchTableMap/DecodeSimpleTable expect. Callers can
// test for it with errors.Is.
var ErrDeserialize = errors.New("wire: malformed serialized configuration")

// wireMatchTable is MatchTable's on-the-wire shape. process.Type and
// simplematch.WordID are plain integer kinds already, so msgpack encodes
// them natively; match_table_type travels as its snake_case token
// ("simple", "similar_char", "acrostic", "similar_text_levenshtein",
// "regex"), not as the Go enum's integer value.
type wireMatchTable struct {
	TableID           uint32            `msgpack:"table_id"`
	TableType         string            `msgpack:"match_table_type"`
	ProcessType       uint32            `msgpack:"process_type"`
	WordList          map[uint64]string `msgpack:"word_list"`
	ExemptionWordList []string          `msgpack:"exemption_word_list"`
}

func toWire(t matcher.MatchTable) wireMatchTable {
	wl := make(map[uint64]string, len(t.WordList))
	for id, w := range t.WordList {
		wl[uint64(id)] = w
	}
	return wireMatchTable{
		TableID:           t.TableID,
		TableType:         t.TableType.String(),
		ProcessType:       uint32(t.ProcessType),
		WordList:          wl,
		ExemptionWordList: t.ExemptionWordList,
	}
}

func fromWire(w wireMatchTable) (matcher.MatchTable, error) {
	tableType, err := matcher.ParseMatchTableType(w.TableType)
	if err != nil {
		return matcher.MatchTable{}, err
	}
	wl := make(map[simplematch.WordID]string, len(w.WordList))
	for id, word := range w.WordList {
		wl[simplematch.WordID(id)] = word
	}
	return matcher.MatchTable{
		TableID:           w.TableID,
		TableType:         tableType,
		ProcessType:       process.Type(w.ProcessType),
		WordList:          wl,
		ExemptionWordList: w.ExemptionWordList,
	}, nil
}

// EncodeMatchTableMap serializes a full table map to MessagePack.
func EncodeMatchTableMap(m matcher.MatchTableMap) ([]byte, error) {
	wireMap := make(map[string][]wireMatchTable, len(m))
	for id, tables := range m {
		wt := make([]wireMatchTable, len(tables))
		for i, t := range tables {
			wt[i] = toWire(t)
		}
		wireMap[id] = wt
	}
	return msgpack.Marshal(wireMap)
}

// DecodeMatchTableMap deserializes a MessagePack-encoded table map produced
// by EncodeMatchTableMap.
func DecodeMatchTableMap(data []byte) (matcher.MatchTableMap, error) {
	var wireMap map[string][]wireMatchTable
	if err := msgpack.Unmarshal(data, &wireMap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	out := make(matcher.MatchTableMap, len(wireMap))
	for id, wt := range wireMap {
		tables := make([]matcher.MatchTable, len(wt))
		for i, w := range wt {
			t, err := fromWire(w)
			if err != nil {
				return nil, fmt.Errorf("%w: match_id %q: %v", ErrDeserialize, id, err)
			}
			tables[i] = t
		}
		out[id] = tables
	}
	return out, nil
}

// EncodeSimpleTable serializes a bare SimpleTable (no MatchID/MatchTableType
// wrapping) to MessagePack, for callers using package simplematch directly.
func EncodeSimpleTable(t simplematch.SimpleTable) ([]byte, error) {
	wireMap := make(map[uint32]map[uint64]string, len(t))
	for pt, words := range t {
		wl := make(map[uint64]string, len(words))
		for id, w := range words {
			wl[uint64(id)] = w
		}
		wireMap[uint32(pt)] = wl
	}
	return msgpack.Marshal(wireMap)
}

// DecodeSimpleTable deserializes a MessagePack-encoded SimpleTable produced
// by EncodeSimpleTable.
func DecodeSimpleTable(data []byte) (simplematch.SimpleTable, error) {
	var wireMap map[uint32]map[uint64]string
	if err := msgpack.Unmarshal(data, &wireMap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	out := make(simplematch.SimpleTable, len(wireMap))
	for pt, words := range wireMap {
		wl := make(map[simplematch.WordID]string, len(words))
		for id, w := range words {
			wl[simplematch.WordID(id)] = w
		}
		out[process.Type(pt)] = wl
	}
	return out, nil
}
