package matcher

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lips7/matcher-go/process"
	"github.com/lips7/matcher-go/simplematch"
)

// exemptionMask is the ProcessType every exemption_word_list is evaluated
// under, regardless of what its table's own process_type declares. This
// mirrors a quirk carried over from the project this module's matching
// semantics are modeled on: exemption words always get the full
// Fanjian/Delete/Normalize treatment, even on a table that asked for none of
// it. It is preserved here rather than "fixed" because exemption lists
// compiled expecting it would silently stop folding traditional characters
// and interposed punctuation if it were removed. Word lists are NOT folded:
// they are evaluated under exactly the process_type their table declares.
const exemptionMask = process.FanjianDeleteNormalize

// Matcher is the top-level entry point: build one from a MatchTableMap and
// query it with text, getting back every MatchID it triggered.
type Matcher struct {
	reg       *process.Registry
	pipeline  *process.Pipeline
	masks     []process.Type // union of every ProcessType any engine below needs, for one shared PrepareText per query
	tables    map[string][]compiledTable
	simple    map[string]*simplematch.Matcher // match_id -> one unified Simple matcher over every Simple table sharing it
	simpleRef map[string]map[simplematch.WordID]tableWord
	exemption map[string]*simplematch.Matcher // match_id -> aggregate exemption matcher, if any table under it declared one
	external  map[MatchTableType]ExternalMatcher
	resultLRU *lru.Cache[string, []MatchResult]
}

type compiledTable struct {
	tableID     uint32
	tableType   MatchTableType
	processType process.Type
	wordList    map[simplematch.WordID]string
}

// tableWord recovers which original table, and which of its own WordIDs, a
// synthetic WordID in a match_id's unified simplematch.Matcher came from.
type tableWord struct {
	tableID uint32
	wordID  simplematch.WordID
}

// synthWordID packs a table id and that table's own WordID into one id, so
// merging the word lists of every Simple table sharing a match_id into a
// single simplematch.SimpleTable keeps different tables' WordID spaces
// apart. Only the low 32 bits of wordID are kept, so ids are unique as long
// as the tables' TableIDs differ and every WordID fits in 32 bits.
func synthWordID(tableID uint32, wordID simplematch.WordID) simplematch.WordID {
	return simplematch.WordID(uint64(tableID)<<32 | uint64(uint32(wordID)))
}

// Option configures a Matcher at construction time.
type Option func(*Matcher)

// WithRegistry uses reg instead of process.DefaultRegistry for every
// table's normalization work.
func WithRegistry(reg *process.Registry) Option {
	return func(m *Matcher) { m.reg = reg }
}

// WithExternalMatcher registers an ExternalMatcher to handle MatchTables of
// the given type, which otherwise are silently skipped.
func WithExternalMatcher(t MatchTableType, ext ExternalMatcher) Option {
	return func(m *Matcher) {
		if m.external == nil {
			m.external = make(map[MatchTableType]ExternalMatcher)
		}
		m.external[t] = ext
	}
}

// WithResultCache enables a bounded LRU cache of size entries mapping raw
// input text to its full MatchResult set, for callers that expect to see
// the same strings repeatedly (e.g. a stream of near-duplicate messages).
// Disabled by default: most deployments see largely unique text, where a
// cache only adds memory pressure for no hit rate.
func WithResultCache(size int) Option {
	return func(m *Matcher) {
		c, err := lru.New[string, []MatchResult](size)
		if err == nil {
			m.resultLRU = c
		}
	}
}

// New compiles a MatchTableMap into a ready-to-query Matcher.
func New(tableMap MatchTableMap, opts ...Option) (*Matcher, error) {
	m := &Matcher{tables: make(map[string][]compiledTable)}
	for _, opt := range opts {
		opt(m)
	}
	if m.reg == nil {
		m.reg = process.DefaultRegistry()
	}

	matchIDs := make([]string, 0, len(tableMap))
	for id := range tableMap {
		matchIDs = append(matchIDs, id)
	}
	sort.Strings(matchIDs)

	for _, matchID := range matchIDs {
		var exemptionWords map[simplematch.WordID]string

		// Every Simple table sharing this match_id is merged into one
		// SimpleTable here, keyed by synthetic WordIDs, so the whole
		// match_id compiles to a single unified simplematch.Matcher, one
		// automaton over the deduplicated pattern set, instead of one
		// automaton per table.
		unified := make(simplematch.SimpleTable)
		owner := make(map[simplematch.WordID]tableWord)

		for _, t := range tableMap[matchID] {
			ct := compiledTable{
				tableID:     t.TableID,
				tableType:   t.TableType,
				processType: t.ProcessType,
				wordList:    t.WordList,
			}

			if t.TableType == Simple {
				bucket := unified[ct.processType]
				if bucket == nil {
					bucket = make(map[simplematch.WordID]string)
					unified[ct.processType] = bucket
				}
				for wid, expr := range t.WordList {
					sid := synthWordID(t.TableID, wid)
					bucket[sid] = expr
					owner[sid] = tableWord{tableID: t.TableID, wordID: wid}
				}
			}

			// Every table sharing this match_id contributes its
			// exemption_word_list to one aggregate exemption matcher for
			// the whole match_id, always keyed by exemptionMask regardless
			// of the table's own declared process_type. Any of them firing
			// suppresses the whole match_id, not just the table that
			// declared them.
			for _, w := range t.ExemptionWordList {
				if exemptionWords == nil {
					exemptionWords = make(map[simplematch.WordID]string)
				}
				exemptionWords[simplematch.WordID(len(exemptionWords))] = w
			}

			m.tables[matchID] = append(m.tables[matchID], ct)
		}

		if len(unified) > 0 {
			sm, err := simplematch.New(unified, m.reg)
			if err != nil {
				return nil, fmt.Errorf("matcher: compiling match_id %q: %w", matchID, err)
			}
			if m.simple == nil {
				m.simple = make(map[string]*simplematch.Matcher)
				m.simpleRef = make(map[string]map[simplematch.WordID]tableWord)
			}
			m.simple[matchID] = sm
			m.simpleRef[matchID] = owner
		}

		if len(exemptionWords) > 0 {
			em, err := simplematch.New(simplematch.SimpleTable{exemptionMask: exemptionWords}, m.reg)
			if err != nil {
				return nil, fmt.Errorf("matcher: compiling exemption list for match_id %q: %w", matchID, err)
			}
			if m.exemption == nil {
				m.exemption = make(map[string]*simplematch.Matcher)
			}
			m.exemption[matchID] = em
		}
	}

	// One normalization pass serves every engine below: collect the union of
	// every ProcessType any Simple or exemption matcher registered, so each
	// query can call PrepareText once and hand the shared variant list to all
	// of them.
	m.pipeline = process.NewPipeline(m.reg)
	maskSet := make(map[process.Type]bool)
	for _, sm := range m.simple {
		for _, pt := range sm.Masks() {
			maskSet[pt] = true
		}
	}
	if len(m.exemption) > 0 {
		maskSet[exemptionMask] = true
	}
	for pt := range maskSet {
		m.masks = append(m.masks, pt)
	}
	sort.Slice(m.masks, func(i, j int) bool { return m.masks[i] < m.masks[j] })

	return m, nil
}

// Process evaluates text against every configured MatchTable and returns
// one MatchResult per MatchID that had at least one matching word.
func (m *Matcher) Process(text string) ([]MatchResult, error) {
	if m.resultLRU != nil {
		if cached, ok := m.resultLRU.Get(text); ok {
			return cached, nil
		}
	}

	// The variant list is computed once per query and shared by every
	// match_id's Simple and exemption matcher below; each matcher only
	// counts hits whose ProcessType its own table registered.
	processed, err := simplematch.PrepareText(m.pipeline, m.masks, text)
	if err != nil {
		return nil, fmt.Errorf("matcher: processing text: %w", err)
	}

	matchIDs := make([]string, 0, len(m.tables))
	for id := range m.tables {
		matchIDs = append(matchIDs, id)
	}
	sort.Strings(matchIDs)

	var out []MatchResult
	for _, matchID := range matchIDs {
		if em := m.exemption[matchID]; em != nil {
			if em.IsMatchWithProcessed(processed) {
				// The whole match_id is suppressed, not just the table
				// that declared the exemption words.
				continue
			}
		}

		var words []MatchWord
		if sm := m.simple[matchID]; sm != nil {
			res := sm.ProcessWithProcessed(processed)
			owner := m.simpleRef[matchID]
			for _, r := range res {
				tw := owner[r.ID]
				words = append(words, MatchWord{
					TableID:      tw.tableID,
					SimpleResult: simplematch.SimpleResult{ID: tw.wordID, Word: r.Word},
				})
			}
		}
		for _, ct := range m.tables[matchID] {
			if ct.tableType == Simple {
				continue
			}
			if ext := m.external[ct.tableType]; ext != nil {
				res, err := ext.Process(ct.processType, ct.wordList, text)
				if err != nil {
					return nil, fmt.Errorf("matcher: evaluating match_id %q: %w", matchID, err)
				}
				for _, r := range res {
					words = append(words, MatchWord{TableID: ct.tableID, SimpleResult: r})
				}
			}
		}
		if len(words) > 0 {
			out = append(out, MatchResult{MatchID: matchID, Words: words})
		}
	}

	if m.resultLRU != nil {
		m.resultLRU.Add(text, out)
	}
	return out, nil
}

// IsMatch reports whether any configured MatchTable matches text, without
// collecting which words did. It returns at the first matcher that reports
// a hit; each Simple matcher it asks still runs its full evaluation (the
// engine has no cheaper early-exit query), but result assembly is skipped.
//
// Deliberately does not consult exemption lists at all; only Process
// filters an exempted match_id out of its results. A text containing both
// a banned word and its exemption phrase therefore reports IsMatch == true
// while being absent from Process's results. Callers that need the two to
// agree should treat Process's emptiness as the authoritative answer.
func (m *Matcher) IsMatch(text string) (bool, error) {
	processed, err := simplematch.PrepareText(m.pipeline, m.masks, text)
	if err != nil {
		return false, fmt.Errorf("matcher: processing text: %w", err)
	}
	for _, sm := range m.simple {
		if sm.IsMatchWithProcessed(processed) {
			return true, nil
		}
	}
	for _, tables := range m.tables {
		for _, ct := range tables {
			if ct.tableType == Simple {
				continue
			}
			if ext := m.external[ct.tableType]; ext != nil {
				ok, err := ext.IsMatch(ct.processType, ct.wordList, text)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
		}
	}
	return false, nil
}
