package simplematch

import (
	"fmt"
	"sort"

	"github.com/lips7/matcher-go/process"
)

// SimpleResult is one word that matched, reported with both its ID and its
// original expression text so callers don't need a separate table lookup.
type SimpleResult struct {
	ID   WordID
	Word string
}

// Matcher evaluates a compiled SimpleTable against input text. It owns one
// unified Aho-Corasick automaton over every distinct normalized sub-word of
// every (ProcessType, compound-word) pair in its table, so a sub-word shared
// by several words, or by the same word under several ProcessTypes, is
// registered, and scanned, exactly once per query. It is
// immutable once built (New does all the compilation work) and safe for
// concurrent use by any number of callers, mirroring the immutability
// guarantee package process gives its Matcher.
type Matcher struct {
	pipeline    *process.Pipeline
	automaton   *process.Automaton
	patternRefs [][]operandRef
	words       map[WordID]*wordInfo
	masks       []process.Type // every distinct ProcessType registered, for EmitShared at query time
}

// New compiles table into a ready-to-query Matcher. reg may be nil to use
// process.DefaultRegistry.
func New(table SimpleTable, reg *process.Registry) (*Matcher, error) {
	pipeline := process.NewPipeline(reg)

	words := make(map[WordID]*wordInfo)
	patterns := make([]string, 0)
	patternRefs := make([][]operandRef, 0)
	seen := make(map[string]int) // pattern text -> index into patterns/patternRefs

	// Stable iteration order over the table keeps compiled pattern ids
	// (and therefore any debugging output) deterministic across runs.
	processTypes := make([]process.Type, 0, len(table))
	for pt := range table {
		processTypes = append(processTypes, pt)
	}
	sort.Slice(processTypes, func(i, j int) bool { return processTypes[i] < processTypes[j] })

	for _, pt := range processTypes {
		wordMap := table[pt]
		ids := make([]WordID, 0, len(wordMap))
		for id := range wordMap {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			expr := wordMap[id]
			operands := compileWord(expr)

			info, ok := words[id]
			if !ok {
				info = &wordInfo{expr: expr, andThresholds: make(map[int]int)}
				words[id] = info
			}

			for opIdx, op := range operands {
				if op.kind == operandAnd {
					info.andThresholds[opIdx] = op.threshold
				}

				// Operand normalization uses the layered Emit form, not
				// the shared/trie one: a compound word's operands are
				// independent short strings, not a query text whose
				// normalization needs to be shared across many
				// ProcessTypes in one pass.
				variants, err := pipeline.Emit(pt, op.text)
				if err != nil {
					return nil, fmt.Errorf("simplematch: compiling word %d operand %q: %w", id, op.text, err)
				}

				ref := operandRef{processType: pt, word: id, opIdx: opIdx, kind: op.kind, threshold: op.threshold}
				for _, v := range variants {
					if v == "" {
						continue
					}
					if idx, ok := seen[v]; ok {
						patternRefs[idx] = append(patternRefs[idx], ref)
						continue
					}
					seen[v] = len(patterns)
					patterns = append(patterns, v)
					patternRefs = append(patternRefs, []operandRef{ref})
				}
			}
		}
	}

	m := &Matcher{pipeline: pipeline, words: words, patternRefs: patternRefs, masks: processTypes}
	if len(patterns) > 0 {
		m.automaton = process.Build(patterns, process.Standard, true)
	}
	return m, nil
}

// ProcessedText is one normalized variant of a query text together with the
// set of ProcessTypes under which the pipeline produced it. A list of these
// is the pre-computed form the lower-level query methods accept, so an outer
// matcher can run the normalization pass once and share it across several
// engines scanning the same text.
type ProcessedText struct {
	Text  string
	Types []process.Type
}

// PrepareText runs the shared pipeline form over text for the given set of
// masks and returns the variant list the lower-level query methods consume.
// pipe may be nil to use a pipeline over process.DefaultRegistry.
func PrepareText(pipe *process.Pipeline, masks []process.Type, text string) ([]ProcessedText, error) {
	if pipe == nil {
		pipe = process.NewPipeline(nil)
	}
	perMask, variants, err := pipe.EmitShared(masks, text)
	if err != nil {
		return nil, fmt.Errorf("simplematch: processing text: %w", err)
	}

	out := make([]ProcessedText, len(variants))
	for i, v := range variants {
		out[i] = ProcessedText{Text: v}
	}
	for pt, idxs := range perMask {
		for _, idx := range idxs {
			out[idx].Types = append(out[idx].Types, pt)
		}
	}
	return out, nil
}

// PrepareText pre-computes the normalized variant list for text under every
// ProcessType this matcher's table registers. The result can be passed to
// IsMatchWithProcessed/ProcessWithProcessed, or extended by an outer layer
// that wants to reuse the variants for other engines too.
func (m *Matcher) PrepareText(text string) ([]ProcessedText, error) {
	return PrepareText(m.pipeline, m.masks, text)
}

// Masks returns every distinct ProcessType the matcher's table registered,
// in ascending order. Outer layers use this to prepare one variant list
// covering several matchers at once.
func (m *Matcher) Masks() []process.Type {
	out := make([]process.Type, len(m.masks))
	copy(out, m.masks)
	return out
}

// evaluate is the query kernel, running over pre-computed variants: a
// single Overlapping scan per variant against the one unified automaton,
// returning the set of word ids whose AND operands are all satisfied and
// whose NOT operands never fired.
//
// Each operand's occurrence count is a per-variant column, and an
// AND-operand row is satisfied if *any single variant* reaches its
// threshold; occurrences of the same operand spread across two different
// variants do not sum. best[word][opIdx] tracks, per operand, the highest
// single-variant occurrence count seen so far across every variant scanned.
func (m *Matcher) evaluate(processed []ProcessedText) map[WordID]bool {
	if m.automaton == nil {
		return nil
	}

	best := make(map[WordID]map[int]int)
	notTriggered := make(map[WordID]bool)

	for _, pv := range processed {
		if len(pv.Types) == 0 {
			continue
		}
		// applicableSet is the set of ProcessTypes under which the pipeline
		// produced this variant; a hit only counts for operands registered
		// under one of them.
		applicableSet := make(map[process.Type]bool, len(pv.Types))
		for _, pt := range pv.Types {
			applicableSet[pt] = true
		}
		v := pv.Text

		local := make(map[WordID]map[int]int) // this variant's own occurrence counts

		for _, mt := range m.automaton.Overlapping(v) {
			for _, ref := range m.patternRefs[mt.Pattern] {
				if !applicableSet[ref.processType] {
					continue
				}
				if notTriggered[ref.word] {
					continue
				}
				if local[ref.word] == nil {
					local[ref.word] = make(map[int]int)
				}
				local[ref.word][ref.opIdx]++

				if ref.kind == operandNot && local[ref.word][ref.opIdx] >= ref.threshold {
					// NOT short-circuit: once a NOT operand crosses its
					// threshold within some single variant, the word is
					// permanently disqualified, regardless of what its
					// AND operands have satisfied elsewhere.
					notTriggered[ref.word] = true
					delete(local, ref.word)
					delete(best, ref.word)
				}
			}
		}

		for word, ops := range local {
			dst, ok := best[word]
			if !ok {
				dst = make(map[int]int)
				best[word] = dst
			}
			for opIdx, c := range ops {
				if c > dst[opIdx] {
					dst[opIdx] = c
				}
			}
		}
	}

	matched := make(map[WordID]bool)
	for id, info := range m.words {
		if notTriggered[id] {
			continue
		}
		if len(info.andThresholds) == 0 {
			continue
		}
		satisfied := true
		for opIdx, threshold := range info.andThresholds {
			if best[id][opIdx] < threshold {
				satisfied = false
				break
			}
		}
		if satisfied {
			matched[id] = true
		}
	}
	return matched
}

// IsMatch reports whether any word in the table is satisfied by text.
func (m *Matcher) IsMatch(text string) (bool, error) {
	processed, err := m.PrepareText(text)
	if err != nil {
		return false, err
	}
	return m.IsMatchWithProcessed(processed), nil
}

// Process returns every word satisfied by text.
func (m *Matcher) Process(text string) ([]SimpleResult, error) {
	processed, err := m.PrepareText(text)
	if err != nil {
		return nil, err
	}
	return m.ProcessWithProcessed(processed), nil
}

// IsMatchWithProcessed is IsMatch over an already-computed variant list. The
// list may cover more ProcessTypes than this matcher's table registers (an
// outer layer preparing once for several engines); the extra variants simply
// never contribute, since a hit only counts for operands whose ProcessType is
// in the variant's own applicable set.
func (m *Matcher) IsMatchWithProcessed(processed []ProcessedText) bool {
	return len(m.evaluate(processed)) > 0
}

// ProcessWithProcessed is Process over an already-computed variant list, with
// the same superset tolerance as IsMatchWithProcessed.
func (m *Matcher) ProcessWithProcessed(processed []ProcessedText) []SimpleResult {
	matched := m.evaluate(processed)
	out := make([]SimpleResult, 0, len(matched))
	for id := range matched {
		out = append(out, SimpleResult{ID: id, Word: m.words[id].expr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
