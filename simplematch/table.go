package simplematch

import "github.com/lips7/matcher-go/process"

// WordID identifies one compiled word expression within a table. IDs are
// caller-assigned and need not be contiguous.
type WordID uint64

// SimpleTable is the compiled matcher's configuration: for each
// normalization ProcessType a table's author wants applied, the set of
// AND/NOT word expressions that should be evaluated against text processed
// under that ProcessType.
type SimpleTable map[process.Type]map[WordID]string

// operandRef locates one compiled wordOperand: which ProcessType it was
// registered under, which word and which operand slot within that word it
// belongs to, and whether it is an AND or NOT contributor. opIdx is stable
// per word (assigned by compileWord's output order) so counts for the same
// logical operand accumulate correctly across every emit-variant pattern
// that operand expanded into. processType is carried per-ref (not per
// automaton) because one deduplicated sub-word can be shared by several
// (ProcessType, word, operand) triples, and a hit against it only counts
// for a ref whose ProcessType the current haystack variant was actually
// produced under.
type operandRef struct {
	processType process.Type
	word        WordID
	opIdx       int
	kind        operandKind
	threshold   int
}

// wordInfo tracks, per word, the threshold each of its AND operands
// requires (keyed by operand index) and its original expression text (for
// SimpleResult reporting). A word matches only once every entry in
// andThresholds has been met by its operand's occurrence count.
type wordInfo struct {
	expr          string
	andThresholds map[int]int
}
