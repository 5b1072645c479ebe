// Package simplematch implements the AND/NOT word compiler and the
// Aho-Corasick-backed matching engine built on top of package process.
package simplematch

import "strings"

// operandKind distinguishes an AND sub-word, which must occur at least
// threshold times for its word to be eligible, from a NOT sub-word, which
// disqualifies its word outright once it occurs threshold times.
type operandKind int

const (
	operandAnd operandKind = iota
	operandNot
)

// wordOperand is one parsed `&`/`~`-delimited piece of a word expression,
// after coalescing duplicate occurrences of the same text into a single
// entry with a repeat threshold.
type wordOperand struct {
	text      string
	kind      operandKind
	threshold int // number of occurrences of text required to satisfy/trigger this operand
}

// operandKey identifies one logical operand of a word expression. The same
// text can occur both as an AND operand and as a NOT operand ("a&b~a"), and
// the two accumulate thresholds independently, so kind is part of the key.
type operandKey struct {
	text string
	kind operandKind
}

// compileWord parses a word expression of the form
//
//	a&a&b~c~c~c
//
// into AND operands (joined by "&") and NOT operands (any operand prefixed
// with "~", wherever it appears in the expression). Repeating the same
// operand text N times within a kind folds it into a single wordOperand
// with threshold N: "a&a" requires "a" to occur at least twice for the AND
// condition on "a" to be satisfied, and "~c~c~c" requires "c" to occur at
// least three times before it disqualifies the word. A bare word with no
// "&" or "~" is a single AND operand with threshold 1. AND operands are
// listed first, each group in insertion order.
func compileWord(expr string) []wordOperand {
	counts := make(map[operandKey]int)
	order := make([]operandKey, 0)

	for _, piece := range strings.Split(expr, "&") {
		for _, notPiece := range splitNot(piece) {
			if notPiece.text == "" {
				continue
			}
			key := operandKey{text: notPiece.text, kind: notPiece.kind}
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	operands := make([]wordOperand, 0, len(order))
	for _, kind := range []operandKind{operandAnd, operandNot} {
		for _, key := range order {
			if key.kind != kind {
				continue
			}
			operands = append(operands, wordOperand{
				text:      key.text,
				kind:      key.kind,
				threshold: counts[key],
			})
		}
	}
	return operands
}

// splitNot splits one "&"-delimited piece on "~" into its constituent
// operands. A leading "~" (empty first element after split) means the whole
// piece is NOT operands; any text before the first "~" is an AND operand.
func splitNot(piece string) []wordOperand {
	parts := strings.Split(piece, "~")
	out := make([]wordOperand, 0, len(parts))
	if parts[0] != "" {
		out = append(out, wordOperand{text: parts[0], kind: operandAnd})
	}
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		out = append(out, wordOperand{text: p, kind: operandNot})
	}
	return out
}
