package process

// Pipeline drives a ProcessType mask's bits, in ascending order, through a
// Registry to produce the variant text(s) a piece of text expands to under
// that mask. It sits on top of the per-bit Matchers.
type Pipeline struct {
	reg *Registry
}

// NewPipeline returns a Pipeline backed by reg. Passing nil uses
// DefaultRegistry.
func NewPipeline(reg *Registry) *Pipeline {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Pipeline{reg: reg}
}

// Emit runs text through every bit of mask in ascending order and returns
// the full list of variant strings produced, layered as follows:
//
//   - Fanjian and Normalize replace in place: if the bit changes the current
//     text, the current (last) variant is overwritten, it is not appended.
//   - WordDelete, TextDelete, PinYin and PinYinChar push a new variant: if
//     the bit changes the current text, the result is appended as a new
//     entry, and later bits continue to operate from that new entry.
//
// The returned slice always has at least one element (the input,
// unchanged, if nothing in mask altered it).
func (p *Pipeline) Emit(mask Type, text string) ([]string, error) {
	variants := []string{text}

	for _, bit := range mask.Bits() {
		m, err := p.reg.Get(bit)
		if err != nil {
			return nil, err
		}

		current := variants[len(variants)-1]
		var changed bool
		var out string
		if bit == WordDelete || bit == TextDelete {
			changed, out = m.DeleteAll(current)
		} else {
			changed, out = m.ReplaceAll(current)
		}
		if !changed {
			continue
		}

		switch bit {
		case Fanjian, Normalize:
			variants[len(variants)-1] = out
		default:
			variants = append(variants, out)
		}
	}

	return variants, nil
}

// treeNode is one node of the shared processing trie EmitShared builds: each
// node is one variant string reached by applying some prefix of ascending
// ProcessType bits, keyed by which bit produced it. Traversing several masks
// against the same trie reuses a node (and therefore its cached transform)
// whenever two masks agree on the bits applied so far, which is what lets
// the matching engine scan every query text exactly once per distinct
// (prefix, bit) pair no matter how many ProcessTypes reference it.
type treeNode struct {
	variant  int // index into the shared variants slice this node represents
	children map[Type]*treeNode
}

// EmitShared is the shared/trie form of Emit: given a set of masks, it walks
// every ProcessType bit in ascending order once, building one trie whose
// nodes are shared across masks' common prefixes, and returns every distinct
// variant string produced (indexed into a single shared slice) together with,
// for each requested mask, the set of variant indices that mask's own Emit
// walk would have produced: one entry per bit applied, with
// Fanjian/Normalize overwriting the running variant in place exactly as
// Emit does and the push-category bits appending a new one.
func (p *Pipeline) EmitShared(masks []Type, text string) (map[Type][]int, []string, error) {
	variants := []string{text}
	index := map[string]int{text: 0}
	intern := func(s string) int {
		if idx, ok := index[s]; ok {
			return idx
		}
		idx := len(variants)
		index[s] = idx
		variants = append(variants, s)
		return idx
	}

	root := &treeNode{variant: 0, children: make(map[Type]*treeNode)}

	// step returns the node reached from n by applying bit, building and
	// caching it on first use so that any later mask retracing the same
	// (n, bit) pair reuses the transform instead of recomputing it.
	step := func(n *treeNode, bit Type) (*treeNode, error) {
		if child, ok := n.children[bit]; ok {
			return child, nil
		}

		m, err := p.reg.Get(bit)
		if err != nil {
			return nil, err
		}

		current := variants[n.variant]
		var changed bool
		var out string
		if bit == WordDelete || bit == TextDelete {
			changed, out = m.DeleteAll(current)
		} else {
			changed, out = m.ReplaceAll(current)
		}

		if !changed {
			n.children[bit] = n
			return n, nil
		}

		child := &treeNode{variant: intern(out), children: make(map[Type]*treeNode)}
		n.children[bit] = child
		return child, nil
	}

	result := make(map[Type][]int, len(masks))
	for _, mask := range masks {
		if _, ok := result[mask]; ok {
			continue // duplicate mask in the caller's set; nothing new to compute
		}

		order := []int{root.variant}
		n := root
		for _, bit := range mask.Bits() {
			next, err := step(n, bit)
			if err != nil {
				return nil, nil, err
			}
			if next == n {
				continue // unchanged: no new slot per the Layered discipline
			}

			switch bit {
			case Fanjian, Normalize:
				order[len(order)-1] = next.variant
			default:
				order = append(order, next.variant)
			}
			n = next
		}

		result[mask] = dedupInts(order)
	}

	return result, variants, nil
}

// dedupInts collapses duplicate indices while preserving first-seen order,
// turning Emit's ordered variant slots into the per-mask index set
// EmitShared reports.
func dedupInts(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}
