package process

import "sync"

// Registry is a process-wide, lazily built cache of Matchers keyed by
// single ProcessType bit. Building a Matcher means compiling an Aho-Corasick
// automaton, which is the expensive part of the pipeline. The cache is an
// explicit value so tests and multi-tenant callers can each hold their own,
// while DefaultRegistry offers the convenient global for single-tenant
// callers.
type Registry struct {
	mu       sync.RWMutex
	matchers map[Type]*Matcher
}

// NewRegistry returns an empty Registry ready for concurrent use.
func NewRegistry() *Registry {
	return &Registry{matchers: make(map[Type]*Matcher)}
}

// Get returns the Matcher for a single ProcessType bit, building and caching
// it on first use. bit must have exactly one bit set.
func (reg *Registry) Get(bit Type) (*Matcher, error) {
	if err := MustSingleBit(bit); err != nil {
		return nil, err
	}

	reg.mu.RLock()
	m, ok := reg.matchers[bit]
	reg.mu.RUnlock()
	if ok {
		return m, nil
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if m, ok = reg.matchers[bit]; ok {
		return m, nil
	}
	m = newMatcher(bit, buildDict(bit))
	reg.matchers[bit] = m
	return m, nil
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide shared Registry. Most callers
// that don't need isolated caches (tests exercising different mapdata
// overrides, for instance) should use this rather than constructing their
// own.
func DefaultRegistry() *Registry { return defaultRegistry }
