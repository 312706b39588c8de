package chain

import (
	"slices"
	"sync"

	"strata/internal/registry"
	"strata/internal/types"
)

// Builder memoizes chains per starting type. A chain depends only on the
// registry, which is frozen during resolution, so call sites sharing a
// receiver type share one walk. Safe for concurrent use.
type Builder struct {
	reg      *registry.Registry
	maxDepth int

	mu   sync.RWMutex
	memo map[types.TypeID]memoEntry
}

type memoEntry struct {
	chain Chain
	err   error
}

// NewBuilder wraps a frozen registry. maxDepth <= 0 selects DefaultMaxDepth.
func NewBuilder(reg *registry.Registry, maxDepth int) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Builder{
		reg:      reg,
		maxDepth: maxDepth,
		memo:     make(map[types.TypeID]memoEntry, 32),
	}
}

// MaxDepth returns the configured bound.
func (b *Builder) MaxDepth() int {
	return b.maxDepth
}

// Chain returns the memoized chain for t0, walking the registry on first use.
// Errors are memoized too: a cyclic declaration pair fails identically at
// every call site.
func (b *Builder) Chain(t0 types.TypeID) (Chain, error) {
	b.mu.RLock()
	entry, ok := b.memo[t0]
	b.mu.RUnlock()
	if ok {
		return entry.chain, entry.err
	}

	ch, err := Build(b.reg, t0, b.maxDepth)

	b.mu.Lock()
	// Another worker may have raced us; both computed the same result.
	if prior, ok := b.memo[t0]; ok {
		b.mu.Unlock()
		return prior.chain, prior.err
	}
	b.memo[t0] = memoEntry{chain: ch, err: err}
	b.mu.Unlock()
	return ch, err
}

// Seed preloads memoized chains, typically from a disk cache. Callers must
// key their cache on a registry fingerprint. Entries longer than this
// builder's depth bound are dropped so a fresh walk reports the same
// DepthExceededError it would without the cache.
func (b *Builder) Seed(chains map[types.TypeID][]types.TypeID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for start, entries := range chains {
		if len(entries) == 0 || len(entries) > b.maxDepth {
			continue
		}
		b.memo[start] = memoEntry{chain: Chain{Entries: slices.Clone(entries)}}
	}
}

// Snapshot exports successfully memoized chains for caching. Failed walks
// are not exported.
func (b *Builder) Snapshot() map[types.TypeID][]types.TypeID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[types.TypeID][]types.TypeID, len(b.memo))
	for start, entry := range b.memo {
		if entry.err != nil {
			continue
		}
		out[start] = slices.Clone(entry.chain.Entries)
	}
	return out
}
