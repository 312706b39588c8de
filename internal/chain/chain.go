// Package chain walks capability declarations from a starting type and
// produces the ordered, deduplicated, depth-bounded receiver chain.
package chain

import (
	"fmt"
	"slices"

	"strata/internal/registry"
	"strata/internal/types"
)

// DefaultMaxDepth bounds chain construction. The limit is a fixed constant,
// never wall-clock based, so resolution stays reproducible across runs.
const DefaultMaxDepth = 64

// Chain is the ordered sequence of candidate receiver types. Entries[0] is
// the static type at the call site; every later entry is the capability
// target of its predecessor. Entries never repeat.
type Chain struct {
	Entries []types.TypeID
}

// Len returns the number of chain entries.
func (c Chain) Len() int {
	return len(c.Entries)
}

// Contains reports whether t already appears in the chain.
func (c Chain) Contains(t types.TypeID) bool {
	return slices.Contains(c.Entries, t)
}

// CycleError reports a capability walk that revisited a type. Cycles can only
// arise from ill-formed declaration pairs across units that a single overlap
// check cannot see, so they surface lazily here and are never truncated.
type CycleError struct {
	Start    types.TypeID
	Repeated types.TypeID
	Entries  []types.TypeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("chain: capability cycle from type %d revisits type %d", e.Start, e.Repeated)
}

// DepthExceededError reports a chain longer than the configured bound,
// usually a pathologically deep generic instantiation. Fatal for the one
// call site only.
type DepthExceededError struct {
	Start types.TypeID
	Limit int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("chain: depth limit %d exceeded walking from type %d", e.Limit, e.Start)
}

// Build walks the registry from t0. The walk is iterative, so the stack does
// not grow with maxDepth. The registry is only read, never mutated.
func Build(reg *registry.Registry, t0 types.TypeID, maxDepth int) (Chain, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	entries := []types.TypeID{t0}
	current := t0
	for {
		target, ok := reg.Lookup(current)
		if !ok {
			return Chain{Entries: entries}, nil
		}
		if slices.Contains(entries, target) {
			return Chain{}, &CycleError{Start: t0, Repeated: target, Entries: entries}
		}
		if len(entries)+1 > maxDepth {
			return Chain{}, &DepthExceededError{Start: t0, Limit: maxDepth}
		}
		entries = append(entries, target)
		current = target
	}
}
