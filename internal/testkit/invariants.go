// Package testkit holds invariant checks shared by tests across packages.
package testkit

import (
	"fmt"

	"strata/internal/chain"
	"strata/internal/resolve"
	"strata/internal/types"
)

// CheckChainInvariants runs the structural invariants every built chain must
// satisfy:
// 1) the chain is non-empty and starts at the subject type
// 2) no entry repeats
// 3) the length stays within the builder's depth limit
func CheckChainInvariants(ch chain.Chain, start types.TypeID, maxDepth int) error {
	if ch.Len() == 0 {
		return fmt.Errorf("chain is empty")
	}
	if ch.Entries[0] != start {
		return fmt.Errorf("chain starts at %d, want subject %d", ch.Entries[0], start)
	}
	if maxDepth > 0 && ch.Len() > maxDepth {
		return fmt.Errorf("chain length %d exceeds depth limit %d", ch.Len(), maxDepth)
	}
	seen := make(map[types.TypeID]int, ch.Len())
	for i, e := range ch.Entries {
		if e == types.NoTypeID {
			return fmt.Errorf("entry %d is the null type", i)
		}
		if prev, dup := seen[e]; dup {
			return fmt.Errorf("entry %d repeats position %d", i, prev)
		}
		seen[e] = i
	}
	return nil
}

// CheckDeterminism resolves the same request twice against one resolver and
// compares the observable outcome. Resolution must be a pure function of its
// inputs.
func CheckDeterminism(r *resolve.Resolver, req resolve.Request) error {
	first := r.Resolve(req)
	second := r.Resolve(req)

	if first.Outcome.Kind != second.Outcome.Kind {
		return fmt.Errorf("outcome kind drifted: %v then %v", first.Outcome.Kind, second.Outcome.Kind)
	}
	if first.Outcome.Selected != second.Outcome.Selected {
		return fmt.Errorf("selected candidate drifted")
	}
	if len(first.Outcome.Tied) != len(second.Outcome.Tied) {
		return fmt.Errorf("tied set size drifted: %d then %d", len(first.Outcome.Tied), len(second.Outcome.Tied))
	}
	for i := range first.Outcome.Tied {
		if first.Outcome.Tied[i] != second.Outcome.Tied[i] {
			return fmt.Errorf("tied candidate %d drifted", i)
		}
	}
	if (first.Failure == nil) != (second.Failure == nil) {
		return fmt.Errorf("failure presence drifted")
	}
	if first.Failure != nil && first.Failure.Kind != second.Failure.Kind {
		return fmt.Errorf("failure kind drifted: %v then %v", first.Failure.Kind, second.Failure.Kind)
	}
	return nil
}
