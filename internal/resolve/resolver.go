// Package resolve decides which declared method a call expression invokes
// when the receiver type is wrapped in a chain of capability types.
//
// Resolution is a pure, synchronous, read-only computation over a frozen
// registry and a call-site-visible declaration set. Independent call sites
// may be resolved concurrently; the only shared mutable state is the chain
// memo inside chain.Builder, which is internally synchronized.
package resolve

import (
	"errors"

	"strata/internal/chain"
	"strata/internal/registry"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

// Request describes one call site to resolve.
type Request struct {
	Receiver           types.TypeID
	Method             source.StringID
	Decls              *symbols.DeclSet
	RequireDynDispatch bool
	CallRegions        []types.RegionID
	Span               source.Span
}

// Result pairs the resolution outcome with the chain that produced it.
// Failure is non-nil exactly when the host must report a diagnostic; a
// successful resolution has Outcome.Kind == OutcomeResolved and no failure.
type Result struct {
	Outcome Outcome
	Chain   chain.Chain
	Failure *Failure
}

// Resolver ties the capability registry, chain builder and type interner
// together. One resolver serves a whole resolution pass.
type Resolver struct {
	types  *types.Interner
	reg    *registry.Registry
	chains *chain.Builder
}

// New constructs a resolver over a frozen registry. maxDepth <= 0 selects
// chain.DefaultMaxDepth.
func New(tys *types.Interner, reg *registry.Registry, maxDepth int) *Resolver {
	if !reg.Frozen() {
		panic("resolve: registry must be frozen before resolution")
	}
	return &Resolver{
		types:  tys,
		reg:    reg,
		chains: chain.NewBuilder(reg, maxDepth),
	}
}

// Chains exposes the memoizing chain builder, e.g. for cache snapshots.
func (r *Resolver) Chains() *chain.Builder {
	return r.chains
}

// Types returns the interner the resolver was built over.
func (r *Resolver) Types() *types.Interner {
	return r.types
}

// Registry returns the frozen capability registry.
func (r *Resolver) Registry() *registry.Registry {
	return r.reg
}

// Resolve runs the full pipeline for one call site: chain construction,
// candidate assembly, the nearest-wins policy, then object-safety and
// lifetime validation on the winner. Deterministic: the same request against
// the same registry and declaration set yields the same result.
func (r *Resolver) Resolve(req Request) Result {
	ch, err := r.chains.Chain(req.Receiver)
	if err != nil {
		return Result{Failure: r.classifyChainError(req, err)}
	}

	candidates := Assemble(r.types, ch, req.Method, req.Decls)
	outcome := Decide(candidates)

	res := Result{Outcome: outcome, Chain: ch}
	switch outcome.Kind {
	case OutcomeNoMatch:
		res.Failure = &Failure{
			Kind:       FailNoMatch,
			Method:     req.Method,
			Subject:    req.Receiver,
			Chain:      ch.Entries,
			ChainIndex: -1,
			Span:       req.Span,
		}
	case OutcomeAmbiguous:
		res.Failure = &Failure{
			Kind:       FailAmbiguous,
			Method:     req.Method,
			Subject:    req.Receiver,
			Chain:      ch.Entries,
			ChainIndex: -1,
			Candidates: outcome.Tied,
			Span:       req.Span,
		}
	case OutcomeResolved:
		res.Failure = r.validateWinner(req, ch, outcome.Selected)
	}
	return res
}

// validateWinner runs the post-policy checks: object safety only when the
// call site requires dynamic dispatch, then region harmonization.
func (r *Resolver) validateWinner(req Request, ch chain.Chain, winner Candidate) *Failure {
	if req.RequireDynDispatch && !IsDynSafe(r.reg, ch.Entries[winner.ChainIndex]) {
		return &Failure{
			Kind:       FailDynUnsafe,
			Method:     req.Method,
			Subject:    req.Receiver,
			Chain:      ch.Entries,
			ChainIndex: winner.ChainIndex,
			Candidates: []Candidate{winner},
			Span:       req.Span,
		}
	}
	decl := req.Decls.Get(winner.Decl)
	if decl == nil {
		return nil
	}
	if err := CheckLifetimes(r.types, winner.Decl, decl, req.CallRegions); err != nil {
		var lt *LifetimeError
		if errors.As(err, &lt) {
			return &Failure{
				Kind:       FailLifetime,
				Method:     req.Method,
				Subject:    req.Receiver,
				Chain:      ch.Entries,
				ChainIndex: winner.ChainIndex,
				Candidates: []Candidate{winner},
				Region:     lt.Region,
				Span:       req.Span,
			}
		}
	}
	return nil
}

func (r *Resolver) classifyChainError(req Request, err error) *Failure {
	var cycle *chain.CycleError
	if errors.As(err, &cycle) {
		return &Failure{
			Kind:       FailCycle,
			Method:     req.Method,
			Subject:    req.Receiver,
			Chain:      cycle.Entries,
			ChainIndex: -1,
			Span:       req.Span,
		}
	}
	var depth *chain.DepthExceededError
	if errors.As(err, &depth) {
		return &Failure{
			Kind:       FailDepthExceeded,
			Method:     req.Method,
			Subject:    req.Receiver,
			ChainIndex: -1,
			Span:       req.Span,
		}
	}
	// Chain construction has no other failure modes.
	panic("resolve: unexpected chain error: " + err.Error())
}
