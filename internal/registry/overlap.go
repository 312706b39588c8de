package registry

import (
	"strata/internal/types"
)

// OverlapChecker decides whether two capability declarations could apply to
// the same concrete type after specialization. The full facility belongs to
// the host compiler; the registry only calls into it.
type OverlapChecker interface {
	Overlaps(a, b CapabilityDecl) bool
}

// sameOwnerChecker is the default: declarations overlap when they attach to
// the same declaration after stripping instantiations. Hosts with real
// specialization semantics install their own checker.
type sameOwnerChecker struct {
	tys *types.Interner
}

func (c sameOwnerChecker) Overlaps(a, b CapabilityDecl) bool {
	return c.tys.Origin(a.Owner) == c.tys.Origin(b.Owner)
}
