package resolve

import (
	"fmt"

	"strata/internal/symbols"
	"strata/internal/types"
)

// LifetimeError reports a region placeholder on the winning receiver type
// that is neither elided nor bound at the call site.
type LifetimeError struct {
	Region types.RegionID
	Decl   symbols.DeclID
}

func (e *LifetimeError) Error() string {
	return fmt.Sprintf("resolve: region %d on the receiver is not bound at the call site", e.Region)
}

// CheckLifetimes verifies that every region placeholder embedded in the
// winning declaration's receiver type is either elided (inferred fresh per
// call) or bound to a region available at the call site. Regions on custom
// receiver types behave exactly like regions on ordinary references, so no
// general borrow checking happens here; only the shape is confirmed.
func CheckLifetimes(tys *types.Interner, id symbols.DeclID, decl *symbols.MethodDecl, callRegions []types.RegionID) error {
	regions := tys.Regions(decl.Receiver)
	if decl.FormRegion != types.NoRegionID {
		regions = append(regions, decl.FormRegion)
	}
	if len(regions) == 0 {
		return nil
	}
	bound := make(map[types.RegionID]bool, len(callRegions))
	for _, r := range callRegions {
		bound[r] = true
	}
	for _, r := range regions {
		info, ok := tys.RegionInfo(r)
		if !ok {
			continue
		}
		if info.Elided() || bound[r] {
			continue
		}
		return &LifetimeError{Region: r, Decl: id}
	}
	return nil
}
