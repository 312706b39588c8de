package types

import (
	"fmt"

	"fortio.org/safecast"

	"strata/internal/source"
)

// RegionID identifies a region (lifetime) placeholder.
type RegionID uint32

// NoRegionID marks the absence of a region annotation.
const NoRegionID RegionID = 0

// RegionInfo stores metadata for a region placeholder. A region with no name
// is elided: it is inferred fresh at every use site.
type RegionInfo struct {
	Name source.StringID
}

// Elided reports whether the region has no explicit name.
func (r RegionInfo) Elided() bool {
	return r.Name == source.NoStringID
}

// Region interns a named region placeholder. Calling it twice with the same
// name yields the same RegionID.
func (in *Interner) Region(name source.StringID) RegionID {
	if name == source.NoStringID {
		return in.ElidedRegion()
	}
	if id, ok := in.regionIndex[name]; ok {
		return id
	}
	id := in.appendRegion(RegionInfo{Name: name})
	in.regionIndex[name] = id
	return id
}

// ElidedRegion allocates a fresh anonymous region placeholder.
func (in *Interner) ElidedRegion() RegionID {
	return in.appendRegion(RegionInfo{})
}

// RegionInfo returns metadata for the provided RegionID.
func (in *Interner) RegionInfo(id RegionID) (RegionInfo, bool) {
	if id == NoRegionID || int(id) >= len(in.regions) {
		return RegionInfo{}, false
	}
	return in.regions[id], true
}

func (in *Interner) appendRegion(info RegionInfo) RegionID {
	slot, err := safecast.Conv[uint32](len(in.regions))
	if err != nil {
		panic(fmt.Errorf("region slot overflow: %w", err))
	}
	in.regions = append(in.regions, info)
	return RegionID(slot)
}

// Regions collects every region annotation reachable from t: the reference
// spine plus region arguments of named instantiations. The walk is iterative
// and bounded by the type structure, so it terminates on any interned type.
func (in *Interner) Regions(t TypeID) []RegionID {
	var out []RegionID
	stack := []TypeID{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tt, ok := in.Lookup(cur)
		if !ok {
			continue
		}
		switch tt.Kind {
		case KindReference:
			if tt.Region != NoRegionID {
				out = append(out, tt.Region)
			}
			stack = append(stack, tt.Elem)
		case KindPointer:
			stack = append(stack, tt.Elem)
		case KindNamed:
			if tt.Inst != 0 {
				inst := in.insts[tt.Inst]
				out = append(out, inst.Regions...)
				stack = append(stack, inst.Args...)
			}
		}
	}
	return out
}
