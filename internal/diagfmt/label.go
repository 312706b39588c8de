// Package diagfmt renders engine outcomes and failures for humans and
// tooling. All string formatting for diagnostics lives here; the engine
// itself only produces structured records.
package diagfmt

import (
	"fmt"
	"strings"

	"strata/internal/source"
	"strata/internal/types"
)

// Label renders a human-readable name for a type: `Ptr<Bar>`, `&'a mut Foo`,
// `*Foo`. Unknown IDs render as `?`.
func Label(tys *types.Interner, strs *source.Interner, id types.TypeID) string {
	tt, ok := tys.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case types.KindNamed:
		info, ok := tys.NamedInfo(id)
		if !ok {
			return "?"
		}
		name, _ := strs.Lookup(info.Name)
		args := tys.TypeArgs(id)
		if len(args) == 0 {
			return name
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Label(tys, strs, a)
		}
		return fmt.Sprintf("%s<%s>", name, strings.Join(parts, ", "))
	case types.KindReference:
		var sb strings.Builder
		sb.WriteByte('&')
		if region := RegionLabel(tys, strs, tt.Region); region != "" {
			sb.WriteString(region)
			sb.WriteByte(' ')
		}
		if tt.Mutable {
			sb.WriteString("mut ")
		}
		sb.WriteString(Label(tys, strs, tt.Elem))
		return sb.String()
	case types.KindPointer:
		return "*" + Label(tys, strs, tt.Elem)
	case types.KindParam:
		return fmt.Sprintf("#%d", tt.Payload)
	default:
		return "?"
	}
}

// RegionLabel renders `'a` for named regions and `'_` for elided ones.
// NoRegionID renders as the empty string.
func RegionLabel(tys *types.Interner, strs *source.Interner, id types.RegionID) string {
	if id == types.NoRegionID {
		return ""
	}
	info, ok := tys.RegionInfo(id)
	if !ok {
		return ""
	}
	if info.Elided() {
		return "'_"
	}
	name, _ := strs.Lookup(info.Name)
	return "'" + name
}
