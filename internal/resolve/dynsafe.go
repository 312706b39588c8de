package resolve

import (
	"strata/internal/registry"
	"strata/internal/types"
)

// IsDynSafe reports whether a chain entry may appear as the receiver of a
// dynamically dispatched call. Safety is per entry, not chain-wide: a chain
// may mix safe and unsafe segments, so each position is queried on its own.
// The answer depends only on the registry, never on candidate assembly.
func IsDynSafe(reg *registry.Registry, entry types.TypeID) bool {
	return reg.SupportsDynamicDispatch(entry)
}
