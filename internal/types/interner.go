package types

import (
	"fmt"

	"fortio.org/safecast"

	"strata/internal/source"
)

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal types are registered once per declaration; structural types
// (references, pointers, instantiations) are deduplicated.
type Interner struct {
	types       []Type
	index       map[typeKey]TypeID
	named       []NamedInfo
	insts       []InstInfo
	instIndex   map[string]uint32
	regions     []RegionInfo
	regionIndex map[source.StringID]RegionID
}

// NewInterner constructs an empty interner with reserved invalid slots.
func NewInterner() *Interner {
	in := &Interner{
		index:       make(map[typeKey]TypeID, 64),
		instIndex:   make(map[string]uint32, 16),
		regionIndex: make(map[source.StringID]RegionID, 8),
	}
	in.named = append(in.named, NamedInfo{})   // reserve 0 as invalid sentinel
	in.insts = append(in.insts, InstInfo{})    // reserve 0 as "no arguments"
	in.regions = append(in.regions, RegionInfo{})
	in.internRaw(Type{Kind: KindInvalid}) // TypeID 0 = NoTypeID
	return in
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len counts interned types, the invalid sentinel included.
func (in *Interner) Len() int {
	return len(in.types)
}

// typeKey is the identity key for structural deduplication. Named
// declarations get distinct Payload slots, so nominal identity is preserved.
type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Mutable bool
	Region  RegionID
	Payload uint32
	Inst    uint32
}
