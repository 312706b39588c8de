package types

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"strata/internal/source"
)

// NamedInfo stores metadata for a nominal type declaration.
type NamedInfo struct {
	Name       source.StringID
	Decl       source.Span
	TypeParams []source.StringID
	Regions    []source.StringID
}

// Arity returns the number of declared type parameters.
func (n *NamedInfo) Arity() int {
	return len(n.TypeParams)
}

// InstInfo stores the arguments of a generic instantiation.
type InstInfo struct {
	Origin  TypeID // the uninstantiated declaration
	Args    []TypeID
	Regions []RegionID
}

// RegisterNamed allocates a nominal type slot and returns its TypeID. The
// returned ID stands for the declaration itself; generic declarations are
// instantiated via Instantiate.
func (in *Interner) RegisterNamed(name source.StringID, decl source.Span, typeParams, regionParams []source.StringID) TypeID {
	slot := in.appendNamedInfo(NamedInfo{
		Name:       name,
		Decl:       decl,
		TypeParams: slices.Clone(typeParams),
		Regions:    slices.Clone(regionParams),
	})
	return in.internRaw(Type{Kind: KindNamed, Payload: slot})
}

// Instantiate interns origin<args...> and returns its TypeID. Instantiating
// with no arguments returns origin unchanged; argument lists are part of the
// type identity, so equal instantiations share one TypeID.
func (in *Interner) Instantiate(origin TypeID, args []TypeID, regions []RegionID) TypeID {
	tt, ok := in.Lookup(origin)
	if !ok || tt.Kind != KindNamed {
		return NoTypeID
	}
	if len(args) == 0 && len(regions) == 0 {
		return origin
	}
	// Resolve through an already instantiated base to its origin.
	if tt.Inst != 0 {
		origin = in.insts[tt.Inst].Origin
		tt = in.MustLookup(origin)
	}
	key := instKey(tt.Payload, args, regions)
	if slot, ok := in.instIndex[key]; ok {
		return in.Intern(Type{Kind: KindNamed, Payload: tt.Payload, Inst: slot})
	}
	slot, err := safecast.Conv[uint32](len(in.insts))
	if err != nil {
		panic(fmt.Errorf("inst slot overflow: %w", err))
	}
	in.insts = append(in.insts, InstInfo{
		Origin:  origin,
		Args:    slices.Clone(args),
		Regions: slices.Clone(regions),
	})
	in.instIndex[key] = slot
	return in.internRaw(Type{Kind: KindNamed, Payload: tt.Payload, Inst: slot})
}

// NamedInfo returns declaration metadata for a named type or instantiation.
func (in *Interner) NamedInfo(id TypeID) (*NamedInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNamed {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.named) {
		return nil, false
	}
	return &in.named[tt.Payload], true
}

// Origin strips the instantiation from a named type: Origin(Ptr<Bar>) = Ptr.
// Non-named types and plain declarations are returned unchanged.
func (in *Interner) Origin(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNamed || tt.Inst == 0 {
		return id
	}
	return in.insts[tt.Inst].Origin
}

// TypeArgs returns the instantiation arguments of a named type, or nil for
// plain declarations.
func (in *Interner) TypeArgs(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNamed || tt.Inst == 0 {
		return nil
	}
	return in.insts[tt.Inst].Args
}

func (in *Interner) appendNamedInfo(info NamedInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.named))
	if err != nil {
		panic(fmt.Errorf("named info overflow: %w", err))
	}
	in.named = append(in.named, info)
	return slot
}

func instKey(slot uint32, args []TypeID, regions []RegionID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d(", slot)
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", a)
	}
	sb.WriteByte(';')
	for i, r := range regions {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", r)
	}
	sb.WriteByte(')')
	return sb.String()
}
