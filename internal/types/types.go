package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindNamed is a nominal type, possibly a generic instantiation.
	KindNamed
	// KindReference is a borrow: shared by default, unique when Mutable.
	KindReference
	// KindPointer is a raw pointer.
	KindPointer
	// KindParam is a type parameter placeholder inside a generic declaration.
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNamed:
		return "named"
	case KindReference:
		return "reference"
	case KindPointer:
		return "pointer"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID   // referent for Reference/Pointer
	Mutable bool     // unique borrow for references
	Region  RegionID // region annotation on references
	Payload uint32   // NamedInfo slot for Named, parameter index for Param
	Inst    uint32   // instantiation slot for Named with type arguments
}

// Descriptor helpers ---------------------------------------------------------

// MakeReference describes &T or &mut T depending on the mutable flag.
func MakeReference(elem TypeID, mutable bool, region RegionID) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable, Region: region}
}

// MakePointer describes a raw pointer to elem.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeParam describes the type parameter at index inside its declaration.
func MakeParam(index uint32) Type {
	return Type{Kind: KindParam, Payload: index}
}
