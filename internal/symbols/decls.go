// Package symbols models the method declarations visible at a call site.
// The engine treats the set as an opaque input: which declarations are in
// scope is the host resolver's concern.
package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"strata/internal/source"
	"strata/internal/types"
)

// AccessForm is how a declaration takes its receiver.
type AccessForm uint8

const (
	FormValue AccessForm = iota
	FormShared
	FormUnique
)

func (f AccessForm) String() string {
	switch f {
	case FormValue:
		return "value"
	case FormShared:
		return "shared borrow"
	case FormUnique:
		return "unique borrow"
	default:
		return fmt.Sprintf("AccessForm(%d)", f)
	}
}

// DeclID identifies a method declaration inside a DeclSet.
type DeclID uint32

// NoDeclID marks the absence of a declaration.
const NoDeclID DeclID = 0

// MethodDecl describes one declared method.
//
// Receiver is the type the receiver is written against, without the borrow
// layer: `self: &Ptr<Self>` has Receiver = Ptr<Self> and Form = FormShared.
// SelfShorthand marks a bare `self` receiver, which matches its declaring
// type by value without an explicit receiver annotation.
type MethodDecl struct {
	Name          source.StringID
	Owner         types.TypeID // declaring type
	Receiver      types.TypeID
	Form          AccessForm
	FormRegion    types.RegionID // region on the borrow layer, NoRegionID when absent
	SelfShorthand bool
	TypeParams    []source.StringID
	Span          source.Span
}

// DeclSet is an append-only arena of method declarations. Iteration order is
// insertion order; the resolution policy depends on it staying stable.
type DeclSet struct {
	decls []MethodDecl
}

// NewDeclSet creates an empty declaration set.
func NewDeclSet() *DeclSet {
	return &DeclSet{
		decls: make([]MethodDecl, 1), // reserve index 0 for NoDeclID
	}
}

// Add appends a declaration and returns its ID.
func (s *DeclSet) Add(d MethodDecl) DeclID {
	lenDecls, err := safecast.Conv[uint32](len(s.decls))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	id := DeclID(lenDecls)
	s.decls = append(s.decls, d)
	return id
}

// Get returns the declaration for id, or nil for invalid IDs.
func (s *DeclSet) Get(id DeclID) *MethodDecl {
	if id == NoDeclID || int(id) >= len(s.decls) {
		return nil
	}
	return &s.decls[id]
}

// Len counts stored declarations, the reserved slot excluded.
func (s *DeclSet) Len() int {
	return len(s.decls) - 1
}

// Scan calls fn for every declaration in stable insertion order. Returning
// false stops the scan.
func (s *DeclSet) Scan(fn func(DeclID, *MethodDecl) bool) {
	for i := 1; i < len(s.decls); i++ {
		if !fn(DeclID(i), &s.decls[i]) {
			return
		}
	}
}
