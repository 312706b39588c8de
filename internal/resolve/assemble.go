package resolve

import (
	"strata/internal/chain"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

// accessForms enumerates the three ways a chain entry can be taken. Matching
// is exact, so each declaration is viable under at most one of them.
var accessForms = [...]symbols.AccessForm{
	symbols.FormValue,
	symbols.FormShared,
	symbols.FormUnique,
}

// Assemble expands each chain entry into its three access forms and collects
// every visible declaration of the given name whose receiver matches the
// entry with that form exactly. Candidates preserve chain order first and the
// declaration scan order within a position.
func Assemble(tys *types.Interner, ch chain.Chain, name source.StringID, decls *symbols.DeclSet) []Candidate {
	var out []Candidate
	for idx, entry := range ch.Entries {
		decls.Scan(func(id symbols.DeclID, d *symbols.MethodDecl) bool {
			if d.Name != name {
				return true
			}
			for _, form := range accessForms {
				if matches(tys, d, entry, form) {
					out = append(out, Candidate{
						ChainIndex: idx,
						Form:       form,
						Decl:       id,
						Inherent:   sameDeclaration(tys, d.Owner, entry),
					})
					break
				}
			}
			return true
		})
	}
	return out
}

// matches reports whether decl is viable for (entry, form). Matching is
// exact: no widening across access forms. The one shorthand is a bare `self`
// receiver, which is definitionally a by-value receiver of its declaring
// type.
func matches(tys *types.Interner, decl *symbols.MethodDecl, entry types.TypeID, form symbols.AccessForm) bool {
	if decl.SelfShorthand {
		return form == symbols.FormValue && sameDeclaration(tys, decl.Owner, entry)
	}
	if decl.Form != form {
		return false
	}
	return sameDeclaration(tys, decl.Receiver, entry)
}

// sameDeclaration compares a declared receiver type against a chain entry.
// A receiver written against a generic declaration applies to every
// instantiation of it; everything else is identity.
func sameDeclaration(tys *types.Interner, declared, entry types.TypeID) bool {
	if declared == entry {
		return true
	}
	return declared == tys.Origin(entry) && declared != entry && tys.TypeArgs(entry) != nil
}
