package diagfmt

import (
	"fmt"
	"strings"

	"strata/internal/diag"
	"strata/internal/resolve"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

// Diagnostic renders a structured resolution failure into a diag.Diagnostic.
// Candidate listings become notes so the host can show a qualified-call
// suggestion per candidate.
func Diagnostic(f *resolve.Failure, tys *types.Interner, strs *source.Interner, decls *symbols.DeclSet) diag.Diagnostic {
	method, _ := strs.Lookup(f.Method)
	subject := Label(tys, strs, f.Subject)

	var msg string
	switch f.Kind {
	case resolve.FailCycle:
		msg = fmt.Sprintf("capability cycle detected while walking the receiver chain of `%s`", subject)
	case resolve.FailDepthExceeded:
		msg = fmt.Sprintf("receiver chain of `%s` exceeds the depth limit", subject)
	case resolve.FailAmbiguous:
		msg = fmt.Sprintf("multiple applicable candidates for `%s` on `%s`", method, subject)
	case resolve.FailNoMatch:
		msg = fmt.Sprintf("no method `%s` found for `%s`", method, subject)
	case resolve.FailDynUnsafe:
		entry := f.Subject
		if f.ChainIndex >= 0 && f.ChainIndex < len(f.Chain) {
			entry = f.Chain[f.ChainIndex]
		}
		msg = fmt.Sprintf("`%s` cannot be the receiver of a dynamically dispatched call to `%s`", Label(tys, strs, entry), method)
	case resolve.FailLifetime:
		msg = fmt.Sprintf("region %s on the receiver of `%s` is not available at the call site", RegionLabel(tys, strs, f.Region), method)
	default:
		msg = fmt.Sprintf("resolution of `%s` failed", method)
	}

	d := diag.NewError(f.Kind.Code(), f.Span, msg)
	switch f.Kind {
	case resolve.FailAmbiguous:
		for _, c := range f.Candidates {
			d = d.WithNote(candidateSpan(decls, c), candidateNote(tys, strs, decls, c))
		}
	case resolve.FailNoMatch:
		if len(f.Chain) > 0 {
			d = d.WithNote(f.Span, "receiver chain considered: "+chainLabel(tys, strs, f.Chain))
		}
	}
	return d
}

// Report synthesizes the failure and emits it through rep, keeping the
// producer side decoupled from where diagnostics end up stored.
func Report(rep diag.Reporter, f *resolve.Failure, tys *types.Interner, strs *source.Interner, decls *symbols.DeclSet) {
	d := Diagnostic(f, tys, strs, decls)
	rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
}

func candidateSpan(decls *symbols.DeclSet, c resolve.Candidate) source.Span {
	if decl := decls.Get(c.Decl); decl != nil {
		return decl.Span
	}
	return source.Span{}
}

// candidateNote describes one tied candidate: its declaring type, chain
// position, access form, and the qualification that would disambiguate it.
func candidateNote(tys *types.Interner, strs *source.Interner, decls *symbols.DeclSet, c resolve.Candidate) string {
	decl := decls.Get(c.Decl)
	if decl == nil {
		return fmt.Sprintf("candidate at chain position %d (%s)", c.ChainIndex, c.Form)
	}
	owner := Label(tys, strs, decl.Owner)
	method, _ := strs.Lookup(decl.Name)
	return fmt.Sprintf("candidate declared on `%s` at chain position %d (%s); qualify as `%s::%s`",
		owner, c.ChainIndex, c.Form, owner, method)
}

func chainLabel(tys *types.Interner, strs *source.Interner, entries []types.TypeID) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = Label(tys, strs, e)
	}
	return strings.Join(parts, " -> ")
}
