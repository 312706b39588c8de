package diagfmt

import (
	"strings"
	"testing"

	"strata/internal/diag"
	"strata/internal/resolve"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

func TestLabelRendersNestedTypes(t *testing.T) {
	tys := types.NewInterner()
	strs := source.NewInterner()
	bar := tys.RegisterNamed(strs.Intern("Bar"), source.Span{}, nil, nil)
	ptr := tys.RegisterNamed(strs.Intern("Ptr"), source.Span{}, []source.StringID{strs.Intern("T")}, nil)
	ptrBar := tys.Instantiate(ptr, []types.TypeID{bar}, nil)
	ra := tys.Region(strs.Intern("a"))
	ref := tys.Intern(types.MakeReference(ptrBar, true, ra))

	if got := Label(tys, strs, ptrBar); got != "Ptr<Bar>" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := Label(tys, strs, ref); got != "&'a mut Ptr<Bar>" {
		t.Fatalf("unexpected reference label: %q", got)
	}
	raw := tys.Intern(types.MakePointer(bar))
	if got := Label(tys, strs, raw); got != "*Bar" {
		t.Fatalf("unexpected pointer label: %q", got)
	}
}

func TestDiagnosticForAmbiguity(t *testing.T) {
	tys := types.NewInterner()
	strs := source.NewInterner()
	widget := tys.RegisterNamed(strs.Intern("Widget"), source.Span{}, nil, nil)
	name := strs.Intern("get")

	decls := symbols.NewDeclSet()
	a := decls.Add(symbols.MethodDecl{Name: name, Owner: widget, Receiver: widget, Form: symbols.FormValue})
	b := decls.Add(symbols.MethodDecl{Name: name, Owner: widget, Receiver: widget, Form: symbols.FormShared})

	f := &resolve.Failure{
		Kind:       resolve.FailAmbiguous,
		Method:     name,
		Subject:    widget,
		Chain:      []types.TypeID{widget},
		ChainIndex: -1,
		Candidates: []resolve.Candidate{
			{ChainIndex: 0, Form: symbols.FormValue, Decl: a},
			{ChainIndex: 0, Form: symbols.FormShared, Decl: b},
		},
	}
	d := Diagnostic(f, tys, strs, decls)
	if d.Code != diag.ResAmbiguous {
		t.Fatalf("unexpected code: %v", d.Code)
	}
	if !strings.Contains(d.Message, "multiple applicable candidates") {
		t.Fatalf("unexpected message: %q", d.Message)
	}
	if len(d.Notes) != 2 {
		t.Fatalf("each tied candidate needs a note, got %d", len(d.Notes))
	}
	if !strings.Contains(d.Notes[0].Msg, "qualify as `Widget::get`") {
		t.Fatalf("note should carry a qualified-call suggestion: %q", d.Notes[0].Msg)
	}
}

func TestDiagnosticForNoMatchListsChain(t *testing.T) {
	tys := types.NewInterner()
	strs := source.NewInterner()
	box := tys.RegisterNamed(strs.Intern("Box"), source.Span{}, nil, nil)
	val := tys.RegisterNamed(strs.Intern("Value"), source.Span{}, nil, nil)

	f := &resolve.Failure{
		Kind:       resolve.FailNoMatch,
		Method:     strs.Intern("missing"),
		Subject:    box,
		Chain:      []types.TypeID{box, val},
		ChainIndex: -1,
	}
	d := Diagnostic(f, tys, strs, symbols.NewDeclSet())
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, "Box -> Value") {
		t.Fatalf("no-match note should list the chain, got %+v", d.Notes)
	}
}

func TestPrettyWritesPositions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("scenario.toml", []byte("line one\nline two\n"))

	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.ResNoMatch, source.Span{File: id, Start: 9, End: 13}, "no method `x` found"))

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowNotes: true})
	out := sb.String()
	if !strings.Contains(out, "scenario.toml:2:1") {
		t.Fatalf("expected resolved position in output, got %q", out)
	}
	if !strings.Contains(out, "ERROR SR3002") {
		t.Fatalf("expected severity and code, got %q", out)
	}
}
