package manifest

import (
	"errors"
	"testing"

	"strata/internal/source"
	"strata/internal/types"
)

func newEnv() *Env {
	tys := types.NewInterner()
	strs := source.NewInterner()
	env := &Env{Types: tys, Strings: strs, Named: make(map[string]types.TypeID)}
	env.Named["Foo"] = tys.RegisterNamed(strs.Intern("Foo"), source.Span{}, nil, nil)
	env.Named["Ptr"] = tys.RegisterNamed(strs.Intern("Ptr"), source.Span{},
		[]source.StringID{strs.Intern("T")}, nil)
	return env
}

func TestParseTypePlainName(t *testing.T) {
	env := newEnv()
	id, err := ParseType(env, "Foo")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if id != env.Named["Foo"] {
		t.Fatalf("expected the registered Foo, got %v", id)
	}
}

func TestParseTypeInstantiation(t *testing.T) {
	env := newEnv()
	id, err := ParseType(env, "Ptr<Foo>")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if env.Types.Origin(id) != env.Named["Ptr"] {
		t.Fatalf("instantiation should originate from Ptr")
	}
	args := env.Types.TypeArgs(id)
	if len(args) != 1 || args[0] != env.Named["Foo"] {
		t.Fatalf("expected [Foo] args, got %v", args)
	}

	again, err := ParseType(env, "Ptr< Foo >")
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if again != id {
		t.Fatalf("equal expressions must intern to one TypeID")
	}
}

func TestParseTypeReferenceSpine(t *testing.T) {
	env := newEnv()
	id, err := ParseType(env, "&'a mut Ptr<Foo>")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tt := env.Types.MustLookup(id)
	if tt.Kind != types.KindReference || !tt.Mutable {
		t.Fatalf("expected a unique borrow, got %+v", tt)
	}
	info, ok := env.Types.RegionInfo(tt.Region)
	if !ok || env.Strings.MustLookup(info.Name) != "a" {
		t.Fatalf("expected region 'a on the borrow layer")
	}
	if env.Types.Origin(tt.Elem) != env.Named["Ptr"] {
		t.Fatalf("referent should be a Ptr instantiation")
	}
}

func TestParseTypeElidedRegionsAreFresh(t *testing.T) {
	env := newEnv()
	a, err := ParseType(env, "&'_ Foo")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b, err := ParseType(env, "&'_ Foo")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if a == b {
		t.Fatalf("each elided region must be a fresh placeholder")
	}
}

func TestParseTypePointer(t *testing.T) {
	env := newEnv()
	id, err := ParseType(env, "*Foo")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tt := env.Types.MustLookup(id)
	if tt.Kind != types.KindPointer || tt.Elem != env.Named["Foo"] {
		t.Fatalf("expected *Foo, got %+v", tt)
	}
}

func TestParseTypeUnknownName(t *testing.T) {
	env := newEnv()
	_, err := ParseType(env, "Ptr<Missing>")
	var ue *UnknownTypeError
	if !errors.As(err, &ue) || ue.Name != "Missing" {
		t.Fatalf("expected UnknownTypeError for Missing, got %v", err)
	}
}

func TestParseTypeRejectsTrailingInput(t *testing.T) {
	env := newEnv()
	if _, err := ParseType(env, "Foo extra"); err == nil {
		t.Fatalf("trailing input must fail")
	}
	if _, err := ParseType(env, "Ptr<Foo"); err == nil {
		t.Fatalf("unclosed argument list must fail")
	}
}

func TestParseTypeSelfOutsideReceiver(t *testing.T) {
	env := newEnv()
	if _, err := ParseType(env, "Self"); err == nil {
		t.Fatalf("Self without a binding must fail")
	}
}
