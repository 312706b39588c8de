package resolve

import (
	"reflect"
	"testing"

	"strata/internal/chain"
	"strata/internal/registry"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

// env bundles the interners, registry and declaration set most tests need.
type env struct {
	tys   *types.Interner
	strs  *source.Interner
	reg   *registry.Registry
	decls *symbols.DeclSet
}

func newEnv(t *testing.T, opts ...registry.Option) *env {
	t.Helper()
	tys := types.NewInterner()
	return &env{
		tys:   tys,
		strs:  source.NewInterner(),
		reg:   registry.New(tys, opts...),
		decls: symbols.NewDeclSet(),
	}
}

func (e *env) named(name string, params ...string) types.TypeID {
	ids := make([]source.StringID, len(params))
	for i, p := range params {
		ids[i] = e.strs.Intern(p)
	}
	return e.tys.RegisterNamed(e.strs.Intern(name), source.Span{}, ids, nil)
}

func (e *env) cap(t *testing.T, owner, target types.TypeID) {
	t.Helper()
	if err := e.reg.Register(registry.CapabilityDecl{Owner: owner, Target: target, TargetArg: -1}); err != nil {
		t.Fatalf("register capability: %v", err)
	}
}

func (e *env) capArg(t *testing.T, owner types.TypeID, arg int) {
	t.Helper()
	if err := e.reg.Register(registry.CapabilityDecl{Owner: owner, TargetArg: arg}); err != nil {
		t.Fatalf("register generic capability: %v", err)
	}
}

func (e *env) method(name string, owner, receiver types.TypeID, form symbols.AccessForm) symbols.DeclID {
	return e.decls.Add(symbols.MethodDecl{
		Name:     e.strs.Intern(name),
		Owner:    owner,
		Receiver: receiver,
		Form:     form,
	})
}

func (e *env) selfMethod(name string, owner types.TypeID) symbols.DeclID {
	return e.decls.Add(symbols.MethodDecl{
		Name:          e.strs.Intern(name),
		Owner:         owner,
		Receiver:      owner,
		Form:          symbols.FormValue,
		SelfShorthand: true,
	})
}

func (e *env) resolver(t *testing.T) *Resolver {
	t.Helper()
	e.reg.Freeze()
	return New(e.tys, e.reg, 0)
}

func (e *env) request(recv types.TypeID, method string) Request {
	return Request{
		Receiver: recv,
		Method:   e.strs.Intern(method),
		Decls:    e.decls,
	}
}

// Scenario A: chain [Self], a by-value declaration on Self.
func TestResolveValueReceiverOnBaseType(t *testing.T) {
	e := newEnv(t)
	self := e.named("Widget")
	e.selfMethod("draw", self)
	r := e.resolver(t)

	res := r.Resolve(e.request(self, "draw"))
	if res.Failure != nil {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
	if res.Outcome.Kind != OutcomeResolved {
		t.Fatalf("expected resolved, got %v", res.Outcome.Kind)
	}
	if res.Outcome.Selected.ChainIndex != 0 || res.Outcome.Selected.Form != symbols.FormValue {
		t.Fatalf("expected (index 0, value), got %+v", res.Outcome.Selected)
	}
}

// Scenario B: chain [CustomPtr<Self>, Self]; the only declaration takes
// CustomPtr<Self> by value.
func TestResolveMethodOnWrapperType(t *testing.T) {
	e := newEnv(t)
	self := e.named("Widget")
	ptr := e.named("CustomPtr", "T")
	ptrSelf := e.tys.Instantiate(ptr, []types.TypeID{self}, nil)
	e.capArg(t, ptr, 0)
	e.method("consume", self, ptrSelf, symbols.FormValue)
	r := e.resolver(t)

	res := r.Resolve(e.request(ptrSelf, "consume"))
	if res.Failure != nil {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
	if res.Outcome.Selected.ChainIndex != 0 || res.Outcome.Selected.Form != symbols.FormValue {
		t.Fatalf("expected (index 0, value), got %+v", res.Outcome.Selected)
	}
	if got := res.Chain.Entries; len(got) != 2 || got[0] != ptrSelf || got[1] != self {
		t.Fatalf("unexpected chain: %v", got)
	}
}

// Ptr declares an inherent foo(&self) and Bar declares foo(self: &Ptr<Self>).
// Both reach chain index 0 with the same form; the wrapper's inherent method
// wins over the extension-declared one.
func TestResolveWrapperInherentMethodWins(t *testing.T) {
	e := newEnv(t)
	bar := e.named("Bar")
	ptr := e.named("Ptr", "T")
	ptrBar := e.tys.Instantiate(ptr, []types.TypeID{bar}, nil)
	e.capArg(t, ptr, 0)

	// Inherent method on the wrapper, shared borrow.
	inherent := e.method("foo", ptr, ptr, symbols.FormShared)
	// Method on Bar whose receiver is &Ptr<Bar>: same chain entry, same form.
	e.method("foo", bar, ptrBar, symbols.FormShared)
	r := e.resolver(t)

	res := r.Resolve(e.request(ptrBar, "foo"))
	if res.Failure != nil {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
	if res.Outcome.Kind != OutcomeResolved {
		t.Fatalf("inherent wrapper method must win, got %v", res.Outcome.Kind)
	}
	if res.Outcome.Selected.Decl != inherent {
		t.Fatalf("expected the wrapper's declaration, got %+v", res.Outcome.Selected)
	}
}

// Two extension-declared methods reaching the same entry have no inherent
// winner and must tie.
func TestResolveExtensionMethodsTie(t *testing.T) {
	e := newEnv(t)
	bar := e.named("Bar")
	baz := e.named("Baz")
	ptr := e.named("Ptr", "T")
	ptrBar := e.tys.Instantiate(ptr, []types.TypeID{bar}, nil)
	e.capArg(t, ptr, 0)

	e.method("foo", bar, ptrBar, symbols.FormShared)
	e.method("foo", baz, ptrBar, symbols.FormShared)
	r := e.resolver(t)

	res := r.Resolve(e.request(ptrBar, "foo"))
	if res.Outcome.Kind != OutcomeAmbiguous {
		t.Fatalf("expected ambiguous, got %v", res.Outcome.Kind)
	}
	if len(res.Outcome.Tied) != 2 {
		t.Fatalf("expected both candidates listed, got %+v", res.Outcome.Tied)
	}
	if res.Failure == nil || res.Failure.Kind != FailAmbiguous {
		t.Fatalf("ambiguity must synthesize a failure record, got %+v", res.Failure)
	}
}

// When Bar's method sits at chain index 1 (receiver Bar itself) the
// wrapper's method at index 0 shadows it outright.
func TestResolveNearestChainPositionWins(t *testing.T) {
	e := newEnv(t)
	bar := e.named("Bar")
	ptr := e.named("Ptr", "T")
	ptrBar := e.tys.Instantiate(ptr, []types.TypeID{bar}, nil)
	e.capArg(t, ptr, 0)

	wrapper := e.method("foo", ptr, ptr, symbols.FormShared)
	e.method("foo", bar, bar, symbols.FormShared) // farther: chain index 1
	r := e.resolver(t)

	res := r.Resolve(e.request(ptrBar, "foo"))
	if res.Failure != nil {
		t.Fatalf("unexpected failure: %+v", res.Failure)
	}
	if res.Outcome.Kind != OutcomeResolved {
		t.Fatalf("expected resolved, got %v", res.Outcome.Kind)
	}
	sel := res.Outcome.Selected
	if sel.ChainIndex != 0 || sel.Decl != wrapper {
		t.Fatalf("wrapper method must shadow the wrapped type's, got %+v", sel)
	}
}

// Scenario E: value and shared-borrow declarations at the same chain index.
func TestResolveAmbiguousAcrossAccessForms(t *testing.T) {
	e := newEnv(t)
	self := e.named("Widget")
	e.method("get", self, self, symbols.FormValue)
	e.method("get", self, self, symbols.FormShared)
	r := e.resolver(t)

	res := r.Resolve(e.request(self, "get"))
	if res.Outcome.Kind != OutcomeAmbiguous {
		t.Fatalf("expected ambiguous, got %v", res.Outcome.Kind)
	}
	if len(res.Outcome.Tied) != 2 {
		t.Fatalf("expected 2 tied candidates, got %d", len(res.Outcome.Tied))
	}
	forms := map[symbols.AccessForm]bool{}
	for _, c := range res.Outcome.Tied {
		forms[c.Form] = true
	}
	if !forms[symbols.FormValue] || !forms[symbols.FormShared] {
		t.Fatalf("both forms must be listed, got %+v", res.Outcome.Tied)
	}
}

// Within one chain position the tied-candidate listing follows declaration
// scan order, not the access-form enumeration.
func TestAssembleOrdersByDeclarationWithinPosition(t *testing.T) {
	e := newEnv(t)
	widget := e.named("Widget")
	sharedFirst := e.method("get", widget, widget, symbols.FormShared)
	valueSecond := e.method("get", widget, widget, symbols.FormValue)
	e.reg.Freeze()

	cands := Assemble(e.tys, chain.Chain{Entries: []types.TypeID{widget}}, e.strs.Intern("get"), e.decls)
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", cands)
	}
	if cands[0].Decl != sharedFirst || cands[1].Decl != valueSecond {
		t.Fatalf("candidates must follow declaration order, got %+v", cands)
	}
	if cands[0].Form != symbols.FormShared || cands[1].Form != symbols.FormValue {
		t.Fatalf("each candidate must keep its own access form, got %+v", cands)
	}
}

func TestResolveNoMatchListsChain(t *testing.T) {
	e := newEnv(t)
	box := e.named("Box")
	val := e.named("Value")
	e.cap(t, box, val)
	r := e.resolver(t)

	res := r.Resolve(e.request(box, "missing"))
	if res.Outcome.Kind != OutcomeNoMatch {
		t.Fatalf("expected no match, got %v", res.Outcome.Kind)
	}
	if res.Failure == nil || res.Failure.Kind != FailNoMatch {
		t.Fatalf("expected a no-match failure, got %+v", res.Failure)
	}
	if len(res.Failure.Chain) != 2 {
		t.Fatalf("the failure must list the full chain, got %v", res.Failure.Chain)
	}
}

// Shorthand equivalence: a bare `self` declaration behaves identically to an
// explicit by-value receiver on the same type.
func TestResolveShorthandEquivalence(t *testing.T) {
	shorthand := newEnv(t)
	selfA := shorthand.named("Widget")
	shorthand.selfMethod("draw", selfA)
	resA := shorthand.resolver(t).Resolve(shorthand.request(selfA, "draw"))

	explicit := newEnv(t)
	selfB := explicit.named("Widget")
	explicit.method("draw", selfB, selfB, symbols.FormValue)
	resB := explicit.resolver(t).Resolve(explicit.request(selfB, "draw"))

	if resA.Outcome.Kind != resB.Outcome.Kind {
		t.Fatalf("outcome kinds differ: %v vs %v", resA.Outcome.Kind, resB.Outcome.Kind)
	}
	if resA.Outcome.Selected.ChainIndex != resB.Outcome.Selected.ChainIndex ||
		resA.Outcome.Selected.Form != resB.Outcome.Selected.Form {
		t.Fatalf("selected candidates differ: %+v vs %+v", resA.Outcome.Selected, resB.Outcome.Selected)
	}
}

func TestResolveDynDispatchRequiresEntrySafety(t *testing.T) {
	e := newEnv(t)
	bar := e.named("Bar")
	boxed := e.named("Boxed", "T")
	custom := e.named("Custom", "T")
	boxedBar := e.tys.Instantiate(boxed, []types.TypeID{bar}, nil)
	customBoxed := e.tys.Instantiate(custom, []types.TypeID{boxedBar}, nil)
	e.capArg(t, custom, 0)
	e.capArg(t, boxed, 0)
	// The box layer supports coercion, the custom wrapper does not.
	if err := e.reg.RegisterDynSafe(boxed); err != nil {
		t.Fatalf("register dyn safe: %v", err)
	}

	e.method("poke", custom, custom, symbols.FormShared)
	r := e.resolver(t)

	req := e.request(customBoxed, "poke")
	req.RequireDynDispatch = true
	res := r.Resolve(req)
	if res.Failure == nil || res.Failure.Kind != FailDynUnsafe {
		t.Fatalf("winner on an unsafe entry must fail, got %+v", res.Failure)
	}
	if res.Failure.ChainIndex != 0 {
		t.Fatalf("failure must name the violating entry, got %d", res.Failure.ChainIndex)
	}

	// Safety is per entry: the box layer itself reports safe independently.
	if !IsDynSafe(e.reg, boxedBar) {
		t.Fatalf("box layer must be dyn safe")
	}
	if IsDynSafe(e.reg, customBoxed) {
		t.Fatalf("custom wrapper must not be dyn safe")
	}
}

func TestResolveLifetimeHarmonization(t *testing.T) {
	e := newEnv(t)
	widget := e.named("Widget")
	ra := e.tys.Region(e.strs.Intern("a"))

	e.decls.Add(symbols.MethodDecl{
		Name:       e.strs.Intern("view"),
		Owner:      widget,
		Receiver:   widget,
		Form:       symbols.FormShared,
		FormRegion: ra,
	})
	r := e.resolver(t)

	// Unbound named region fails.
	res := r.Resolve(e.request(widget, "view"))
	if res.Failure == nil || res.Failure.Kind != FailLifetime {
		t.Fatalf("expected lifetime failure, got %+v", res.Failure)
	}
	if res.Failure.Region != ra {
		t.Fatalf("failure must carry the offending region, got %d", res.Failure.Region)
	}

	// Binding the region at the call site fixes it.
	req := e.request(widget, "view")
	req.CallRegions = []types.RegionID{ra}
	res = r.Resolve(req)
	if res.Failure != nil {
		t.Fatalf("bound region should harmonize, got %+v", res.Failure)
	}
}

func TestResolveElidedRegionAlwaysHarmonizes(t *testing.T) {
	e := newEnv(t)
	widget := e.named("Widget")
	e.decls.Add(symbols.MethodDecl{
		Name:       e.strs.Intern("view"),
		Owner:      widget,
		Receiver:   widget,
		Form:       symbols.FormShared,
		FormRegion: e.tys.ElidedRegion(),
	})
	r := e.resolver(t)

	res := r.Resolve(e.request(widget, "view"))
	if res.Failure != nil {
		t.Fatalf("elided regions are inferred fresh, got %+v", res.Failure)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	e := newEnv(t)
	bar := e.named("Bar")
	ptr := e.named("Ptr", "T")
	ptrBar := e.tys.Instantiate(ptr, []types.TypeID{bar}, nil)
	e.capArg(t, ptr, 0)
	e.method("foo", ptr, ptr, symbols.FormShared)
	e.method("foo", bar, bar, symbols.FormValue)
	r := e.resolver(t)

	first := r.Resolve(e.request(ptrBar, "foo"))
	for i := 0; i < 10; i++ {
		again := r.Resolve(e.request(ptrBar, "foo"))
		if !reflect.DeepEqual(first.Outcome, again.Outcome) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, first.Outcome, again.Outcome)
		}
	}
}

func TestDecideNeverPicksFartherCandidate(t *testing.T) {
	cands := []Candidate{
		{ChainIndex: 2, Form: symbols.FormValue, Decl: 1},
		{ChainIndex: 1, Form: symbols.FormShared, Decl: 2},
		{ChainIndex: 3, Form: symbols.FormValue, Decl: 3},
	}
	out := Decide(cands)
	if out.Kind != OutcomeResolved || out.Selected.ChainIndex != 1 {
		t.Fatalf("nearest candidate must win, got %+v", out)
	}
}

func TestDecideEmptyIsNoMatch(t *testing.T) {
	if out := Decide(nil); out.Kind != OutcomeNoMatch {
		t.Fatalf("expected no match, got %v", out.Kind)
	}
}

func TestResolveClassifiesCycle(t *testing.T) {
	e := newEnv(t)
	a := e.named("A")
	b := e.named("B")
	e.cap(t, a, b)
	e.cap(t, b, a)
	e.selfMethod("m", a)
	r := e.resolver(t)

	res := r.Resolve(e.request(a, "m"))
	if res.Failure == nil || res.Failure.Kind != FailCycle {
		t.Fatalf("expected cycle failure, got %+v", res.Failure)
	}
	// The ill-formed declaration pair fails, but only for call sites that
	// walk through it.
	other := e.request(a, "m")
	other.Receiver = a
	if res2 := r.Resolve(other); res2.Failure == nil || res2.Failure.Kind != FailCycle {
		t.Fatalf("cycle must fail identically on repeat, got %+v", res2.Failure)
	}
}
