// Package manifest loads resolution scenarios from TOML files. A scenario
// declares nominal types, capability facts, method declarations and call
// sites, and builds the frozen engine state the driver runs against.
package manifest

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"strata/internal/diag"
	"strata/internal/driver"
	"strata/internal/registry"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

// Scenario is a fully built resolution input: interners populated, registry
// frozen, declarations and call sites ready for the driver.
type Scenario struct {
	Path     string
	Files    *source.FileSet
	File     source.FileID
	Types    *types.Interner
	Strings  *source.Interner
	Registry *registry.Registry
	Decls    *symbols.DeclSet
	Sites    []driver.CallSite
	MaxDepth int

	env *Env
}

// ParseTypeExpr parses a type expression against the scenario's declared
// types, e.g. for ad-hoc queries after loading.
func (sc *Scenario) ParseTypeExpr(expr string) (types.TypeID, error) {
	return sc.parseType(sc.env, expr)
}

// Error is a manifest loading failure carrying its diagnostic code.
type Error struct {
	Code diag.Code
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the failure into a reportable diagnostic anchored at
// the manifest file.
func (e *Error) Diagnostic(file source.FileID) diag.Diagnostic {
	return diag.NewError(e.Code, source.Span{File: file}, e.Err.Error())
}

type fileSchema struct {
	Registry     registrySection     `toml:"registry"`
	Types        []typeSection       `toml:"types"`
	Capabilities []capabilitySection `toml:"capabilities"`
	Methods      []methodSection     `toml:"methods"`
	Calls        []callSection       `toml:"calls"`
}

type registrySection struct {
	DerefReferences *bool `toml:"deref-references"`
	DerefPointers   bool  `toml:"deref-pointers"`
	MaxDepth        int   `toml:"max-depth"`
}

type typeSection struct {
	Name    string   `toml:"name"`
	Params  []string `toml:"params"`
	Regions []string `toml:"regions"`
	DynSafe bool     `toml:"dyn-safe"`
}

type capabilitySection struct {
	Owner     string `toml:"owner"`
	Target    string `toml:"target"`
	TargetArg *int   `toml:"target-arg"`
}

type methodSection struct {
	Name     string `toml:"name"`
	Owner    string `toml:"owner"`
	Receiver string `toml:"receiver"`
}

type callSection struct {
	Receiver string   `toml:"receiver"`
	Method   string   `toml:"method"`
	Dyn      bool     `toml:"dyn"`
	Regions  []string `toml:"regions"`
}

// Load reads and builds a scenario. Every returned error is a *Error so
// callers can report it with the right diagnostic code.
func Load(path string) (*Scenario, error) {
	files := source.NewFileSet()
	fid, err := files.Load(path)
	if err != nil {
		return nil, &Error{Code: diag.IOLoadFileError, Path: path, Err: err}
	}

	var schema fileSchema
	if err := toml.Unmarshal(files.Get(fid).Content, &schema); err != nil {
		return nil, &Error{Code: diag.ManifestParse, Path: path, Err: err}
	}

	sc := &Scenario{
		Path:     path,
		Files:    files,
		File:     fid,
		Types:    types.NewInterner(),
		Strings:  source.NewInterner(),
		Decls:    symbols.NewDeclSet(),
		MaxDepth: schema.Registry.MaxDepth,
	}

	env := &Env{
		Types:   sc.Types,
		Strings: sc.Strings,
		Named:   make(map[string]types.TypeID, len(schema.Types)),
	}

	if err := sc.declareTypes(env, schema.Types); err != nil {
		return nil, err
	}
	if err := sc.buildRegistry(env, schema); err != nil {
		return nil, err
	}
	if err := sc.declareMethods(env, schema.Methods); err != nil {
		return nil, err
	}
	if err := sc.collectCalls(env, schema.Calls); err != nil {
		return nil, err
	}
	sc.env = env
	return sc, nil
}

func (sc *Scenario) declareTypes(env *Env, decls []typeSection) error {
	for _, t := range decls {
		if t.Name == "" {
			return &Error{Code: diag.ManifestParse, Path: sc.Path, Err: fmt.Errorf("[[types]] entry without a name")}
		}
		if _, dup := env.Named[t.Name]; dup {
			return &Error{Code: diag.ManifestParse, Path: sc.Path, Err: fmt.Errorf("type %q declared twice", t.Name)}
		}
		params := make([]source.StringID, len(t.Params))
		for i, p := range t.Params {
			params[i] = sc.Strings.Intern(p)
		}
		regions := make([]source.StringID, len(t.Regions))
		for i, r := range t.Regions {
			regions[i] = sc.Strings.Intern(r)
		}
		env.Named[t.Name] = sc.Types.RegisterNamed(sc.Strings.Intern(t.Name), source.Span{File: sc.File}, params, regions)
	}
	return nil
}

func (sc *Scenario) buildRegistry(env *Env, schema fileSchema) error {
	cfg := registry.DefaultConfig()
	if schema.Registry.DerefReferences != nil {
		cfg.DerefReferences = *schema.Registry.DerefReferences
	}
	cfg.DerefPointers = schema.Registry.DerefPointers
	sc.Registry = registry.New(sc.Types, registry.WithConfig(cfg))

	for _, cap := range schema.Capabilities {
		owner, err := sc.parseType(env, cap.Owner)
		if err != nil {
			return err
		}
		decl := registry.CapabilityDecl{Owner: owner, Target: types.NoTypeID, TargetArg: -1, Span: source.Span{File: sc.File}}
		switch {
		case cap.TargetArg != nil && cap.Target != "":
			return &Error{Code: diag.ManifestParse, Path: sc.Path,
				Err: fmt.Errorf("capability on %q sets both target and target-arg", cap.Owner)}
		case cap.TargetArg != nil:
			decl.TargetArg = *cap.TargetArg
		case cap.Target != "":
			target, err := sc.parseType(env, cap.Target)
			if err != nil {
				return err
			}
			decl.Target = target
		default:
			return &Error{Code: diag.ManifestParse, Path: sc.Path,
				Err: fmt.Errorf("capability on %q needs target or target-arg", cap.Owner)}
		}
		if err := sc.Registry.Register(decl); err != nil {
			return &Error{Code: registryErrCode(err), Path: sc.Path, Err: err}
		}
	}

	for _, t := range schema.Types {
		if !t.DynSafe {
			continue
		}
		if err := sc.Registry.RegisterDynSafe(env.Named[t.Name]); err != nil {
			return &Error{Code: registryErrCode(err), Path: sc.Path, Err: err}
		}
	}

	sc.Registry.Freeze()
	return nil
}

func (sc *Scenario) declareMethods(env *Env, methods []methodSection) error {
	for _, m := range methods {
		if m.Name == "" || m.Owner == "" {
			return &Error{Code: diag.ManifestParse, Path: sc.Path, Err: fmt.Errorf("[[methods]] entry needs name and owner")}
		}
		owner, err := sc.parseType(env, m.Owner)
		if err != nil {
			return err
		}
		decl, err := parseReceiver(env, owner, m.Receiver)
		if err != nil {
			return sc.wrapTypeErr(err)
		}
		decl.Name = sc.Strings.Intern(m.Name)
		decl.Owner = owner
		decl.Span = source.Span{File: sc.File}
		sc.Decls.Add(decl)
	}
	return nil
}

func (sc *Scenario) collectCalls(env *Env, calls []callSection) error {
	for _, c := range calls {
		recv, err := sc.parseType(env, c.Receiver)
		if err != nil {
			return err
		}
		site := driver.CallSite{
			Receiver:   recv,
			Method:     sc.Strings.Intern(c.Method),
			RequireDyn: c.Dyn,
			Span:       source.Span{File: sc.File},
		}
		for _, r := range c.Regions {
			site.CallRegions = append(site.CallRegions, sc.Types.Region(sc.Strings.Intern(r)))
		}
		sc.Sites = append(sc.Sites, site)
	}
	return nil
}

func (sc *Scenario) parseType(env *Env, expr string) (types.TypeID, error) {
	id, err := ParseType(env, expr)
	if err != nil {
		return types.NoTypeID, sc.wrapTypeErr(err)
	}
	return id, nil
}

func (sc *Scenario) wrapTypeErr(err error) error {
	if ue, ok := err.(*UnknownTypeError); ok {
		return &Error{Code: diag.ManifestUnknownType, Path: sc.Path, Err: ue}
	}
	return &Error{Code: diag.ManifestBadTypeExpr, Path: sc.Path, Err: err}
}

// registryErrCode picks the registry-population diagnostic code for a
// Register failure.
func registryErrCode(err error) diag.Code {
	var overlap *registry.OverlapError
	if errors.As(err, &overlap) {
		return diag.RegOverlap
	}
	var badArg *registry.TargetArgError
	if errors.As(err, &badArg) {
		return diag.RegBadTargetArg
	}
	if errors.Is(err, registry.ErrFrozen) {
		return diag.RegFrozenMutation
	}
	return diag.ManifestParse
}

// parseReceiver interprets a receiver expression:
//
//	self              bare shorthand, by-value on the owner
//	&self, &'a self   shared borrow of the owner
//	&mut self         unique borrow of the owner
//	&Ptr<Self>        explicit annotation, borrow layer stripped into the form
//	Foo               by-value receiver of an explicit type
//
// An empty receiver defaults to the bare shorthand.
func parseReceiver(env *Env, owner types.TypeID, expr string) (symbols.MethodDecl, error) {
	bound := *env
	bound.Self = owner

	p := &typeParser{env: &bound, src: expr}
	p.skipSpace()
	if p.pos == len(p.src) || p.eatWord("self") {
		if p.pos != len(p.src) {
			return symbols.MethodDecl{}, fmt.Errorf("receiver %q: trailing input", expr)
		}
		return symbols.MethodDecl{Receiver: owner, Form: symbols.FormValue, SelfShorthand: true}, nil
	}

	if p.eat('&') {
		decl := symbols.MethodDecl{Form: symbols.FormShared}
		p.skipSpace()
		if p.peek() == '\'' {
			r, err := p.parseRegion()
			if err != nil {
				return symbols.MethodDecl{}, err
			}
			decl.FormRegion = r
		}
		if p.eatWord("mut") {
			decl.Form = symbols.FormUnique
		}
		if p.eatWord("self") {
			decl.Receiver = owner
		} else {
			recv, err := p.parse()
			if err != nil {
				return symbols.MethodDecl{}, err
			}
			decl.Receiver = recv
		}
		p.skipSpace()
		if p.pos != len(p.src) {
			return symbols.MethodDecl{}, fmt.Errorf("receiver %q: trailing input at offset %d", expr, p.pos)
		}
		return decl, nil
	}

	recv, err := p.parse()
	if err != nil {
		return symbols.MethodDecl{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return symbols.MethodDecl{}, fmt.Errorf("receiver %q: trailing input at offset %d", expr, p.pos)
	}
	return symbols.MethodDecl{Receiver: recv, Form: symbols.FormValue}, nil
}
