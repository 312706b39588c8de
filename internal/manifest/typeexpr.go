package manifest

import (
	"fmt"
	"strings"

	"strata/internal/source"
	"strata/internal/types"
)

// Env binds type-expression parsing to a scenario's interners and the named
// types the scenario declared.
type Env struct {
	Types   *types.Interner
	Strings *source.Interner
	Named   map[string]types.TypeID
	Self    types.TypeID // bound inside receiver expressions, NoTypeID elsewhere
}

// ParseType parses a textual type expression against the environment:
//
//	&'a mut Ptr<Bar>   reference spine with region and mutability
//	*Foo               raw pointer
//	Custom<Boxed<T>>   generic instantiation, region args allowed
//	Self               the enclosing method owner
//
// Region placeholders are 'name or '_ for an elided region.
func ParseType(env *Env, expr string) (types.TypeID, error) {
	p := &typeParser{env: env, src: expr}
	id, err := p.parse()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: trailing input at offset %d", expr, p.pos)
	}
	return id, nil
}

type typeParser struct {
	env *Env
	src string
	pos int
}

func (p *typeParser) parse() (types.TypeID, error) {
	p.skipSpace()
	switch {
	case p.eat('&'):
		return p.parseReference()
	case p.eat('*'):
		elem, err := p.parse()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.env.Types.Intern(types.MakePointer(elem)), nil
	default:
		return p.parseNamed()
	}
}

func (p *typeParser) parseReference() (types.TypeID, error) {
	region := types.NoRegionID
	p.skipSpace()
	if p.peek() == '\'' {
		r, err := p.parseRegion()
		if err != nil {
			return types.NoTypeID, err
		}
		region = r
	}
	mutable := p.eatWord("mut")
	elem, err := p.parse()
	if err != nil {
		return types.NoTypeID, err
	}
	return p.env.Types.Intern(types.MakeReference(elem, mutable, region)), nil
}

func (p *typeParser) parseNamed() (types.TypeID, error) {
	name := p.ident()
	if name == "" {
		return types.NoTypeID, fmt.Errorf("type %q: expected a type name at offset %d", p.src, p.pos)
	}

	var base types.TypeID
	if name == "Self" {
		if p.env.Self == types.NoTypeID {
			return types.NoTypeID, fmt.Errorf("type %q: Self is only valid in a receiver", p.src)
		}
		base = p.env.Self
	} else {
		id, ok := p.env.Named[name]
		if !ok {
			return types.NoTypeID, &UnknownTypeError{Name: name, Expr: p.src}
		}
		base = id
	}

	p.skipSpace()
	if !p.eat('<') {
		return base, nil
	}

	var args []types.TypeID
	var regions []types.RegionID
	for {
		p.skipSpace()
		if p.peek() == '\'' {
			r, err := p.parseRegion()
			if err != nil {
				return types.NoTypeID, err
			}
			regions = append(regions, r)
		} else {
			arg, err := p.parse()
			if err != nil {
				return types.NoTypeID, err
			}
			args = append(args, arg)
		}
		p.skipSpace()
		if p.eat(',') {
			continue
		}
		if p.eat('>') {
			break
		}
		return types.NoTypeID, fmt.Errorf("type %q: expected ',' or '>' at offset %d", p.src, p.pos)
	}

	inst := p.env.Types.Instantiate(base, args, regions)
	if inst == types.NoTypeID {
		return types.NoTypeID, fmt.Errorf("type %q: %s does not take arguments", p.src, name)
	}
	return inst, nil
}

func (p *typeParser) parseRegion() (types.RegionID, error) {
	if !p.eat('\'') {
		return types.NoRegionID, fmt.Errorf("type %q: expected a region at offset %d", p.src, p.pos)
	}
	name := p.ident()
	if name == "" {
		return types.NoRegionID, fmt.Errorf("type %q: expected a region name at offset %d", p.src, p.pos)
	}
	if name == "_" {
		return p.env.Types.ElidedRegion(), nil
	}
	return p.env.Types.Region(p.env.Strings.Intern(name)), nil
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// eatWord consumes a keyword only when followed by a word boundary, so that
// "mutable" stays an identifier.
func (p *typeParser) eatWord(word string) bool {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	after := p.pos + len(word)
	if after < len(p.src) {
		c := p.src[after]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			return false
		}
	}
	p.pos = after
	p.skipSpace()
	return true
}

// UnknownTypeError reports a reference to a type name the scenario never
// declared.
type UnknownTypeError struct {
	Name string
	Expr string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q in %q", e.Name, e.Expr)
}
