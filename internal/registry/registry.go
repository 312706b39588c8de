// Package registry stores receiver-capability facts: which types resolve
// toward a target type during chain walking, and which types additionally
// support dynamic-dispatch coercion. The two fact tables are independent.
//
// A registry is populated once, while declarations are processed, then
// frozen. Every query after Freeze is a pure read, so resolution workers may
// share one registry without locking.
package registry

import (
	"sort"

	"strata/internal/source"
	"strata/internal/types"
)

// CapabilityDecl associates an owner type with a single target type. For
// generic owners the target may be expressed as an index into the owner's
// type arguments (TargetArg), resolved per instantiation at lookup time.
type CapabilityDecl struct {
	Owner     types.TypeID
	Target    types.TypeID // fixed target; NoTypeID when TargetArg is used
	TargetArg int          // argument index, -1 when Target is fixed
	Span      source.Span
}

// Config selects which structural kinds participate in chain walking.
// Raw-pointer entries are off by default; a host that wants pointer-typed
// chain entries opts in explicitly.
type Config struct {
	DerefReferences bool
	DerefPointers   bool
}

// DefaultConfig mirrors the behavior of ordinary borrow-based receivers.
func DefaultConfig() Config {
	return Config{DerefReferences: true, DerefPointers: false}
}

// Registry is the capability fact store.
type Registry struct {
	types   *types.Interner
	config  Config
	checker OverlapChecker
	caps    map[types.TypeID]CapabilityDecl // keyed by owner (origin for generics)
	dynSafe map[types.TypeID]bool
	frozen  bool
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithConfig overrides the structural deref configuration.
func WithConfig(cfg Config) Option {
	return func(r *Registry) { r.config = cfg }
}

// WithOverlapChecker installs the host's overlap-checking facility.
func WithOverlapChecker(c OverlapChecker) Option {
	return func(r *Registry) { r.checker = c }
}

// New creates an empty, unfrozen registry bound to a type interner.
func New(tys *types.Interner, opts ...Option) *Registry {
	r := &Registry{
		types:   tys,
		config:  DefaultConfig(),
		checker: sameOwnerChecker{tys: tys},
		caps:    make(map[types.TypeID]CapabilityDecl, 16),
		dynSafe: make(map[types.TypeID]bool, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the structural deref configuration.
func (r *Registry) Config() Config {
	return r.config
}

// Register records a capability declaration. It fails with *OverlapError when
// another declaration could apply to the same concrete type, and with
// ErrFrozen after Freeze.
func (r *Registry) Register(decl CapabilityDecl) error {
	if r.frozen {
		return ErrFrozen
	}
	owner := r.types.Origin(decl.Owner)
	if decl.TargetArg >= 0 {
		info, ok := r.types.NamedInfo(owner)
		if !ok {
			return &TargetArgError{Owner: decl.Owner, Arg: decl.TargetArg, Arity: 0}
		}
		if decl.TargetArg >= info.Arity() {
			return &TargetArgError{Owner: decl.Owner, Arg: decl.TargetArg, Arity: info.Arity()}
		}
	}
	for _, existing := range r.caps {
		if r.checker.Overlaps(existing, decl) {
			return &OverlapError{Owner: owner, First: existing.Span, Second: decl.Span}
		}
	}
	r.caps[owner] = decl
	return nil
}

// RegisterDynSafe marks a type as eligible for dynamic-dispatch coercion.
// This is a separate fact from the receiver capability.
func (r *Registry) RegisterDynSafe(t types.TypeID) error {
	if r.frozen {
		return ErrFrozen
	}
	r.dynSafe[r.types.Origin(t)] = true
	return nil
}

// Freeze makes the registry immutable. Resolution must only run on frozen
// registries.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry accepts further declarations.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Lookup returns the capability target for t, resolving generic declarations
// against t's instantiation and applying structural deref rules for
// references (and pointers, when configured).
func (r *Registry) Lookup(t types.TypeID) (types.TypeID, bool) {
	tt, ok := r.types.Lookup(t)
	if !ok {
		return types.NoTypeID, false
	}
	switch tt.Kind {
	case types.KindReference:
		if r.config.DerefReferences {
			return tt.Elem, true
		}
		return types.NoTypeID, false
	case types.KindPointer:
		if r.config.DerefPointers {
			return tt.Elem, true
		}
		return types.NoTypeID, false
	case types.KindNamed:
		decl, ok := r.caps[r.types.Origin(t)]
		if !ok {
			return types.NoTypeID, false
		}
		if decl.TargetArg >= 0 {
			args := r.types.TypeArgs(t)
			if decl.TargetArg >= len(args) {
				// Uninstantiated generic owner: no concrete target yet.
				return types.NoTypeID, false
			}
			return args[decl.TargetArg], true
		}
		return decl.Target, true
	default:
		return types.NoTypeID, false
	}
}

// SupportsDynamicDispatch queries the object-safety fact table. It never
// consults the capability table.
func (r *Registry) SupportsDynamicDispatch(t types.TypeID) bool {
	if r.dynSafe[t] {
		return true
	}
	return r.dynSafe[r.types.Origin(t)]
}

// Snapshot returns all capability declarations sorted by owner, plus the
// sorted dyn-safe set. Used for cache fingerprinting.
func (r *Registry) Snapshot() ([]CapabilityDecl, []types.TypeID) {
	decls := make([]CapabilityDecl, 0, len(r.caps))
	for _, d := range r.caps {
		decls = append(decls, d)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Owner < decls[j].Owner })

	safe := make([]types.TypeID, 0, len(r.dynSafe))
	for t := range r.dynSafe {
		safe = append(safe, t)
	}
	sort.Slice(safe, func(i, j int) bool { return safe[i] < safe[j] })
	return decls, safe
}
