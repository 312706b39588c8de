package registry

import (
	"errors"
	"fmt"

	"strata/internal/source"
	"strata/internal/types"
)

// ErrFrozen is returned for any mutation attempted after Freeze.
var ErrFrozen = errors.New("registry: frozen")

// OverlapError reports two capability declarations that could apply to the
// same concrete type. Fatal for the compilation unit being populated.
type OverlapError struct {
	Owner  types.TypeID
	First  source.Span
	Second source.Span
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("registry: overlapping capability declarations for type %d", e.Owner)
}

// TargetArgError reports a generic capability declaration whose target
// argument index is out of range for the owner.
type TargetArgError struct {
	Owner types.TypeID
	Arg   int
	Arity int
}

func (e *TargetArgError) Error() string {
	return fmt.Sprintf("registry: target argument %d out of range for type %d (arity %d)", e.Arg, e.Owner, e.Arity)
}
