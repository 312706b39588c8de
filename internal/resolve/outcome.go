package resolve

import (
	"fmt"

	"strata/internal/symbols"
)

// Candidate is one viable (chain position, access form, declaration) triple.
// Inherent marks a declaration whose declaring type is the chain entry
// itself, as opposed to a method declared elsewhere that merely names the
// entry as its receiver.
type Candidate struct {
	ChainIndex int
	Form       symbols.AccessForm
	Decl       symbols.DeclID
	Inherent   bool
}

// OutcomeKind discriminates resolution outcomes. Ambiguity and no-match are
// ordinary values, not errors: they are expected outcomes for plausible but
// incorrect user code.
type OutcomeKind uint8

const (
	// OutcomeNoMatch means no viable candidate existed at any chain position.
	OutcomeNoMatch OutcomeKind = iota
	// OutcomeResolved means exactly one candidate won at the nearest position.
	OutcomeResolved
	// OutcomeAmbiguous means several candidates tied at the nearest position.
	OutcomeAmbiguous
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoMatch:
		return "no match"
	case OutcomeResolved:
		return "resolved"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", k)
	}
}

// Outcome is the result of the resolution policy. Selected carries the chain
// index and access form downstream code generation needs to emit the right
// number of indirections; it is only meaningful for OutcomeResolved. Tied
// lists every candidate at the minimal chain index for OutcomeAmbiguous.
type Outcome struct {
	Kind     OutcomeKind
	Selected Candidate
	Tied     []Candidate
}
