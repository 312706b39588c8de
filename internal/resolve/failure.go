package resolve

import (
	"fmt"

	"strata/internal/diag"
	"strata/internal/source"
	"strata/internal/types"
)

// FailureKind classifies every way a call-site resolution can fail.
type FailureKind uint8

const (
	FailCycle FailureKind = iota
	FailDepthExceeded
	FailAmbiguous
	FailNoMatch
	FailDynUnsafe
	FailLifetime
)

func (k FailureKind) String() string {
	switch k {
	case FailCycle:
		return "capability cycle"
	case FailDepthExceeded:
		return "chain depth exceeded"
	case FailAmbiguous:
		return "ambiguous"
	case FailNoMatch:
		return "no match"
	case FailDynUnsafe:
		return "not object-safe"
	case FailLifetime:
		return "region mismatch"
	default:
		return fmt.Sprintf("FailureKind(%d)", k)
	}
}

// Code maps a failure kind onto its diagnostic code.
func (k FailureKind) Code() diag.Code {
	switch k {
	case FailCycle:
		return diag.ChainCycle
	case FailDepthExceeded:
		return diag.ChainDepthExceeded
	case FailAmbiguous:
		return diag.ResAmbiguous
	case FailNoMatch:
		return diag.ResNoMatch
	case FailDynUnsafe:
		return diag.ResDynUnsafe
	case FailLifetime:
		return diag.ResLifetime
	default:
		return diag.UnknownCode
	}
}

// Failure is the structured payload handed to the host's error-reporting
// layer: declaring types, chain positions and candidate sets, enough to
// render a message and a qualified-call suggestion. This package never
// formats strings; rendering lives in internal/diagfmt.
type Failure struct {
	Kind       FailureKind
	Method     source.StringID
	Subject    types.TypeID // the starting type of the resolution
	Chain      []types.TypeID
	ChainIndex int // violating entry for DynUnsafe/Lifetime, -1 otherwise
	Candidates []Candidate
	Region     types.RegionID // for FailLifetime
	Span       source.Span
}
