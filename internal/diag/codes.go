package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Registry population
	RegInfo           Code = 1000
	RegOverlap        Code = 1001
	RegFrozenMutation Code = 1002
	RegUnknownOwner   Code = 1003
	RegBadTargetArg   Code = 1004

	// Chain construction
	ChainInfo          Code = 2000
	ChainCycle         Code = 2001
	ChainDepthExceeded Code = 2002

	// Resolution outcomes
	ResInfo      Code = 3000
	ResAmbiguous Code = 3001
	ResNoMatch   Code = 3002
	ResDynUnsafe Code = 3003
	ResLifetime  Code = 3004

	// Manifest / IO
	ManifestInfo        Code = 4000
	ManifestParse       Code = 4001
	ManifestUnknownType Code = 4002
	ManifestBadTypeExpr Code = 4003
	IOLoadFileError     Code = 4100
)

func (c Code) String() string {
	return fmt.Sprintf("SR%04d", uint16(c))
}
