package driver

import (
	"crypto/sha256"
	"encoding/binary"

	"strata/internal/registry"
)

// Digest is a SHA-256 value identifying a registry state.
type Digest [32]byte

// Fingerprint hashes every capability declaration, the dyn-safe set, and the
// structural configuration of a registry. Two registries with the same
// fingerprint produce identical chains, so the fingerprint keys the disk
// cache.
func Fingerprint(reg *registry.Registry) Digest {
	h := sha256.New()
	buf := make([]byte, 8)

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		h.Write(buf[:4])
	}
	writeI64 := func(v int64) {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}

	cfg := reg.Config()
	if cfg.DerefReferences {
		writeU32(1)
	} else {
		writeU32(0)
	}
	if cfg.DerefPointers {
		writeU32(1)
	} else {
		writeU32(0)
	}

	decls, dynSafe := reg.Snapshot()
	writeU32(uint32(len(decls)))
	for _, d := range decls {
		writeU32(uint32(d.Owner))
		writeU32(uint32(d.Target))
		writeI64(int64(d.TargetArg))
	}
	writeU32(uint32(len(dynSafe)))
	for _, t := range dynSafe {
		writeU32(uint32(t))
	}

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
