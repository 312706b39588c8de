package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"strata/internal/chain"
	"strata/internal/types"
)

// Current schema version - increment when CachePayload format changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache persists memoized receiver chains between runs, keyed by the
// registry fingerprint. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the serialized form of a chain snapshot.
type CachePayload struct {
	// Schema version for safe invalidation when the format changes
	Schema uint16

	// Parallel slices: Starts[i] walks to Chains[i]
	Starts []uint32
	Chains [][]uint32
}

// OpenDiskCache initializes a disk cache at the standard location
// ($XDG_CACHE_HOME or ~/.cache) under the given app name.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt uses an explicit directory, mainly for tests.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "chains", hexKey+".mp")
}

// PutChains serializes a chain snapshot under the registry fingerprint.
// The write is atomic: encode to a temp file, then rename.
func (c *DiskCache) PutChains(key Digest, chains map[types.TypeID][]types.TypeID) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := &CachePayload{Schema: diskCacheSchemaVersion}
	for start, entries := range chains {
		payload.Starts = append(payload.Starts, uint32(start))
		row := make([]uint32, len(entries))
		for i, e := range entries {
			row[i] = uint32(e)
		}
		payload.Chains = append(payload.Chains, row)
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) //nolint:errcheck // best-effort cleanup after rename

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// GetChains loads a chain snapshot for the fingerprint, suitable for
// chain.Builder.Seed. Returns (nil, false, nil) on a cache miss or a schema
// mismatch.
func (c *DiskCache) GetChains(key Digest) (map[types.TypeID][]types.TypeID, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion || len(payload.Starts) != len(payload.Chains) {
		return nil, false, nil
	}

	out := make(map[types.TypeID][]types.TypeID, len(payload.Starts))
	for i, start := range payload.Starts {
		row := make([]types.TypeID, len(payload.Chains[i]))
		for j, e := range payload.Chains[i] {
			row[j] = types.TypeID(e)
		}
		out[types.TypeID(start)] = row
	}
	return out, true, nil
}

// SeedBuilder loads cached chains into a builder if an entry exists.
func (c *DiskCache) SeedBuilder(key Digest, b *chain.Builder) error {
	chains, ok, err := c.GetChains(key)
	if err != nil || !ok {
		return err
	}
	b.Seed(chains)
	return nil
}
