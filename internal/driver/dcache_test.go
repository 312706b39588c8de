package driver

import (
	"testing"

	"strata/internal/registry"
	"strata/internal/source"
	"strata/internal/types"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	key := Digest{1, 2, 3}
	chains := map[types.TypeID][]types.TypeID{
		7: {7, 9, 11},
		8: {8},
	}
	if err := cache.PutChains(key, chains); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := cache.GetChains(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || len(got[7]) != 3 || got[7][2] != 11 {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if _, ok, err := cache.GetChains(Digest{9}); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestFingerprintTracksRegistryContents(t *testing.T) {
	tys := types.NewInterner()
	strs := source.NewInterner()
	box := tys.RegisterNamed(strs.Intern("Box"), source.Span{}, nil, nil)
	val := tys.RegisterNamed(strs.Intern("Value"), source.Span{}, nil, nil)

	regA := registry.New(tys)
	if err := regA.Register(registry.CapabilityDecl{Owner: box, Target: val, TargetArg: -1}); err != nil {
		t.Fatalf("register: %v", err)
	}
	regA.Freeze()

	regB := registry.New(tys)
	if err := regB.Register(registry.CapabilityDecl{Owner: box, Target: val, TargetArg: -1}); err != nil {
		t.Fatalf("register: %v", err)
	}
	regB.Freeze()

	if Fingerprint(regA) != Fingerprint(regB) {
		t.Fatalf("identical registries must share a fingerprint")
	}

	regC := registry.New(tys)
	if err := regC.Register(registry.CapabilityDecl{Owner: box, Target: val, TargetArg: -1}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := regC.RegisterDynSafe(box); err != nil {
		t.Fatalf("register dyn safe: %v", err)
	}
	regC.Freeze()
	if Fingerprint(regA) == Fingerprint(regC) {
		t.Fatalf("dyn-safe facts must change the fingerprint")
	}
}
