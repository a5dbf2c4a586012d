package tvs

import "testing"

// TestCacheRoundTrip saves and reloads a band-delta/distance pair and
// checks the values come back unchanged, mirroring the reference
// implementation's cache round-trip test.
func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir, "")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer cache.Close()

	const width = 9
	const angle = 42

	wantDeltas := []int32{-9, -9, -9}
	wantDistances := []float32{0, 1.5, 3.0, 4.5}

	hit, _, _, err := cache.Load(width, angle)
	if err != nil {
		t.Fatalf("Load before Save: %v", err)
	}
	if hit {
		t.Fatal("expected a cold cache to miss before any Save")
	}

	if err := cache.Save(width, angle, wantDeltas, wantDistances); err != nil {
		t.Fatalf("Save: %v", err)
	}

	hit, gotDeltas, gotDistances, err := cache.Load(width, angle)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit after Save")
	}

	if len(gotDeltas) != len(wantDeltas) {
		t.Fatalf("deltas length = %d, want %d", len(gotDeltas), len(wantDeltas))
	}
	for i := range wantDeltas {
		if gotDeltas[i] != wantDeltas[i] {
			t.Errorf("deltas[%d] = %d, want %d", i, gotDeltas[i], wantDeltas[i])
		}
	}

	if len(gotDistances) != len(wantDistances) {
		t.Fatalf("distances length = %d, want %d", len(gotDistances), len(wantDistances))
	}
	for i := range wantDistances {
		if gotDistances[i] != wantDistances[i] {
			t.Errorf("distances[%d] = %v, want %v", i, gotDistances[i], wantDistances[i])
		}
	}
}

// TestCacheMissOnDifferentAngle checks that two distinct sector angles for
// the same DEM width don't collide in the cache.
func TestCacheMissOnDifferentAngle(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir, "")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer cache.Close()

	if err := cache.Save(9, 0, []int32{1}, []float32{1.0}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	hit, _, _, err := cache.Load(9, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if hit {
		t.Fatal("expected a miss for an uncached angle")
	}
}
