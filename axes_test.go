package tvs

import "testing"

func TestAxesWidth5ZeroDegrees(t *testing.T) {
	axes := NewAxes(5, 0)

	if len(axes.Distances) != 25 {
		t.Fatalf("len(Distances) = %d, want 25", len(axes.Distances))
	}

	if axes.Distances[0] != 0 {
		t.Errorf("Distances[0] = %v, want 0", axes.Distances[0])
	}

	const want24 = 4.00007
	if diff := axes.Distances[24] - want24; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("Distances[24] = %v, want ~%v", axes.Distances[24], want24)
	}

	wantSectorOrdered := []uint32{
		20, 15, 10, 5, 0,
		21, 16, 11, 6, 1,
		22, 17, 12, 7, 2,
		23, 18, 13, 8, 3,
		24, 19, 14, 9, 4,
	}
	for i, want := range wantSectorOrdered {
		if axes.SectorOrdered[i] != want {
			t.Errorf("SectorOrdered[%d] = %d, want %d", i, axes.SectorOrdered[i], want)
		}
	}

	// sight_ordered_map is the identity at theta=0 (+ shift): cells are
	// already in ascending x-projected order.
	for i := range axes.SightOrderedMap {
		if axes.SightOrderedMap[i] != uint32(i) {
			t.Errorf("SightOrderedMap[%d] = %d, want %d", i, axes.SightOrderedMap[i], i)
		}
	}
}

func TestSightOrderedMapSortsDistances(t *testing.T) {
	axes := NewAxes(9, 37)

	sightDistances := calculateDistances(9, axes.Angle)

	inverse := make([]uint32, len(axes.SightOrderedMap))
	for demID, rank := range axes.SightOrderedMap {
		inverse[rank] = uint32(demID)
	}

	for i := 1; i < len(inverse); i++ {
		if sightDistances[inverse[i-1]] > sightDistances[inverse[i]] {
			t.Fatalf("inverse permutation does not sort distances ascending at rank %d", i)
		}
	}
}
