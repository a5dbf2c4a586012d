package tvs

import "testing"

func TestNewDEM(t *testing.T) {
	dem, err := NewDEM(9, 1.0, 3)
	if err != nil {
		t.Fatalf("NewDEM: %v", err)
	}

	if dem.MaxLOSAsPoints != 3 {
		t.Errorf("MaxLOSAsPoints = %d, want 3", dem.MaxLOSAsPoints)
	}
	if dem.BandSize != 4 {
		t.Errorf("BandSize = %d, want 4", dem.BandSize)
	}
	if dem.Size() != 81 {
		t.Errorf("Size() = %d, want 81", dem.Size())
	}
	// Points whose full 3-cell neighbourhood fits inside a 9-wide DEM
	// form a 3x3 computable sub-grid.
	if dem.ComputablePointsCount != 9 {
		t.Errorf("ComputablePointsCount = %d, want 9", dem.ComputablePointsCount)
	}
	if dem.TVSWidth != 3 {
		t.Errorf("TVSWidth = %d, want 3", dem.TVSWidth)
	}
}

func TestNewDEMRejectsExcessiveLineOfSight(t *testing.T) {
	_, err := NewDEM(9, 1.0, 100)
	if err == nil {
		t.Fatal("expected an error for a line of sight exceeding the DEM's half-width")
	}
}

func TestTVSIDRoundTrip(t *testing.T) {
	dem, err := NewDEM(9, 1.0, 3)
	if err != nil {
		t.Fatalf("NewDEM: %v", err)
	}

	for tvsID := uint32(0); tvsID < dem.ComputablePointsCount; tvsID++ {
		povID := dem.TVSIDToPoVID(tvsID)
		if got := dem.PoVIDToTVSID(povID); got != tvsID {
			t.Errorf("round trip for tvs_id %d: got %d via pov_id %d", tvsID, got, povID)
		}
	}
}

func TestDEMValidate(t *testing.T) {
	dem, err := NewDEM(9, 1.0, 3)
	if err != nil {
		t.Fatalf("NewDEM: %v", err)
	}

	if err := dem.Validate(); err == nil {
		t.Fatal("expected Validate to fail before elevations are populated")
	}

	dem.Elevations = make([]float32, dem.Size())
	if err := dem.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
