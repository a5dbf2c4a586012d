package output

import "testing"

// TestReconstructASCIITwoRingPairs exercises the ring-data parser directly,
// independent of the kernel, against a hand-built ring buffer for a 3x3 DEM
// (ids 0..8, row-major) with one computable point (the centre, id 4).
//
// Kernel id 0 (matching the requested PoV) carries two ring pairs: an
// implicit opening at the PoV itself closing at id 2, then a second ring
// opening at id 6 and closing at id 8. Kernel id 1 belongs to a different
// PoV and must be ignored entirely.
func TestReconstructASCIITwoRingPairs(t *testing.T) {
	const demWidth = 3
	const demSize = 9
	const computablePoints = 1
	const reserved = 5
	const povID = 4

	ringData := make([]uint32, computablePoints*2*reserved)
	// Kernel id 0: ring_count=4 (2 pairs), pov=4, close=2, open=6, close=8.
	ringData[0*reserved+0] = 4
	ringData[0*reserved+1] = povID
	ringData[0*reserved+2] = 2
	ringData[0*reserved+3] = 6
	ringData[0*reserved+4] = 8
	// Kernel id 1: a different PoV (id 7), single degenerate self-closing
	// ring — must not affect the reconstruction for pov_id 4. Every real
	// kernel invocation writes at least this much (the guaranteed PoV
	// opening plus a closing), so this is a realistic minimal band.
	ringData[1*reserved+0] = 2
	ringData[1*reserved+1] = 7
	ringData[1*reserved+2] = 7

	rows, err := ReconstructASCII(demWidth, demSize, computablePoints, povID, [][]uint32{ringData}, reserved)
	if err != nil {
		t.Fatalf("ReconstructASCII: %v", err)
	}

	want := []string{
		". . -",
		". o .",
		"+ . -",
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestReconstructASCIIUnrelatedPoVIgnored(t *testing.T) {
	const demWidth = 3
	const demSize = 9
	const computablePoints = 1
	const reserved = 4

	ringData := make([]uint32, computablePoints*2*reserved)
	ringData[0*reserved+0] = 2
	ringData[0*reserved+1] = 4
	ringData[0*reserved+2] = 7
	ringData[1*reserved+0] = 2
	ringData[1*reserved+1] = 4
	ringData[1*reserved+2] = 1

	// Requesting a PoV id that never appears in the ring data should leave
	// every cell unmarked except the requested PoV itself.
	rows, err := ReconstructASCII(demWidth, demSize, computablePoints, 0, [][]uint32{ringData}, reserved)
	if err != nil {
		t.Fatalf("ReconstructASCII: %v", err)
	}

	want := []string{
		"o . .",
		". . .",
		". . .",
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}
