package vision

import "testing"

func TestLabelRegions(t *testing.T) {
	// Two separate components on a 5x3 grid:
	//   X X . . X
	//   X . . . X
	//   . . . . X
	mask := []bool{
		true, true, false, false, true,
		true, false, false, false, true,
		false, false, false, false, true,
	}

	regions := labelRegions(mask, 5, 3)
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	total := 0
	for _, r := range regions {
		total += r.area
	}
	if total != 6 {
		t.Errorf("total area = %d, want 6", total)
	}
}

func TestLabelRegionsNoWrapAround(t *testing.T) {
	// Set cells touching opposite row edges must not merge through the
	// flat index space.
	//   X . X
	//   X . X
	mask := []bool{
		true, false, true,
		true, false, true,
	}

	regions := labelRegions(mask, 3, 2)
	if len(regions) != 2 {
		t.Errorf("edge columns merged across rows: got %d regions, want 2", len(regions))
	}
}

func TestLabelRegionsEmpty(t *testing.T) {
	if got := labelRegions(make([]bool, 12), 4, 3); len(got) != 0 {
		t.Errorf("empty mask produced %d regions", len(got))
	}
}
