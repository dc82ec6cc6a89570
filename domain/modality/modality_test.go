package modality

import (
	"testing"

	"psimodal/domain/core"
)

// TestTableOrder verifies the reference table keeps its canonical row order,
// which tie-breaks depend on.
func TestTableOrder(t *testing.T) {
	table := Table()

	expected := []Modality{Excluded, Middle, Included, Bimodal, Uniform}
	if len(table) != len(expected) {
		t.Fatalf("Expected %d reference rows, got %d", len(expected), len(table))
	}
	for i, ref := range table {
		if ref.Name != expected[i] {
			t.Errorf("Row %d: expected %s, got %s", i, expected[i], ref.Name)
		}
		if len(ref.Pattern) != NumBins {
			t.Errorf("Row %s: expected %d bins, got %d", ref.Name, NumBins, len(ref.Pattern))
		}
	}
}

// TestTablePatterns verifies the canonical bin-occupancy patterns
func TestTablePatterns(t *testing.T) {
	patterns := map[Modality][]float64{
		Excluded: {1, 0, 0},
		Middle:   {0, 1, 0},
		Included: {0, 0, 1},
		Bimodal:  {1, 0, 1},
		Uniform:  {1, 1, 1},
	}

	for _, ref := range Table() {
		want := patterns[ref.Name]
		for i, v := range ref.Pattern {
			if v != want[i] {
				t.Errorf("%s pattern[%d]: expected %g, got %g", ref.Name, i, want[i], v)
			}
		}
	}
}

// TestParse tests modality label parsing
func TestParse(t *testing.T) {
	for _, valid := range []string{"excluded", "middle", "included", "bimodal", "uniform", "unassigned"} {
		if _, err := Parse(valid); err != nil {
			t.Errorf("Unexpected error for %q: %v", valid, err)
		}
	}
	if _, err := Parse("trimodal"); err == nil {
		t.Error("Expected error for unknown modality")
	}
}

// TestAssignmentsCounts verifies grouping, including that absent events are
// not counted while explicit unassigned ones are.
func TestAssignmentsCounts(t *testing.T) {
	a := Assignments{
		core.EventID("e1"): Excluded,
		core.EventID("e2"): Excluded,
		core.EventID("e3"): Bimodal,
		core.EventID("e4"): Unassigned,
	}

	counts := a.Counts()
	if counts[Excluded] != 2 {
		t.Errorf("Expected 2 excluded, got %d", counts[Excluded])
	}
	if counts[Bimodal] != 1 {
		t.Errorf("Expected 1 bimodal, got %d", counts[Bimodal])
	}
	if counts[Unassigned] != 1 {
		t.Errorf("Expected 1 unassigned, got %d", counts[Unassigned])
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total != len(a) {
		t.Errorf("Counts should cover every assigned event: expected %d, got %d", len(a), total)
	}
}
