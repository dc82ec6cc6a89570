package binning

import (
	"math"
	"testing"

	"psimodal/domain/core"
	"psimodal/domain/psi"
)

// TestNewEdgesValidation tests fail-fast edge configuration
func TestNewEdgesValidation(t *testing.T) {
	tests := []struct {
		excludedMax, includedMin float64
		valid                    bool
	}{
		{0.2, 0.8, true},
		{0, 1, true},
		{0.5, 0.500001, true},
		{0.8, 0.2, false}, // reversed
		{0.5, 0.5, false}, // not strictly increasing
		{-0.1, 0.8, false},
		{0.2, 1.1, false},
		{math.NaN(), 0.8, false},
	}

	for _, test := range tests {
		_, err := NewEdges(test.excludedMax, test.includedMin)
		if test.valid && err != nil {
			t.Errorf("(%g, %g): unexpected error %v", test.excludedMax, test.includedMin, err)
		}
		if !test.valid && err == nil {
			t.Errorf("(%g, %g): expected configuration error", test.excludedMax, test.includedMin)
		}
	}
}

// TestBinifyColumnPlacement tests the half-open bin semantics: the first bin
// is closed on both ends, later bins are lower-exclusive and upper-inclusive.
func TestBinifyColumnPlacement(t *testing.T) {
	edges, err := NewEdges(0.2, 0.8)
	if err != nil {
		t.Fatalf("NewEdges failed: %v", err)
	}
	bounds := edges.Bounds()

	tests := []struct {
		value float64
		bin   int
	}{
		{0.0, 0},
		{0.1, 0},
		{0.2, 0}, // boundary belongs to the excluded bin
		{0.21, 1},
		{0.5, 1},
		{0.8, 1}, // upper-inclusive middle bin
		{0.81, 2},
		{1.0, 2},
	}

	for _, test := range tests {
		fractions := BinifyColumn([]float64{test.value}, bounds)
		for i, f := range fractions {
			want := 0.0
			if i == test.bin {
				want = 1.0
			}
			if f != want {
				t.Errorf("value %g: bin %d fraction = %g, want %g", test.value, i, f, want)
			}
		}
	}
}

// TestBinifyColumnFractionsSum tests normalization over non-missing values
func TestBinifyColumnFractionsSum(t *testing.T) {
	edges, _ := NewEdges(0.2, 0.8)
	values := []float64{0.05, 0.1, 0.5, 0.9, math.NaN(), 0.95, math.NaN()}

	fractions := BinifyColumn(values, edges.Bounds())

	sum := 0.0
	for _, f := range fractions {
		sum += f
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("Fractions should sum to 1, got %g", sum)
	}
	// 5 counted values: 2 excluded, 1 middle, 2 included
	if fractions[0] != 0.4 || fractions[1] != 0.2 || fractions[2] != 0.4 {
		t.Errorf("Unexpected fractions: %v", fractions)
	}
}

// TestBinifyColumnAllMissing tests NaN propagation for empty events
func TestBinifyColumnAllMissing(t *testing.T) {
	edges, _ := NewEdges(0.2, 0.8)

	fractions := BinifyColumn([]float64{math.NaN(), math.NaN()}, edges.Bounds())
	for i, f := range fractions {
		if !math.IsNaN(f) {
			t.Errorf("bin %d: expected NaN for all-missing event, got %g", i, f)
		}
	}
}

// TestBinifyMatrix tests whole-matrix binning and the Defined marker
func TestBinifyMatrix(t *testing.T) {
	edges, _ := NewEdges(0.2, 0.8)

	m := psi.NewMatrix([]core.SampleID{"c1", "c2", "c3", "c4"})
	if err := m.AddEvent("low", []float64{0.0, 0.1, 0.05, 0.15}); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if err := m.AddEvent("empty", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	binned := Binify(m, edges)

	if len(binned.Fractions) != 2 {
		t.Fatalf("Expected 2 event rows, got %d", len(binned.Fractions))
	}
	if !binned.Defined(0) {
		t.Error("Expected low event to have a defined distribution")
	}
	if binned.Fractions[0][0] != 1.0 {
		t.Errorf("Expected all mass in excluded bin, got %v", binned.Fractions[0])
	}
	if binned.Defined(1) {
		t.Error("All-missing event must be undefined, not silently zero")
	}
}
