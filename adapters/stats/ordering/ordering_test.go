package ordering

import (
	"math"
	"testing"

	"psimodal/domain/core"
	"psimodal/domain/psi"
)

// TestSwitchyScoreOrientation tests that concentrated-low events score
// negative and concentrated-high events score positive
func TestSwitchyScoreOrientation(t *testing.T) {
	low := SwitchyScore([]float64{0.01, 0.02, 0.03, 0.01, 0.02})
	high := SwitchyScore([]float64{0.97, 0.98, 0.99, 0.98, 0.97})

	if low >= 0 {
		t.Errorf("Near-0 event should score negative, got %g", low)
	}
	if high <= 0 {
		t.Errorf("Near-1 event should score positive, got %g", high)
	}
	if low >= high {
		t.Errorf("Expected low (%g) < high (%g)", low, high)
	}
}

// TestSwitchyScoreIgnoresMissing tests NaN filtering
func TestSwitchyScoreIgnoresMissing(t *testing.T) {
	clean := SwitchyScore([]float64{0.1, 0.2, 0.1})
	withNaN := SwitchyScore([]float64{0.1, math.NaN(), 0.2, 0.1, math.NaN()})

	if math.Abs(clean-withNaN) > 1e-12 {
		t.Errorf("Missing entries should not change the score: %g vs %g", clean, withNaN)
	}

	if !math.IsNaN(SwitchyScore([]float64{math.NaN(), math.NaN()})) {
		t.Error("All-missing event should score NaN")
	}
}

// TestSwitchyScoreSpreadPenalty tests that events spread across the range
// score closer to zero than tight extreme events
func TestSwitchyScoreSpreadPenalty(t *testing.T) {
	tight := SwitchyScore([]float64{0.98, 0.99, 0.97, 0.98})
	spread := SwitchyScore([]float64{0.1, 0.5, 0.9, 0.3, 0.7})

	if math.Abs(spread) >= math.Abs(tight) {
		t.Errorf("Spread event (%g) should score nearer zero than tight extreme event (%g)", spread, tight)
	}
}

// TestOrder tests the excluded-before-included permutation
func TestOrder(t *testing.T) {
	m := psi.NewMatrix([]core.SampleID{"c1", "c2", "c3", "c4"})
	add := func(id core.EventID, values []float64) {
		if err := m.AddEvent(id, values); err != nil {
			t.Fatalf("AddEvent(%s) failed: %v", id, err)
		}
	}
	add("high", []float64{0.95, 0.97, 0.99, 0.96})
	add("low", []float64{0.01, 0.03, 0.02, 0.04})
	add("empty", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()})

	order := Order(m)
	if len(order) != 3 {
		t.Fatalf("Expected 3 indices, got %d", len(order))
	}

	// low first, high after, no-data event last
	if m.EventIDs[order[0]] != "low" {
		t.Errorf("Expected low event first, got %s", m.EventIDs[order[0]])
	}
	if m.EventIDs[order[1]] != "high" {
		t.Errorf("Expected high event second, got %s", m.EventIDs[order[1]])
	}
	if m.EventIDs[order[2]] != "empty" {
		t.Errorf("Expected no-data event last, got %s", m.EventIDs[order[2]])
	}
}
