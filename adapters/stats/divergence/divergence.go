// Package divergence provides the square-root Jensen-Shannon distance used
// to score binned PSI distributions against canonical modality patterns.
package divergence

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MaxSqrtJSD is the upper bound of SqrtJSD under the natural-log convention:
// sqrt(ln 2), reached by distributions with disjoint support.
var MaxSqrtJSD = math.Sqrt(math.Ln2)

// SqrtJSD computes the square root of the Jensen-Shannon divergence between
// two mass vectors over the same bins. Inputs need not be normalized: the
// canonical modality patterns are raw 0/1 masses, so each vector is first
// scaled to sum to 1. Zero-probability terms contribute nothing to the KL
// sums.
//
// The square root is taken because it is a true metric (it satisfies the
// triangle inequality), so argmin ordering across modalities is valid.
//
// A vector that sums to zero or contains NaN has no distribution; the result
// is NaN and the caller decides what "no assignment possible" means.
func SqrtJSD(p, q []float64) float64 {
	pn, ok := normalize(p)
	if !ok {
		return math.NaN()
	}
	qn, ok := normalize(q)
	if !ok {
		return math.NaN()
	}
	jsd := stat.JensenShannon(pn, qn)
	// Guard tiny negative values from floating-point cancellation
	if jsd < 0 {
		jsd = 0
	}
	return math.Sqrt(jsd)
}

// normalize scales a mass vector to a probability distribution.
// Returns false for degenerate input (zero mass, NaN, or negative mass).
func normalize(masses []float64) ([]float64, bool) {
	total := floats.Sum(masses)
	if math.IsNaN(total) || total <= 0 {
		return nil, false
	}
	out := make([]float64, len(masses))
	for i, v := range masses {
		if v < 0 {
			return nil, false
		}
		out[i] = v / total
	}
	return out, true
}
