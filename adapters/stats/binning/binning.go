// Package binning discretizes PSI matrices into per-event bin-occupancy
// fractions, the input representation for modality divergence scoring.
package binning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"psimodal/domain/core"
	"psimodal/domain/psi"
)

// Edges is the immutable 3-bin PSI configuration (0, excluded_max,
// included_min, 1). Fixed at estimator construction.
type Edges struct {
	excludedMax float64
	includedMin float64
}

// NewEdges validates and builds PSI bin edges.
// Requires 0 <= excludedMax < includedMin <= 1.
func NewEdges(excludedMax, includedMin float64) (Edges, error) {
	if math.IsNaN(excludedMax) || math.IsNaN(includedMin) {
		return Edges{}, core.NewBinEdgeError(excludedMax, includedMin)
	}
	if excludedMax < 0 || includedMin > 1 || excludedMax >= includedMin {
		return Edges{}, core.NewBinEdgeError(excludedMax, includedMin)
	}
	return Edges{excludedMax: excludedMax, includedMin: includedMin}, nil
}

// ExcludedMax returns the upper edge of the excluded bin
func (e Edges) ExcludedMax() float64 { return e.excludedMax }

// IncludedMin returns the lower edge of the included bin
func (e Edges) IncludedMin() float64 { return e.includedMin }

// Bounds returns the full ordered edge sequence (0, excluded_max,
// included_min, 1): 4 edges defining 3 bins.
func (e Edges) Bounds() []float64 {
	return []float64{0, e.excludedMax, e.includedMin, 1}
}

func (e Edges) String() string {
	return fmt.Sprintf("(0, %g, %g, 1)", e.excludedMax, e.includedMin)
}

// Distribution holds the per-event binned fractions of a matrix: one row of
// NumBins fractions per event, in matrix event order. Rows for events with
// no usable data are all-NaN so downstream divergence yields "no assignment
// possible" instead of a false excluded match.
type Distribution struct {
	EventIDs  []core.EventID
	Fractions [][]float64 // [event][bin]
}

// Defined reports whether the event at index has a usable distribution
func (d *Distribution) Defined(event int) bool {
	return !math.IsNaN(d.Fractions[event][0])
}

// Binify bins every event column of a samples x events matrix.
func Binify(m *psi.Matrix, edges Edges) *Distribution {
	bounds := edges.Bounds()
	out := &Distribution{
		EventIDs:  m.EventIDs,
		Fractions: make([][]float64, m.NumEvents()),
	}
	for j := 0; j < m.NumEvents(); j++ {
		out.Fractions[j] = BinifyColumn(m.Column(j), bounds)
	}
	return out
}

// BinifyColumn counts one event's non-missing values into half-open bins and
// normalizes to fractions. Bin semantics follow the PSI convention: the first
// bin is closed on both ends [b0, b1]; every later bin is (b_i, b_i+1].
// NaN values and values outside [first, last] are not counted and do not
// enter the denominator. With zero counted values, the result is all-NaN.
func BinifyColumn(values []float64, bounds []float64) []float64 {
	numBins := len(bounds) - 1
	counts := make([]float64, numBins)

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		bin, ok := locate(v, bounds)
		if !ok {
			continue
		}
		counts[bin]++
	}

	total := floats.Sum(counts)
	fractions := make([]float64, numBins)
	if total == 0 {
		for i := range fractions {
			fractions[i] = math.NaN()
		}
		return fractions
	}
	for i, c := range counts {
		fractions[i] = c / total
	}
	return fractions
}

// locate finds the bin index for value v, or false when out of range
func locate(v float64, bounds []float64) (int, bool) {
	if v < bounds[0] || v > bounds[len(bounds)-1] {
		return 0, false
	}
	if v <= bounds[1] {
		return 0, true
	}
	for i := 1; i < len(bounds)-1; i++ {
		if v > bounds[i] && v <= bounds[i+1] {
			return i, true
		}
	}
	return 0, false
}
