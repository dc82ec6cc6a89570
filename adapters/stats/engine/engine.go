// Package engine estimates the modality of single-cell splicing events from
// PSI scores: events are binned, scored against the canonical modality
// patterns by square-root Jensen-Shannon distance, and assigned the closest
// modality. A bootstrapped mode resamples the cell axis for robust
// assignment under sampling noise.
package engine

import (
	"psimodal/adapters/stats/binning"
	"psimodal/adapters/stats/divergence"
	"psimodal/domain/modality"
	"psimodal/domain/psi"
)

// Config holds the bin-edge configuration for an estimator
type Config struct {
	ExcludedMax float64
	IncludedMin float64
}

// DefaultConfig returns the standard PSI bin edges
func DefaultConfig() Config {
	return Config{ExcludedMax: 0.2, IncludedMin: 0.8}
}

// Estimator assigns modalities to splicing events. The bin edges are fixed
// at construction and immutable thereafter; estimation itself is stateless
// and deterministic.
type Estimator struct {
	edges binning.Edges
	table []modality.Reference
}

// NewEstimator validates the configuration and builds an estimator.
// Invalid bin edges fail here, before any estimation.
func NewEstimator(cfg Config) (*Estimator, error) {
	edges, err := binning.NewEdges(cfg.ExcludedMax, cfg.IncludedMin)
	if err != nil {
		return nil, err
	}
	return &Estimator{
		edges: edges,
		table: modality.Table(),
	}, nil
}

// Edges returns the configured bin edges
func (e *Estimator) Edges() binning.Edges { return e.edges }

// Estimate performs a single deterministic pass: bin every event, score each
// binned distribution against every reference modality, and keep the closest
// one. Events with no usable data are absent from the result rather than
// forced into an arbitrary modality, so bootstrap vote tallies can tell
// "no data" apart from a real assignment.
func (e *Estimator) Estimate(m *psi.Matrix) modality.Assignments {
	binned := binning.Binify(m, e.edges)

	assignments := make(modality.Assignments, len(binned.EventIDs))
	for j, event := range binned.EventIDs {
		if !binned.Defined(j) {
			continue
		}
		if name, ok := e.closest(binned.Fractions[j]); ok {
			assignments[event] = name
		}
	}
	return assignments
}

// Counts estimates the matrix and groups events by assigned modality.
// Events with no usable data were never assigned, so they do not appear.
func (e *Estimator) Counts(m *psi.Matrix) map[modality.Modality]int {
	return e.Estimate(m).Counts()
}

// closest finds the reference modality with minimum sqrt-JSD to the binned
// fractions. Exact ties keep the first row in table order.
func (e *Estimator) closest(fractions []float64) (modality.Modality, bool) {
	best := modality.Modality("")
	bestDist := 0.0
	found := false

	for _, ref := range e.table {
		d := divergence.SqrtJSD(fractions, ref.Pattern)
		if d != d { // NaN: no distribution to compare
			continue
		}
		if !found || d < bestDist {
			best = ref.Name
			bestDist = d
			found = true
		}
	}
	return best, found
}
