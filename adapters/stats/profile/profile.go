// Package profile computes descriptive statistics per splicing event,
// feeding summary reporting around the modality engine.
package profile

import (
	"math"

	"github.com/montanaflynn/stats"

	"psimodal/domain/core"
	"psimodal/domain/psi"
)

// EventProfile summarizes one event's PSI values across cells
type EventProfile struct {
	EventID     core.EventID `json:"event_id"`
	SampleSize  int          `json:"sample_size"`
	ValidCount  int          `json:"valid_count"`
	MissingRate float64      `json:"missing_rate"`
	Mean        float64      `json:"mean"`
	StdDev      float64      `json:"std_dev"`
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	Median      float64      `json:"median"`
	Q25         float64      `json:"q25"`
	Q75         float64      `json:"q75"`
}

// Profiler computes per-event descriptive statistics
type Profiler struct{}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// ProfileMatrix profiles every event column, in matrix event order
func (p *Profiler) ProfileMatrix(m *psi.Matrix) []EventProfile {
	profiles := make([]EventProfile, m.NumEvents())
	for j := range profiles {
		profiles[j] = p.ProfileEvent(m.EventIDs[j], m.Column(j))
	}
	return profiles
}

// ProfileEvent profiles a single event column. Missing values are excluded
// from every statistic; with no valid values all statistics are NaN.
func (p *Profiler) ProfileEvent(event core.EventID, values []float64) EventProfile {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	prof := EventProfile{
		EventID:     event,
		SampleSize:  len(values),
		ValidCount:  len(valid),
		MissingRate: 1.0,
		Mean:        math.NaN(),
		StdDev:      math.NaN(),
		Min:         math.NaN(),
		Max:         math.NaN(),
		Median:      math.NaN(),
		Q25:         math.NaN(),
		Q75:         math.NaN(),
	}
	if len(values) > 0 {
		prof.MissingRate = 1.0 - float64(len(valid))/float64(len(values))
	}
	if len(valid) == 0 {
		return prof
	}

	if mean, err := stats.Mean(valid); err == nil {
		prof.Mean = mean
	}
	if stdDev, err := stats.StandardDeviation(valid); err == nil {
		prof.StdDev = stdDev
	}
	if min, err := stats.Min(valid); err == nil {
		prof.Min = min
	}
	if max, err := stats.Max(valid); err == nil {
		prof.Max = max
	}
	if median, err := stats.Median(valid); err == nil {
		prof.Median = median
	}
	if q25, err := stats.Percentile(valid, 25); err == nil {
		prof.Q25 = q25
	}
	if q75, err := stats.Percentile(valid, 75); err == nil {
		prof.Q75 = q75
	}
	return prof
}
