package run

import (
	"fmt"

	"psimodal/domain/core"
	"psimodal/domain/modality"
)

// Params captures everything that determines an estimation result besides
// the matrix contents. Together with the matrix fingerprint it forms the
// memoization key.
type Params struct {
	ExcludedMax  float64 `json:"excluded_max"`
	IncludedMin  float64 `json:"included_min"`
	Bootstrapped bool    `json:"bootstrapped"`
	NIter        int     `json:"n_iter,omitempty"`
	Thresh       float64 `json:"thresh,omitempty"`
	MinSamples   int     `json:"min_samples,omitempty"`
	Seed         int64   `json:"seed,omitempty"`
}

// Key derives the deterministic cache key for a matrix + params pair
func (p Params) Key(fingerprint core.MatrixFingerprint) core.Hash {
	data := fmt.Sprintf("matrix:%s|excluded_max:%g|included_min:%g|bootstrapped:%t|n_iter:%d|thresh:%g|min_samples:%d|seed:%d",
		fingerprint, p.ExcludedMax, p.IncludedMin, p.Bootstrapped, p.NIter, p.Thresh, p.MinSamples, p.Seed)
	return core.NewHash([]byte(data))
}

// Run records one completed modality estimation over a PSI matrix
type Run struct {
	ID          core.RunID                `json:"id"`
	Fingerprint core.MatrixFingerprint    `json:"matrix_fingerprint"`
	Params      Params                    `json:"params"`
	NumSamples  int                       `json:"num_samples"`
	NumEvents   int                       `json:"num_events"`
	Assignments modality.Assignments      `json:"assignments"`
	Counts      map[modality.Modality]int `json:"counts"`
	CreatedAt   core.Timestamp            `json:"created_at"`
}

// New builds a run record from an estimation result
func New(fingerprint core.MatrixFingerprint, params Params, numSamples, numEvents int,
	assignments modality.Assignments) *Run {

	return &Run{
		ID:          core.RunID(core.NewID()),
		Fingerprint: fingerprint,
		Params:      params,
		NumSamples:  numSamples,
		NumEvents:   numEvents,
		Assignments: assignments,
		Counts:      assignments.Counts(),
		CreatedAt:   core.Now(),
	}
}
