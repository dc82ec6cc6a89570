package modality

import (
	"fmt"

	"psimodal/domain/core"
)

// Modality is the categorical shape of a splicing event's PSI distribution
// across single cells.
type Modality string

const (
	Excluded Modality = "excluded"
	Middle   Modality = "middle"
	Included Modality = "included"
	Bimodal  Modality = "bimodal"
	Uniform  Modality = "uniform"

	// Unassigned is only produced by the bootstrapped estimator when no
	// modality clears the consensus threshold for an event.
	Unassigned Modality = "unassigned"
)

// Reference pairs a modality with its canonical bin-occupancy pattern.
// Patterns are raw 0/1 masses, not probability distributions; the divergence
// metric normalizes them.
type Reference struct {
	Name    Modality
	Pattern []float64 // one mass per bin: [excluded, middle, included]
}

// Table is the fixed reference table. It is an ordered slice, not a map:
// the row order is the deterministic tie-break for both the single-pass
// argmin and the bootstrap consensus argmax.
func Table() []Reference {
	return []Reference{
		{Name: Excluded, Pattern: []float64{1, 0, 0}},
		{Name: Middle, Pattern: []float64{0, 1, 0}},
		{Name: Included, Pattern: []float64{0, 0, 1}},
		{Name: Bimodal, Pattern: []float64{1, 0, 1}},
		{Name: Uniform, Pattern: []float64{1, 1, 1}},
	}
}

// NumBins is the width of every reference pattern.
const NumBins = 3

// Parse validates a modality label, including unassigned.
func Parse(s string) (Modality, error) {
	switch Modality(s) {
	case Excluded, Middle, Included, Bimodal, Uniform, Unassigned:
		return Modality(s), nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

// Assignments maps events to modality labels. Events with no usable data in
// a single-pass estimate are simply absent; the bootstrapped estimator
// instead records them as Unassigned.
type Assignments map[core.EventID]Modality

// Counts tallies group sizes per modality. Absent events contribute nothing,
// so single-pass no-data events vanish from counts while bootstrapped
// no-data events show up under Unassigned.
func (a Assignments) Counts() map[Modality]int {
	counts := make(map[Modality]int)
	for _, m := range a {
		counts[m]++
	}
	return counts
}

// Get returns the assignment for an event and whether one exists.
func (a Assignments) Get(event core.EventID) (Modality, bool) {
	m, ok := a[event]
	return m, ok
}
