package engine

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"psimodal/domain/core"
	"psimodal/domain/modality"
	"psimodal/domain/psi"
	"psimodal/internal"
)

// BootstrapConfig controls the resampling estimator
type BootstrapConfig struct {
	NIter      int     // number of resampling trials
	Thresh     float64 // minimum vote fraction for a consensus assignment
	MinSamples int     // minimum non-missing values per event per trial
}

// DefaultBootstrapConfig returns the standard bootstrap parameters
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{NIter: 100, Thresh: 0.6, MinSamples: 10}
}

// Validate fails fast on malformed bootstrap parameters
func (c BootstrapConfig) Validate() error {
	if c.NIter <= 0 {
		return fmt.Errorf("%w: n_iter must be positive, got %d", core.ErrInvalidBootstrap, c.NIter)
	}
	if c.Thresh <= 0 || c.Thresh > 1 {
		return fmt.Errorf("%w: thresh must be in (0, 1], got %g", core.ErrInvalidBootstrap, c.Thresh)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be at least 1, got %d", core.ErrInvalidBootstrap, c.MinSamples)
	}
	return nil
}

// EstimateBootstrap resamples the cell axis NIter times, reruns the
// single-pass estimator on every trial, and keeps per-event assignments only
// where a vote fraction clears the threshold. Events whose votes split below
// the threshold, or that were dropped from every trial, come back Unassigned.
//
// Trials are independent and run concurrently; the trial row sets are drawn
// from rng up front in a single goroutine, so the same generator state always
// replays the same trials regardless of scheduling.
func (e *Estimator) EstimateBootstrap(ctx context.Context, m *psi.Matrix,
	cfg BootstrapConfig, rng *rand.Rand) (modality.Assignments, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	trials := make([][]int, cfg.NIter)
	for i := range trials {
		trials[i] = trialRows(rng, m.NumSamples())
	}

	votes := make([]modality.Assignments, cfg.NIter)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range trials {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trial := m.Resample(trials[i]).DropSparseEvents(cfg.MinSamples)
			votes[i] = e.Estimate(trial)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assignments := make(modality.Assignments, m.NumEvents())
	unassigned := 0
	for _, event := range m.EventIDs {
		label := consensus(tallyVotes(votes, event), e.table, cfg.Thresh)
		if label == modality.Unassigned {
			unassigned++
		}
		assignments[event] = label
	}
	internal.DefaultLogger.Debug("[Bootstrap] %d trials over %d events, %d unassigned",
		cfg.NIter, m.NumEvents(), unassigned)
	return assignments, nil
}

// trialRows draws one bootstrap trial's row indices. The sample axis is
// permuted and split in half: the first half is a pool resampled with
// replacement to its own size, the second half is carried over unchanged, so
// every trial has exactly the original number of rows.
func trialRows(rng *rand.Rand, n int) []int {
	perm := rng.Perm(n)
	half := n / 2
	if half == 0 {
		return perm
	}

	rows := make([]int, 0, n)
	for i := 0; i < half; i++ {
		rows = append(rows, perm[rng.Intn(half)])
	}
	rows = append(rows, perm[half:]...)
	return rows
}

// tallyVotes counts one event's assignments across trials. Trials where the
// event was dropped or had no data cast no vote.
func tallyVotes(votes []modality.Assignments, event core.EventID) map[modality.Modality]int {
	tally := make(map[modality.Modality]int)
	for _, trial := range votes {
		if m, ok := trial[event]; ok {
			tally[m]++
		}
	}
	return tally
}

// consensus resolves a vote tally to a final assignment. Fractions are taken
// out of valid votes only; modalities at or above thresh qualify; among
// qualifiers the highest fraction wins, with exact ties resolved by reference
// table order. No qualifiers, or no valid votes at all, means Unassigned.
func consensus(tally map[modality.Modality]int, table []modality.Reference, thresh float64) modality.Modality {
	total := 0
	for _, n := range tally {
		total += n
	}
	if total == 0 {
		return modality.Unassigned
	}

	best := modality.Unassigned
	bestFraction := 0.0
	for _, ref := range table {
		fraction := float64(tally[ref.Name]) / float64(total)
		if fraction >= thresh && fraction > bestFraction {
			best = ref.Name
			bestFraction = fraction
		}
	}
	return best
}
