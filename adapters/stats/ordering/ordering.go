// Package ordering ranks splicing events along an excluded-to-included axis
// with the "switchy score", a circular-transform statistic used to order
// events for visualization.
package ordering

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"psimodal/domain/psi"
)

// SwitchyScore computes the ordering statistic for one event's PSI values,
// ignoring missing entries:
//
//	(1 - stddev(sin(v*pi))) * (-mean(cos(v*pi)))
//
// The circular transform keeps near-0 and near-1 extremes from looking
// "close" under a plain linear mean, so concentrated low-PSI events land at
// one end and concentrated high-PSI events at the other. With no non-missing
// values the score is NaN.
func SwitchyScore(values []float64) float64 {
	sines := make([]float64, 0, len(values))
	cosines := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sines = append(sines, math.Sin(v*math.Pi))
		cosines = append(cosines, math.Cos(v*math.Pi))
	}
	if len(sines) == 0 {
		return math.NaN()
	}

	stdDev, err := stats.StandardDeviation(sines)
	if err != nil {
		return math.NaN()
	}
	mean, err := stats.Mean(cosines)
	if err != nil {
		return math.NaN()
	}
	return (1 - stdDev) * (-mean)
}

// Order returns the permutation of event column indices that sorts events
// ascending by switchy score. The sort is stable, so equal scores keep
// matrix order; events with no data (NaN score) sort last.
func Order(m *psi.Matrix) []int {
	scores := make([]float64, m.NumEvents())
	for j := range scores {
		scores[j] = SwitchyScore(m.Column(j))
	}

	order := make([]int, m.NumEvents())
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if math.IsNaN(sa) {
			return false
		}
		if math.IsNaN(sb) {
			return true
		}
		return sa < sb
	})
	return order
}
