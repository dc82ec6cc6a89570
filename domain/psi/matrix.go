package psi

import (
	"encoding/binary"
	"fmt"
	"math"

	"psimodal/domain/core"
)

// Matrix is the canonical samples x events PSI score object. Rows are single
// cells, columns are splicing events, cells are percent-spliced-in values in
// [0, 1] with NaN as the missing marker. Estimators only read a Matrix and
// produce derived structures; they never mutate it.
type Matrix struct {
	Data      [][]float64     // rows=samples, cols=events
	SampleIDs []core.SampleID // row identifiers
	EventIDs  []core.EventID  // column identifiers
}

// NewMatrix builds an empty matrix for the given samples
func NewMatrix(sampleIDs []core.SampleID) *Matrix {
	data := make([][]float64, len(sampleIDs))
	for i := range data {
		data[i] = make([]float64, 0, 4)
	}
	return &Matrix{
		Data:      data,
		SampleIDs: sampleIDs,
	}
}

// AddEvent appends one event column. Values must align with SampleIDs;
// use math.NaN() for missing cells.
func (m *Matrix) AddEvent(event core.EventID, values []float64) error {
	if len(values) != len(m.SampleIDs) {
		return fmt.Errorf("%w: event %s has %d values for %d samples",
			core.ErrShapeMismatch, event, len(values), len(m.SampleIDs))
	}
	for i, v := range values {
		if !math.IsNaN(v) && (v < 0 || v > 1) {
			return fmt.Errorf("%w: event %s sample %s value %g",
				core.ErrValueOutOfRange, event, m.SampleIDs[i], v)
		}
		m.Data[i] = append(m.Data[i], v)
	}
	m.EventIDs = append(m.EventIDs, event)
	return nil
}

// Validate ensures the matrix is internally consistent
func (m *Matrix) Validate() error {
	if len(m.Data) != len(m.SampleIDs) {
		return core.NewValidationError("sample_ids", "length mismatch with data rows")
	}
	cols := len(m.EventIDs)
	for i, row := range m.Data {
		if len(row) != cols {
			return core.NewValidationError("data",
				fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), cols))
		}
	}
	return nil
}

// NumSamples returns the number of cells (rows)
func (m *Matrix) NumSamples() int { return len(m.SampleIDs) }

// NumEvents returns the number of splicing events (columns)
func (m *Matrix) NumEvents() int { return len(m.EventIDs) }

// EventIndex returns the column index for an event ID
func (m *Matrix) EventIndex(event core.EventID) (int, bool) {
	for i, id := range m.EventIDs {
		if id == event {
			return i, true
		}
	}
	return -1, false
}

// EventData returns a copy of one event column
func (m *Matrix) EventData(event core.EventID) ([]float64, bool) {
	col, ok := m.EventIndex(event)
	if !ok {
		return nil, false
	}
	return m.Column(col), true
}

// Column returns a copy of the column at index col
func (m *Matrix) Column(col int) []float64 {
	values := make([]float64, len(m.Data))
	for i, row := range m.Data {
		values[i] = row[col]
	}
	return values
}

// ValidCount returns the number of non-missing values in column col
func (m *Matrix) ValidCount(col int) int {
	n := 0
	for _, row := range m.Data {
		if !math.IsNaN(row[col]) {
			n++
		}
	}
	return n
}

// Resample projects the matrix onto the given row indices, in order.
// Indices may repeat, which is how bootstrap trials draw with replacement.
func (m *Matrix) Resample(rows []int) *Matrix {
	sampleIDs := make([]core.SampleID, len(rows))
	data := make([][]float64, len(rows))
	for i, r := range rows {
		sampleIDs[i] = m.SampleIDs[r]
		row := make([]float64, len(m.Data[r]))
		copy(row, m.Data[r])
		data[i] = row
	}
	return &Matrix{Data: data, SampleIDs: sampleIDs, EventIDs: m.EventIDs}
}

// Subset returns a new matrix restricted to the given samples and events.
// Nil selectors keep the full axis. Unknown IDs are reported, not skipped.
func (m *Matrix) Subset(sampleIDs []core.SampleID, eventIDs []core.EventID) (*Matrix, error) {
	rows := make([]int, 0, len(m.SampleIDs))
	if sampleIDs == nil {
		for i := range m.SampleIDs {
			rows = append(rows, i)
		}
	} else {
		byID := make(map[core.SampleID]int, len(m.SampleIDs))
		for i, id := range m.SampleIDs {
			byID[id] = i
		}
		for _, id := range sampleIDs {
			i, ok := byID[id]
			if !ok {
				return nil, core.NewNotFoundError("sample", id.String())
			}
			rows = append(rows, i)
		}
	}

	cols := make([]int, 0, len(m.EventIDs))
	if eventIDs == nil {
		for j := range m.EventIDs {
			cols = append(cols, j)
		}
	} else {
		for _, id := range eventIDs {
			j, ok := m.EventIndex(id)
			if !ok {
				return nil, core.NewNotFoundError("event", id.String())
			}
			cols = append(cols, j)
		}
	}

	out := &Matrix{
		Data:      make([][]float64, len(rows)),
		SampleIDs: make([]core.SampleID, len(rows)),
		EventIDs:  make([]core.EventID, len(cols)),
	}
	for j, c := range cols {
		out.EventIDs[j] = m.EventIDs[c]
	}
	for i, r := range rows {
		out.SampleIDs[i] = m.SampleIDs[r]
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = m.Data[r][c]
		}
		out.Data[i] = row
	}
	return out, nil
}

// DropSparseEvents returns a matrix keeping only events with at least
// minSamples non-missing values. minSamples of 1 drops all-missing events.
func (m *Matrix) DropSparseEvents(minSamples int) *Matrix {
	keep := make([]int, 0, len(m.EventIDs))
	for j := range m.EventIDs {
		if m.ValidCount(j) >= minSamples {
			keep = append(keep, j)
		}
	}

	out := &Matrix{
		Data:      make([][]float64, len(m.Data)),
		SampleIDs: m.SampleIDs,
		EventIDs:  make([]core.EventID, len(keep)),
	}
	for j, c := range keep {
		out.EventIDs[j] = m.EventIDs[c]
	}
	for i, row := range m.Data {
		newRow := make([]float64, len(keep))
		for j, c := range keep {
			newRow[j] = row[c]
		}
		out.Data[i] = newRow
	}
	return out
}

// Fingerprint derives a content hash of the matrix: identical samples, events
// and cell values yield identical fingerprints. Used as the memoization key
// so caches invalidate on content change rather than pointer identity.
func (m *Matrix) Fingerprint() core.MatrixFingerprint {
	buf := make([]byte, 0, 64+len(m.Data)*len(m.EventIDs)*8)
	for _, id := range m.SampleIDs {
		buf = append(buf, id...)
		buf = append(buf, 0)
	}
	for _, id := range m.EventIDs {
		buf = append(buf, id...)
		buf = append(buf, 0)
	}
	cell := make([]byte, 8)
	for _, row := range m.Data {
		for _, v := range row {
			// Float64bits keeps NaN cells stable across hashes
			binary.LittleEndian.PutUint64(cell, math.Float64bits(v))
			buf = append(buf, cell...)
		}
	}
	return core.NewMatrixFingerprint(buf)
}
