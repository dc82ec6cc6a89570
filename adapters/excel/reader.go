// Package excel reads PSI matrices from Excel and CSV files. The expected
// layout is a header row of event IDs with the first column holding sample
// (cell) IDs; blank, "NA" and "NaN" cells are the missing marker.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"psimodal/domain/core"
	"psimodal/domain/psi"
	"psimodal/ports"
)

// MatrixReader handles reading Excel and CSV PSI files
type MatrixReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewMatrixReader creates a reader that handles both Excel and CSV files
func NewMatrixReader(filePath string) ports.MatrixReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &MatrixReader{filePath: filePath, fileType: fileType}
}

// ReadMatrix reads the file into a samples x events PSI matrix
func (r *MatrixReader) ReadMatrix() (*psi.Matrix, error) {
	log.Printf("[MatrixReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *MatrixReader) readExcel() (*psi.Matrix, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	log.Printf("[MatrixReader] Sheet1 read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.buildMatrix(rows)
}

func (r *MatrixReader) readCSV() (*psi.Matrix, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	startTime := time.Now()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[MatrixReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.buildMatrix(rows)
}

// buildMatrix converts the raw string grid into a PSI matrix
func (r *MatrixReader) buildMatrix(rows [][]string) (*psi.Matrix, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("PSI file must have a header row and at least one sample row")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("PSI file must have a sample ID column and at least one event column")
	}

	eventIDs := make([]core.EventID, 0, len(header)-1)
	for _, cell := range header[1:] {
		event, err := core.ParseEventID(strings.TrimSpace(cell))
		if err != nil {
			return nil, fmt.Errorf("invalid event header: %w", err)
		}
		eventIDs = append(eventIDs, event)
	}

	sampleIDs := make([]core.SampleID, 0, len(rows)-1)
	cells := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		sample, err := core.ParseSampleID(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sample ID: %w", i+2, err)
		}
		sampleIDs = append(sampleIDs, sample)

		values := make([]float64, len(eventIDs))
		for j := range eventIDs {
			raw := ""
			if j+1 < len(row) {
				raw = strings.TrimSpace(row[j+1])
			}
			v, err := parsePSI(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d, event %s: %w", i+2, eventIDs[j], err)
			}
			values[j] = v
		}
		cells = append(cells, values)
	}

	m := psi.NewMatrix(sampleIDs)
	for j, event := range eventIDs {
		column := make([]float64, len(cells))
		for i := range cells {
			column[i] = cells[i][j]
		}
		if err := m.AddEvent(event, column); err != nil {
			return nil, err
		}
	}

	log.Printf("[MatrixReader] %s file processed (%d samples, %d events)",
		strings.ToUpper(r.fileType), m.NumSamples(), m.NumEvents())
	return m, nil
}

// parsePSI converts one cell to a PSI score, mapping the missing markers to
// NaN and rejecting values outside [0, 1]
func parsePSI(raw string) (float64, error) {
	switch strings.ToUpper(raw) {
	case "", "NA", "NAN", "NULL":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %g", core.ErrValueOutOfRange, v)
	}
	return v, nil
}
