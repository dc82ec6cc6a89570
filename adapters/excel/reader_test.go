package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"psimodal/domain/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "psi.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

// TestReadMatrixCSV tests the header/sample layout with missing markers
func TestReadMatrixCSV(t *testing.T) {
	path := writeCSV(t, "cell,event-a,event-b\ncell-1,0.1,0.9\ncell-2,NA,0.8\ncell-3,0.2,\n")

	m, err := NewMatrixReader(path).ReadMatrix()
	if err != nil {
		t.Fatalf("ReadMatrix failed: %v", err)
	}

	if m.NumSamples() != 3 || m.NumEvents() != 2 {
		t.Fatalf("Expected 3x2 matrix, got %dx%d", m.NumSamples(), m.NumEvents())
	}
	if m.SampleIDs[0] != "cell-1" || m.EventIDs[1] != "event-b" {
		t.Errorf("Unexpected labels: %v / %v", m.SampleIDs, m.EventIDs)
	}

	a, _ := m.EventData(core.EventID("event-a"))
	if a[0] != 0.1 || !math.IsNaN(a[1]) || a[2] != 0.2 {
		t.Errorf("event-a: unexpected values %v", a)
	}
	b, _ := m.EventData(core.EventID("event-b"))
	if b[1] != 0.8 || !math.IsNaN(b[2]) {
		t.Errorf("event-b: unexpected values %v", b)
	}
}

// TestReadMatrixRejectsOutOfRange tests PSI range validation at ingest
func TestReadMatrixRejectsOutOfRange(t *testing.T) {
	path := writeCSV(t, "cell,event-a\ncell-1,1.2\n")

	if _, err := NewMatrixReader(path).ReadMatrix(); err == nil {
		t.Error("Expected out-of-range error for PSI 1.2")
	}
}

// TestReadMatrixRejectsGarbage tests non-numeric cell handling
func TestReadMatrixRejectsGarbage(t *testing.T) {
	path := writeCSV(t, "cell,event-a\ncell-1,abc\n")

	if _, err := NewMatrixReader(path).ReadMatrix(); err == nil {
		t.Error("Expected parse error for non-numeric cell")
	}
}

// TestReadMatrixMissingFile tests the not-found path
func TestReadMatrixMissingFile(t *testing.T) {
	if _, err := NewMatrixReader("/nonexistent/psi.csv").ReadMatrix(); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestReadMatrixHeaderOnly tests shape requirements
func TestReadMatrixHeaderOnly(t *testing.T) {
	path := writeCSV(t, "cell,event-a\n")

	if _, err := NewMatrixReader(path).ReadMatrix(); err == nil {
		t.Error("Expected error for file without sample rows")
	}
}
