package report

import (
	"strings"
	"testing"

	"psimodal/domain/core"
	"psimodal/domain/modality"
	"psimodal/domain/psi"
	"psimodal/domain/run"
)

func testRun(t *testing.T) (*run.Run, *psi.Matrix) {
	t.Helper()
	m := psi.NewMatrix([]core.SampleID{"c1", "c2", "c3"})
	if err := m.AddEvent("ev_low", []float64{0.0, 0.1, 0.05}); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if err := m.AddEvent("ev_high", []float64{0.9, 1.0, 0.95}); err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	assignments := modality.Assignments{
		"ev_low":  modality.Excluded,
		"ev_high": modality.Included,
	}
	rec := run.New(m.Fingerprint(), run.Params{ExcludedMax: 0.2, IncludedMin: 0.8},
		m.NumSamples(), m.NumEvents(), assignments)
	return rec, m
}

func TestMarkdownContainsSummary(t *testing.T) {
	rec, _ := testRun(t)
	md := Markdown(rec)

	for _, want := range []string{
		"# Modality Estimation Run",
		string(rec.ID),
		"| Excluded max | 0.2 |",
		"| excluded | 1 |",
		"| included | 1 |",
		"| ev_low | excluded |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected report to contain %q", want)
		}
	}

	if strings.Contains(md, "Iterations") {
		t.Error("single-pass report should not show bootstrap parameters")
	}
}

func TestMarkdownBootstrapParams(t *testing.T) {
	rec, _ := testRun(t)
	rec.Params.Bootstrapped = true
	rec.Params.NIter = 100
	rec.Params.Thresh = 0.6
	md := Markdown(rec)

	if !strings.Contains(md, "| Iterations | 100 |") {
		t.Error("bootstrap report should show iteration count")
	}
	if !strings.Contains(md, "| Vote threshold | 0.6 |") {
		t.Error("bootstrap report should show vote threshold")
	}
}

func TestMarkdownWithOrdering(t *testing.T) {
	rec, m := testRun(t)
	md := MarkdownWithOrdering(rec, m)

	if !strings.Contains(md, "## Switchy Ordering") {
		t.Fatal("expected ordering section")
	}
	// Both events are all-low or all-high with small spread; both must
	// appear with a numeric score
	if !strings.Contains(md, "ev_low") || !strings.Contains(md, "ev_high") {
		t.Error("expected both events in the ordering table")
	}
	if strings.Contains(md, "| n/a |") {
		t.Error("fully observed events should have numeric scores")
	}
}

func TestHTMLRendersTables(t *testing.T) {
	rec, _ := testRun(t)
	out := string(HTML(Markdown(rec)))

	if !strings.Contains(out, "<table>") {
		t.Error("expected rendered HTML tables")
	}
	if !strings.Contains(out, "<html>") {
		t.Error("expected a complete HTML page")
	}
}
