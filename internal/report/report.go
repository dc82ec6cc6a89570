package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"psimodal/adapters/stats/ordering"
	"psimodal/domain/core"
	"psimodal/domain/modality"
	"psimodal/domain/psi"
	"psimodal/domain/run"
)

// maxListedEvents caps the per-event section so reports stay readable
// on large matrices
const maxListedEvents = 50

// Markdown renders a run record as a markdown summary: parameters,
// modality counts, and per-event assignments
func Markdown(rec *run.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Modality Estimation Run\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`  \n", rec.ID)
	fmt.Fprintf(&b, "**Matrix:** `%s` (%d samples x %d events)  \n",
		rec.Fingerprint, rec.NumSamples, rec.NumEvents)
	fmt.Fprintf(&b, "**Created:** %s\n\n", rec.CreatedAt.String())

	b.WriteString("## Parameters\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Excluded max | %g |\n", rec.Params.ExcludedMax)
	fmt.Fprintf(&b, "| Included min | %g |\n", rec.Params.IncludedMin)
	fmt.Fprintf(&b, "| Bootstrapped | %t |\n", rec.Params.Bootstrapped)
	if rec.Params.Bootstrapped {
		fmt.Fprintf(&b, "| Iterations | %d |\n", rec.Params.NIter)
		fmt.Fprintf(&b, "| Vote threshold | %g |\n", rec.Params.Thresh)
		fmt.Fprintf(&b, "| Min samples | %d |\n", rec.Params.MinSamples)
		fmt.Fprintf(&b, "| Seed | %d |\n", rec.Params.Seed)
	}
	b.WriteString("\n")

	b.WriteString("## Modality Counts\n\n")
	b.WriteString("| Modality | Events |\n|---|---|\n")
	for _, ref := range modality.Table() {
		if n, ok := rec.Counts[ref.Name]; ok {
			fmt.Fprintf(&b, "| %s | %d |\n", ref.Name, n)
		}
	}
	if n, ok := rec.Counts[modality.Unassigned]; ok {
		fmt.Fprintf(&b, "| %s | %d |\n", modality.Unassigned, n)
	}
	b.WriteString("\n")

	b.WriteString("## Assignments\n\n")
	events := sortedEvents(rec.Assignments)
	listed := len(events)
	if listed > maxListedEvents {
		listed = maxListedEvents
	}
	b.WriteString("| Event | Modality |\n|---|---|\n")
	for _, ev := range events[:listed] {
		fmt.Fprintf(&b, "| %s | %s |\n", ev, rec.Assignments[ev])
	}
	if len(events) > listed {
		fmt.Fprintf(&b, "\n_%d of %d events shown._\n", listed, len(events))
	}

	return b.String()
}

// MarkdownWithOrdering renders the run summary followed by the events
// in switchy-score order, least switchy first. The matrix must be the
// one the run was estimated from.
func MarkdownWithOrdering(rec *run.Run, m *psi.Matrix) string {
	var b strings.Builder
	b.WriteString(Markdown(rec))

	b.WriteString("\n## Switchy Ordering\n\n")
	b.WriteString("| Rank | Event | Score | Modality |\n|---|---|---|---|\n")
	listed := 0
	for rank, col := range ordering.Order(m) {
		if listed >= maxListedEvents {
			break
		}
		ev := m.EventIDs[col]
		score := ordering.SwitchyScore(m.Column(col))
		scoreCell := "n/a"
		if !math.IsNaN(score) {
			scoreCell = fmt.Sprintf("%.4f", score)
		}
		label, ok := rec.Assignments.Get(ev)
		if !ok {
			label = modality.Unassigned
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", rank+1, ev, scoreCell, label)
		listed++
	}

	return b.String()
}

// HTML renders the markdown report as a standalone HTML document
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Modality Estimation Run",
	})
	return markdown.Render(doc, renderer)
}

func sortedEvents(assignments modality.Assignments) []core.EventID {
	events := make([]core.EventID, 0, len(assignments))
	for ev := range assignments {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	return events
}
