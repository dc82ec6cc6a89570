package api

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"psimodal/app"
	"psimodal/domain/core"
	"psimodal/domain/psi"
	"psimodal/domain/run"
	"psimodal/internal/report"
)

// estimateRequest is the JSON body for POST /api/estimate. Data rows are
// samples, columns are events; null marks a missing PSI value.
type estimateRequest struct {
	SampleIDs []string     `json:"sample_ids"`
	EventIDs  []string     `json:"event_ids"`
	Data      [][]*float64 `json:"data"`

	ExcludedMax  *float64 `json:"excluded_max,omitempty"`
	IncludedMin  *float64 `json:"included_min,omitempty"`
	Bootstrapped bool     `json:"bootstrapped,omitempty"`
	NIter        *int     `json:"n_iter,omitempty"`
	Thresh       *float64 `json:"thresh,omitempty"`
	MinSamples   *int     `json:"min_samples,omitempty"`
	Seed         int64    `json:"seed,omitempty"`
}

func (a *App) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var body estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	m, err := body.matrix()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := app.DefaultEstimateRequest(m)
	req.Bootstrapped = body.Bootstrapped
	req.Seed = body.Seed
	if body.ExcludedMax != nil {
		req.ExcludedMax = *body.ExcludedMax
	}
	if body.IncludedMin != nil {
		req.IncludedMin = *body.IncludedMin
	}
	if body.NIter != nil {
		req.NIter = *body.NIter
	}
	if body.Thresh != nil {
		req.Thresh = *body.Thresh
	}
	if body.MinSamples != nil {
		req.MinSamples = *body.MinSamples
	}

	rec, err := a.service.Estimate(r.Context(), req)
	if err != nil {
		if core.IsConfigError(err) || core.IsDataError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[API] Estimate failed: %v", err)
		writeError(w, http.StatusInternalServerError, "estimation failed")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// matrix builds the domain matrix from the request body, mapping nulls to NaN
func (b *estimateRequest) matrix() (*psi.Matrix, error) {
	if len(b.SampleIDs) != len(b.Data) {
		return nil, fmt.Errorf("%w: %d data rows for %d sample_ids",
			core.ErrShapeMismatch, len(b.Data), len(b.SampleIDs))
	}

	sampleIDs := make([]core.SampleID, len(b.SampleIDs))
	for i, id := range b.SampleIDs {
		sampleIDs[i] = core.SampleID(id)
	}

	m := psi.NewMatrix(sampleIDs)
	for j, event := range b.EventIDs {
		column := make([]float64, len(b.Data))
		for i, row := range b.Data {
			if len(row) != len(b.EventIDs) {
				return nil, fmt.Errorf("%w: row %d has %d values for %d events",
					core.ErrShapeMismatch, i, len(row), len(b.EventIDs))
			}
			if row[j] == nil {
				column[i] = math.NaN()
			} else {
				column[i] = *row[j]
			}
		}
		if err := m.AddEvent(core.EventID(event), column); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	runs, err := a.service.ListRuns(r.Context(), limit, offset)
	if err != nil {
		log.Printf("[API] ListRuns failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *App) handleRunReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.lookupRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(report.Markdown(rec)))
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) lookupRun(w http.ResponseWriter, r *http.Request) (*run.Run, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return nil, false
	}

	rec, err := a.service.GetRun(r.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "run not found")
			return nil, false
		}
		log.Printf("[API] GetRun failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return nil, false
	}
	return rec, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
