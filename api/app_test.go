package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psimodal/adapters/rng"
	"psimodal/app"
	"psimodal/internal/testkit"
)

func testApp() *App {
	svc := app.NewModalityService(testkit.NewInMemoryRunRepository(), rng.NewAdapter())
	return NewApp(Config{Port: "0"}, svc)
}

func estimateBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"sample_ids": []string{"c1", "c2", "c3"},
		"event_ids":  []string{"ev_low", "ev_high"},
		"data": [][]any{
			{0.0, 0.9},
			{0.1, nil},
			{0.05, 1.0},
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleEstimate(t *testing.T) {
	a := testApp()

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewReader(estimateBody(t)))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		ID          string            `json:"id"`
		Assignments map[string]string `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "excluded", result.Assignments["ev_low"])
	assert.Equal(t, "included", result.Assignments["ev_high"])
}

func TestHandleEstimateRejectsBadInput(t *testing.T) {
	a := testApp()

	cases := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"sample_ids": [`},
		{"ragged rows", `{"sample_ids":["c1"],"event_ids":["e1","e2"],"data":[[0.5]]}`},
		{"value out of range", `{"sample_ids":["c1"],"event_ids":["e1"],"data":[[1.5]]}`},
		{"bad bin edges", `{"sample_ids":["c1"],"event_ids":["e1"],"data":[[0.5]],"excluded_max":0.9,"included_min":0.2}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			a.Router().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRunLifecycle(t *testing.T) {
	a := testApp()

	// Estimate once
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewReader(estimateBody(t)))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// List shows it
	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)

	// Fetch by ID
	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// HTML report
	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID+"/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Modality Estimation Run")
}

func TestGetRunNotFound(t *testing.T) {
	a := testApp()

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/00000000-0000-0000-0000-000000000000", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	a := testApp()

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
