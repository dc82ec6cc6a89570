package app

import (
	"context"
	"log"
	"sync"
	"time"

	"psimodal/adapters/stats/engine"
	"psimodal/domain/core"
	"psimodal/domain/modality"
	"psimodal/domain/psi"
	"psimodal/domain/run"
	"psimodal/ports"
)

// ModalityService orchestrates modality estimation over PSI matrices:
// single-pass or bootstrapped estimation, result memoization, and run
// persistence through the repository port.
type ModalityService struct {
	runRepo ports.RunRepository
	rngPort ports.RNGPort

	// Results are memoized by (matrix content hash, params). Content-derived
	// keys mean a mutated matrix misses the cache instead of serving stale
	// assignments.
	mu    sync.Mutex
	cache map[core.Hash]*run.Run
}

// EstimateRequest defines one estimation call
type EstimateRequest struct {
	Matrix       *psi.Matrix
	ExcludedMax  float64
	IncludedMin  float64
	Bootstrapped bool
	NIter        int
	Thresh       float64
	MinSamples   int
	Seed         int64
}

// DefaultEstimateRequest applies the standard parameters to a matrix
func DefaultEstimateRequest(m *psi.Matrix) EstimateRequest {
	cfg := engine.DefaultConfig()
	boot := engine.DefaultBootstrapConfig()
	return EstimateRequest{
		Matrix:      m,
		ExcludedMax: cfg.ExcludedMax,
		IncludedMin: cfg.IncludedMin,
		NIter:       boot.NIter,
		Thresh:      boot.Thresh,
		MinSamples:  boot.MinSamples,
	}
}

// NewModalityService creates a modality service
func NewModalityService(runRepo ports.RunRepository, rngPort ports.RNGPort) *ModalityService {
	return &ModalityService{
		runRepo: runRepo,
		rngPort: rngPort,
		cache:   make(map[core.Hash]*run.Run),
	}
}

// Estimate runs (or replays from cache) one modality estimation and persists
// the resulting run
func (s *ModalityService) Estimate(ctx context.Context, req EstimateRequest) (*run.Run, error) {
	if err := req.Matrix.Validate(); err != nil {
		return nil, err
	}

	params := run.Params{
		ExcludedMax:  req.ExcludedMax,
		IncludedMin:  req.IncludedMin,
		Bootstrapped: req.Bootstrapped,
	}
	if req.Bootstrapped {
		params.NIter = req.NIter
		params.Thresh = req.Thresh
		params.MinSamples = req.MinSamples
		params.Seed = req.Seed
	}

	key := params.Key(req.Matrix.Fingerprint())
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		log.Printf("[ModalityService] Cache hit for matrix %.12s", cached.Fingerprint)
		return cached, nil
	}
	s.mu.Unlock()

	est, err := engine.NewEstimator(engine.Config{
		ExcludedMax: req.ExcludedMax,
		IncludedMin: req.IncludedMin,
	})
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	var assignments modality.Assignments
	if req.Bootstrapped {
		rng, err := s.rngPort.SeededStream(ctx, "bootstrap_estimate", req.Seed)
		if err != nil {
			return nil, err
		}
		cfg := engine.BootstrapConfig{
			NIter:      req.NIter,
			Thresh:     req.Thresh,
			MinSamples: req.MinSamples,
		}
		assignments, err = est.EstimateBootstrap(ctx, req.Matrix, cfg, rng)
		if err != nil {
			return nil, err
		}
	} else {
		assignments = est.Estimate(req.Matrix)
	}
	log.Printf("[ModalityService] Estimated %d events over %d cells in %.2fms (bootstrapped=%t)",
		req.Matrix.NumEvents(), req.Matrix.NumSamples(),
		float64(time.Since(startTime).Nanoseconds())/1e6, req.Bootstrapped)

	rec := run.New(req.Matrix.Fingerprint(), params,
		req.Matrix.NumSamples(), req.Matrix.NumEvents(), assignments)

	if err := s.runRepo.SaveRun(ctx, rec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = rec
	s.mu.Unlock()
	return rec, nil
}

// Counts estimates and groups events by modality
func (s *ModalityService) Counts(ctx context.Context, req EstimateRequest) (map[modality.Modality]int, error) {
	rec, err := s.Estimate(ctx, req)
	if err != nil {
		return nil, err
	}
	return rec.Counts, nil
}

// GetRun retrieves a persisted run
func (s *ModalityService) GetRun(ctx context.Context, id core.RunID) (*run.Run, error) {
	return s.runRepo.GetRun(ctx, id)
}

// ListRuns lists persisted runs newest first
func (s *ModalityService) ListRuns(ctx context.Context, limit, offset int) ([]*run.Run, error) {
	return s.runRepo.ListRuns(ctx, limit, offset)
}
