package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"psimodal/domain/core"
	"psimodal/domain/modality"
	"psimodal/domain/run"
	"psimodal/ports"
)

// runRepository implements ports.RunRepository on PostgreSQL
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// EnsureSchema creates the runs table when missing
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS modality_runs (
		id TEXT PRIMARY KEY,
		matrix_fingerprint TEXT NOT NULL,
		params JSONB NOT NULL,
		num_samples INTEGER NOT NULL,
		num_events INTEGER NOT NULL,
		assignments JSONB NOT NULL,
		counts JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure modality_runs schema: %w", err)
	}
	return nil
}

// SaveRun inserts a completed estimation run
func (r *runRepository) SaveRun(ctx context.Context, rec *run.Run) error {
	paramsJSON, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	assignmentsJSON, err := json.Marshal(rec.Assignments)
	if err != nil {
		return fmt.Errorf("failed to marshal assignments: %w", err)
	}
	countsJSON, err := json.Marshal(rec.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal counts: %w", err)
	}

	query := `INSERT INTO modality_runs (
		id, matrix_fingerprint, params, num_samples, num_events,
		assignments, counts, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Fingerprint.String(), paramsJSON, rec.NumSamples, rec.NumEvents,
		assignmentsJSON, countsJSON, rec.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID
func (r *runRepository) GetRun(ctx context.Context, id core.RunID) (*run.Run, error) {
	query := `SELECT id, matrix_fingerprint, params, num_samples, num_events,
		assignments, counts, created_at
	FROM modality_runs WHERE id = $1`

	row := r.db.QueryRowxContext(ctx, query, id)
	rec, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("run", id.String())
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return rec, nil
}

// ListRuns retrieves runs newest first with pagination
func (r *runRepository) ListRuns(ctx context.Context, limit, offset int) ([]*run.Run, error) {
	query := `SELECT id, matrix_fingerprint, params, num_samples, num_events,
		assignments, counts, created_at
	FROM modality_runs
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*run.Run
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*run.Run, error) {
	var (
		rec             run.Run
		fingerprint     string
		paramsJSON      []byte
		assignmentsJSON []byte
		countsJSON      []byte
		createdAt       sql.NullTime
	)

	err := row.Scan(&rec.ID, &fingerprint, &paramsJSON, &rec.NumSamples, &rec.NumEvents,
		&assignmentsJSON, &countsJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.Fingerprint = core.MatrixFingerprint(fingerprint)
	if createdAt.Valid {
		rec.CreatedAt = core.NewTimestamp(createdAt.Time)
	}
	if err := json.Unmarshal(paramsJSON, &rec.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	if err := json.Unmarshal(assignmentsJSON, &rec.Assignments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignments: %w", err)
	}
	rec.Counts = make(map[modality.Modality]int)
	if err := json.Unmarshal(countsJSON, &rec.Counts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal counts: %w", err)
	}
	return &rec, nil
}
