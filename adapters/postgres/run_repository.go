package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"zmean/domain/core"
	"zmean/ports"
)

// RunRepositoryImpl implements RunLedgerPort for PostgreSQL. The full
// record travels as a JSONB payload; the hot query columns (tail, alpha,
// z, p-value) are denormalized alongside it.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunLedgerPort {
	return &RunRepositoryImpl{db: db}
}

// StoreRun upserts a run record keyed by run ID
func (r *RunRepositoryImpl) StoreRun(ctx context.Context, record ports.StudyRunRecord) error {
	payloadJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ztest_runs (
			id, label, sample_mean, null_mean, population_sd, sample_size,
			z, p_value, tail, alpha, reject_null, payload, fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			z = EXCLUDED.z,
			p_value = EXCLUDED.p_value,
			tail = EXCLUDED.tail,
			alpha = EXCLUDED.alpha,
			reject_null = EXCLUDED.reject_null,
			payload = EXCLUDED.payload,
			fingerprint = EXCLUDED.fingerprint`,
		record.ID.String(), record.Label,
		record.Inputs.SampleMean, record.Inputs.NullMean,
		record.Inputs.PopulationSD, record.Inputs.SampleSize,
		record.Result.Z, record.Result.PValue, string(record.Result.Tail),
		record.Decision.Alpha, record.Decision.RejectNull,
		payloadJSON, record.Fingerprint.String(), record.CreatedAt.Time())

	return err
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, runID core.RunID) (*ports.StudyRunRecord, error) {
	var payloadJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM ztest_runs WHERE id = $1`, runID.String(),
	).Scan(&payloadJSON)

	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("run", runID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var record ports.StudyRunRecord
	if err := json.Unmarshal(payloadJSON, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run payload: %w", err)
	}
	return &record, nil
}

// ListRuns returns runs newest first, honoring the filters
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.StudyRunRecord, error) {
	query := `SELECT payload FROM ztest_runs`
	args := []interface{}{}

	if filters.Tail != nil {
		query += ` WHERE tail = $1`
		args = append(args, string(*filters.Tail))
	}
	query += ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filters.Limit)
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []ports.StudyRunRecord
	for rows.Next() {
		var payloadJSON []byte
		if err := rows.Scan(&payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		var record ports.StudyRunRecord
		if err := json.Unmarshal(payloadJSON, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run payload: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
