package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"zmean/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ztest_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ztest_runs (
			id UUID PRIMARY KEY,
			label TEXT,
			sample_mean DOUBLE PRECISION NOT NULL,
			null_mean DOUBLE PRECISION NOT NULL,
			population_sd DOUBLE PRECISION NOT NULL CHECK (population_sd > 0),
			sample_size INTEGER NOT NULL CHECK (sample_size > 0),
			z DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL CHECK (p_value >= 0 AND p_value <= 1),
			tail VARCHAR(20) NOT NULL,
			alpha DOUBLE PRECISION NOT NULL CHECK (alpha > 0 AND alpha < 1),
			reject_null BOOLEAN NOT NULL,
			payload JSONB NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_ztest_runs_created_at ON ztest_runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ztest_runs_tail ON ztest_runs(tail)`,
		`CREATE INDEX IF NOT EXISTS idx_ztest_runs_fingerprint ON ztest_runs(fingerprint)`,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
