package ports

import (
	"context"

	"zmean/domain/core"
	"zmean/domain/ztest"
)

// StudyRunRecord is the persisted form of one z-test evaluation
type StudyRunRecord struct {
	ID          core.RunID       `json:"id"`
	Label       string           `json:"label"`
	Inputs      ztest.Inputs     `json:"inputs"`
	Result      ztest.Result     `json:"result"`
	Decision    ztest.Decision   `json:"decision"`
	Hypotheses  ztest.Hypotheses `json:"hypotheses"`
	CriticalZ   float64          `json:"critical_z"`
	Fingerprint core.Fingerprint `json:"fingerprint"`
	CreatedAt   core.Timestamp   `json:"created_at"`
}

// RunFilters for querying stored runs
type RunFilters struct {
	Tail   *ztest.Tail
	Limit  int
	Offset int
}

// RunWriterPort provides append-only write access to the run ledger
// This is the ONLY way to write runs - prevents read-after-write coupling
type RunWriterPort interface {
	StoreRun(ctx context.Context, record StudyRunRecord) error
}

// RunReaderPort provides read-only access to stored runs
// Use this for queries, replay, and UI/API access
type RunReaderPort interface {
	GetRun(ctx context.Context, runID core.RunID) (*StudyRunRecord, error)
	ListRuns(ctx context.Context, filters RunFilters) ([]StudyRunRecord, error)
}

// RunLedgerPort combines read and write access for services that own a run's
// full lifecycle
type RunLedgerPort interface {
	RunWriterPort
	RunReaderPort
}
