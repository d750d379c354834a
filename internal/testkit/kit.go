package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/ports"
)

// TestKit provides the in-memory wiring used by the CLI, the demo flows,
// and tests: a shared run ledger plus a seeded RNG adapter.
type TestKit struct {
	ledger *InMemoryRunLedger
}

// NewTestKit creates a new test kit instance
func NewTestKit() (*TestKit, error) {
	return &TestKit{ledger: NewInMemoryRunLedger()}, nil
}

// RunLedger returns the shared in-memory run ledger
func (t *TestKit) RunLedger() ports.RunLedgerPort {
	return t.ledger
}

// RunReader returns read-only access to the shared ledger
func (t *TestKit) RunReader() ports.RunReaderPort {
	return t.ledger
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return &RNGAdapter{}
}

// DemoStudy is the canonical worked example: a sample of 40 observations
// with mean 103 tested against a hypothesized population mean of 100 with
// known sigma 16, right-tailed at the 5% level.
type DemoStudy struct {
	Label      string
	Inputs     ztest.Inputs
	Tail       ztest.Tail
	Alpha      float64
	Simulation struct {
		Draws int
		Seed  int64
	}
}

// DemoStudyRequest returns the canonical demo study parameters
func DemoStudyRequest() DemoStudy {
	demo := DemoStudy{
		Label:  "worked-example",
		Inputs: ztest.MustNewInputs(103, 100, 16, 40),
		Tail:   ztest.TailRight,
		Alpha:  0.05,
	}
	demo.Simulation.Draws = 10000
	demo.Simulation.Seed = 42
	return demo
}

// InMemoryRunLedger implements RunLedgerPort with map storage. It backs
// the no-database mode and doubles as the test double for services.
type InMemoryRunLedger struct {
	mu    sync.RWMutex
	runs  map[core.RunID]ports.StudyRunRecord
	order []core.RunID
}

// NewInMemoryRunLedger creates an empty in-memory ledger
func NewInMemoryRunLedger() *InMemoryRunLedger {
	return &InMemoryRunLedger{runs: make(map[core.RunID]ports.StudyRunRecord)}
}

// StoreRun stores a run record, overwriting any previous record with the
// same ID (mirrors the postgres upsert).
func (l *InMemoryRunLedger) StoreRun(ctx context.Context, record ports.StudyRunRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.runs[record.ID]; !exists {
		l.order = append(l.order, record.ID)
	}
	l.runs[record.ID] = record
	return nil
}

// GetRun retrieves a run by ID
func (l *InMemoryRunLedger) GetRun(ctx context.Context, runID core.RunID) (*ports.StudyRunRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, ok := l.runs[runID]
	if !ok {
		return nil, core.NewNotFoundError("run", runID.String())
	}
	return &record, nil
}

// ListRuns returns stored runs newest first, honoring the filters
func (l *InMemoryRunLedger) ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.StudyRunRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := make([]ports.StudyRunRecord, 0, len(l.runs))
	for _, id := range l.order {
		record := l.runs[id]
		if filters.Tail != nil && record.Result.Tail != *filters.Tail {
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[j].CreatedAt.Before(records[i].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(records) {
			return []ports.StudyRunRecord{}, nil
		}
		records = records[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(records) {
		records = records[:filters.Limit]
	}

	return records, nil
}

// Len reports how many runs the ledger holds
func (l *InMemoryRunLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.runs)
}

// RNGAdapter implements the RNGPort interface for testing and the CLI
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// ValidateSeed ensures the seed produces expected deterministic results
func (r *RNGAdapter) ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error {
	stream := rand.New(rand.NewSource(seed))
	for i, want := range expected {
		if got := stream.Float64(); got != want {
			return fmt.Errorf("%w: draw %d diverged from expected stream", core.ErrSeedMismatch, i)
		}
	}
	return nil
}

// GenerateNormal produces a deterministic Gaussian sample without touching
// the global RNG: a 48-bit LCG feeds Box-Muller. Identical seeds always
// yield identical fixtures, across platforms and Go versions.
func GenerateNormal(seed int64, n int, mean, sd float64) []float64 {
	state := uint64(seed)*6364136223846793005 + 1442695040888963407

	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>16&0xFFFFFFFF) / float64(1<<32)
	}

	values := make([]float64, n)
	for i := 0; i < n; i += 2 {
		u1 := next()
		u2 := next()
		if u1 < 1e-12 {
			u1 = 1e-12
		}
		r := math.Sqrt(-2 * math.Log(u1))
		values[i] = mean + sd*r*math.Cos(2*math.Pi*u2)
		if i+1 < n {
			values[i+1] = mean + sd*r*math.Sin(2*math.Pi*u2)
		}
	}
	return values
}

// Interface compliance checks
var (
	_ ports.RunLedgerPort = (*InMemoryRunLedger)(nil)
	_ ports.RNGPort       = (*RNGAdapter)(nil)
)
