package testkit

import (
	"context"
	"math"
	"testing"

	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/ports"
)

func TestInMemoryRunLedger_StoreAndGet(t *testing.T) {
	ledger := NewInMemoryRunLedger()
	ctx := context.Background()

	record := ports.StudyRunRecord{
		ID:        core.RunID(core.NewID()),
		Label:     "store-and-get",
		Inputs:    ztest.MustNewInputs(103, 100, 16, 40),
		CreatedAt: core.Now(),
	}
	record.Result.Tail = ztest.TailRight

	if err := ledger.StoreRun(ctx, record); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}

	got, err := ledger.GetRun(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Label != "store-and-get" {
		t.Errorf("label = %q, want %q", got.Label, "store-and-get")
	}

	if _, err := ledger.GetRun(ctx, core.RunID("missing")); !core.IsNotFoundError(err) {
		t.Errorf("expected not-found error for missing run, got %v", err)
	}
}

func TestInMemoryRunLedger_ListFiltersByTail(t *testing.T) {
	ledger := NewInMemoryRunLedger()
	ctx := context.Background()

	for _, tail := range []ztest.Tail{ztest.TailRight, ztest.TailLeft, ztest.TailRight} {
		record := ports.StudyRunRecord{
			ID:        core.RunID(core.NewID()),
			Inputs:    ztest.MustNewInputs(103, 100, 16, 40),
			CreatedAt: core.Now(),
		}
		record.Result.Tail = tail
		if err := ledger.StoreRun(ctx, record); err != nil {
			t.Fatalf("StoreRun: %v", err)
		}
	}

	right := ztest.TailRight
	records, err := ledger.ListRuns(ctx, ports.RunFilters{Tail: &right})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for _, record := range records {
		if record.Result.Tail != ztest.TailRight {
			t.Errorf("filtered list contains tail %s", record.Result.Tail)
		}
	}
}

func TestGenerateNormal_Deterministic(t *testing.T) {
	first := GenerateNormal(42, 1000, 100, 16)
	second := GenerateNormal(42, 1000, 100, 16)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draw %d differs between identical seeds: %v vs %v", i, first[i], second[i])
		}
	}

	var sum float64
	for _, v := range first {
		sum += v
	}
	mean := sum / float64(len(first))
	if math.Abs(mean-100) > 2 {
		t.Errorf("sample mean = %.2f, want within 2 of 100", mean)
	}
}

func TestRNGAdapter_SeededStreamRepeats(t *testing.T) {
	rng := &RNGAdapter{}
	ctx := context.Background()

	a, err := rng.SeededStream(ctx, "test", 7)
	if err != nil {
		t.Fatalf("SeededStream: %v", err)
	}
	b, err := rng.SeededStream(ctx, "test", 7)
	if err != nil {
		t.Fatalf("SeededStream: %v", err)
	}

	expected := make([]float64, 5)
	for i := range expected {
		expected[i] = a.Float64()
	}
	for i, want := range expected {
		if got := b.Float64(); got != want {
			t.Fatalf("draw %d = %v, want %v", i, got, want)
		}
	}

	if err := rng.ValidateSeed(ctx, "test", 7, expected); err != nil {
		t.Errorf("ValidateSeed on matching stream: %v", err)
	}
	if err := rng.ValidateSeed(ctx, "test", 8, expected); err == nil {
		t.Error("ValidateSeed accepted a mismatched seed")
	}
}
