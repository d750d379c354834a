package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/internal/testkit"
	"zmean/ports"
)

func newTestService(t *testing.T) (*StudyService, *testkit.InMemoryRunLedger) {
	t.Helper()
	ledger := testkit.NewInMemoryRunLedger()
	return NewStudyService(ledger, zerolog.Nop()), ledger
}

func demoRequest() StudyRequest {
	demo := testkit.DemoStudyRequest()
	return StudyRequest{
		Label:        demo.Label,
		SampleMean:   demo.Inputs.SampleMean,
		NullMean:     demo.Inputs.NullMean,
		PopulationSD: demo.Inputs.PopulationSD,
		SampleSize:   demo.Inputs.SampleSize,
		Tail:         demo.Tail,
		Alpha:        demo.Alpha,
	}
}

func TestRunStudy_WorkedExample(t *testing.T) {
	svc, ledger := newTestService(t)

	result, err := svc.RunStudy(context.Background(), demoRequest())
	require.NoError(t, err)

	assert.InDelta(t, 1.1858541225631423, result.Record.Result.Z, 1e-12)
	assert.InDelta(t, 0.11783995671451875, result.Record.Result.PValue, 1e-12)
	assert.False(t, result.Record.Decision.RejectNull, "p=0.118 should not clear α=0.05")
	assert.InDelta(t, 1.6449, result.Record.CriticalZ, 1e-3)
	assert.Equal(t, "μ = 100.0000", result.Record.Hypotheses.Null)
	assert.Contains(t, result.Report, "Fail to reject the null hypothesis")
	assert.NotEmpty(t, result.Record.Fingerprint)
	assert.Equal(t, 1, ledger.Len())

	require.Len(t, result.Artifacts, 2)
	kinds := []core.ArtifactKind{result.Artifacts[0].Kind, result.Artifacts[1].Kind}
	assert.Contains(t, kinds, core.ArtifactStudyRun)
	assert.Contains(t, kinds, core.ArtifactStudyReport)

	stored, err := svc.GetRun(context.Background(), result.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Record.Fingerprint, stored.Fingerprint)
}

func TestRunStudy_FingerprintIsStableAcrossRuns(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.RunStudy(context.Background(), demoRequest())
	require.NoError(t, err)
	second, err := svc.RunStudy(context.Background(), demoRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, first.Record.Fingerprint, second.Record.Fingerprint,
		"identical inputs must fingerprint identically")
}

func TestRunStudy_RejectsInvalidInputs(t *testing.T) {
	svc, ledger := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*StudyRequest)
	}{
		{"zero sigma", func(r *StudyRequest) { r.PopulationSD = 0 }},
		{"negative sigma", func(r *StudyRequest) { r.PopulationSD = -1 }},
		{"zero n", func(r *StudyRequest) { r.SampleSize = 0 }},
		{"bad tail", func(r *StudyRequest) { r.Tail = ztest.Tail("diagonal") }},
		{"alpha out of range", func(r *StudyRequest) { r.Alpha = 1.5 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := demoRequest()
			tc.mutate(&req)
			_, err := svc.RunStudy(context.Background(), req)
			require.Error(t, err)
		})
	}

	assert.Equal(t, 0, ledger.Len(), "failed studies must not reach the ledger")
}

func TestIngestColumn_FallsBackToSampleSD(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.IngestColumn(context.Background(), IngestRequest{
		Label:    "synthetic column",
		Source:   &sliceSource{values: testkit.GenerateNormal(42, 200, 103, 16)},
		Column:   "value",
		NullMean: 100,
		Tail:     ztest.TailRight,
		Alpha:    0.05,
	})
	require.NoError(t, err)

	assert.True(t, result.SigmaEstimated)
	assert.Equal(t, 200, result.Summary.Count)
	assert.Contains(t, result.Study.Record.Label, "σ estimated from sample")
	assert.Equal(t, result.Summary.Mean, result.Study.Record.Inputs.SampleMean)
}

func TestEvaluateScenarios_OrderStable(t *testing.T) {
	svc, _ := newTestService(t)
	batch, err := NewBatchService(svc, 4, zerolog.Nop())
	require.NoError(t, err)

	alphas := []float64{0.01, 0.05, 0.10, 0.20}
	requests := make([]StudyRequest, len(alphas))
	for i, alpha := range alphas {
		requests[i] = demoRequest()
		requests[i].Alpha = alpha
	}
	// A poisoned scenario must fail alone, not fail the batch.
	requests = append(requests, demoRequest())
	requests[len(requests)-1].PopulationSD = 0

	outcomes, err := batch.EvaluateScenarios(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, outcomes, len(requests))

	for i, alpha := range alphas {
		require.NotNil(t, outcomes[i].Result, "scenario %d", i)
		assert.Equal(t, alpha, outcomes[i].Result.Record.Decision.Alpha)
	}
	assert.NotEmpty(t, outcomes[len(outcomes)-1].Error)

	// p ≈ 0.118: reject only at the 20% level.
	assert.False(t, outcomes[1].Result.Record.Decision.RejectNull)
	assert.True(t, outcomes[3].Result.Record.Decision.RejectNull)
}

// sliceSource is a SampleSourcePort over an in-memory column
type sliceSource struct {
	values []float64
}

func (s *sliceSource) Columns() ([]string, error) { return []string{"value"}, nil }

func (s *sliceSource) ReadColumn(name string) ([]float64, error) {
	return s.values, nil
}

var _ ports.SampleSourcePort = (*sliceSource)(nil)
