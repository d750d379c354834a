package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/internal/analysis"
	"zmean/internal/report"
	"zmean/ports"
)

// StudyService runs one-sample z-test studies end to end: validate the
// inputs, evaluate the statistic, decide against alpha, frame the
// hypotheses, fingerprint the run, and persist it to the ledger.
type StudyService struct {
	ledger ports.RunLedgerPort
	dists  *analysis.StatisticalDistributions
	logger zerolog.Logger
}

// StudyRequest defines the inputs for one study
type StudyRequest struct {
	Label        string     `json:"label"`
	SampleMean   float64    `json:"sample_mean"`
	NullMean     float64    `json:"null_mean"`
	PopulationSD float64    `json:"population_sd"`
	SampleSize   int        `json:"sample_size"`
	Tail         ztest.Tail `json:"tail"`
	Alpha        float64    `json:"alpha"`
	RunID        core.RunID `json:"run_id,omitempty"` // optional, generated if empty
}

// StudyResult contains the complete output of one study: the persisted
// record plus its artifacts (the run itself and its rendered report)
type StudyResult struct {
	Record    ports.StudyRunRecord `json:"record"`
	Artifacts []core.Artifact      `json:"artifacts"`
	Report    string               `json:"report"`
	RuntimeMs int64                `json:"runtime_ms"`
}

// IngestRequest derives a study from a raw sample column instead of
// pre-computed scalars. PopulationSD zero means no known sigma: the
// sample standard deviation stands in, flagged on the result.
type IngestRequest struct {
	Label        string
	Source       ports.SampleSourcePort
	Column       core.SampleKey
	NullMean     float64
	PopulationSD float64
	Tail         ztest.Tail
	Alpha        float64
}

// IngestResult pairs the column profile with the study it produced
type IngestResult struct {
	Summary        analysis.SummaryStats `json:"summary"`
	Artifact       core.Artifact         `json:"artifact"`
	SigmaEstimated bool                  `json:"sigma_estimated"`
	Study          *StudyResult          `json:"study"`
}

// NewStudyService creates a study service
func NewStudyService(ledger ports.RunLedgerPort, logger zerolog.Logger) *StudyService {
	return &StudyService{
		ledger: ledger,
		dists:  analysis.NewDistributions(),
		logger: logger,
	}
}

// RunStudy executes a single z-test study with a complete audit trail
func (s *StudyService) RunStudy(ctx context.Context, req StudyRequest) (*StudyResult, error) {
	startTime := time.Now()

	inputs, err := ztest.NewInputs(req.SampleMean, req.NullMean, req.PopulationSD, req.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("invalid study inputs: %w", err)
	}

	result, err := ztest.Evaluate(inputs, req.Tail)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	decision, err := ztest.Decide(result, req.Alpha)
	if err != nil {
		return nil, fmt.Errorf("decision failed: %w", err)
	}

	criticalZ, err := s.dists.CriticalZ(req.Alpha, req.Tail)
	if err != nil {
		return nil, fmt.Errorf("critical value failed: %w", err)
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	fingerprint := core.ComputeFingerprint(map[string]interface{}{
		"sample_mean":   inputs.SampleMean,
		"null_mean":     inputs.NullMean,
		"population_sd": inputs.PopulationSD,
		"sample_size":   inputs.SampleSize,
		"tail":          string(req.Tail),
		"alpha":         req.Alpha,
	})

	record := ports.StudyRunRecord{
		ID:          runID,
		Label:       req.Label,
		Inputs:      inputs,
		Result:      result,
		Decision:    decision,
		Hypotheses:  ztest.Frame(inputs, req.Tail),
		CriticalZ:   criticalZ,
		Fingerprint: fingerprint,
		CreatedAt:   core.Now(),
	}

	if err := s.ledger.StoreRun(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	runtimeMs := time.Since(startTime).Milliseconds()

	s.logger.Info().
		Str("run_id", runID.String()).
		Str("tail", req.Tail.String()).
		Float64("z", result.Z).
		Float64("p_value", result.PValue).
		Bool("reject_null", decision.RejectNull).
		Int64("runtime_ms", runtimeMs).
		Msg("study completed")

	reportMarkdown := report.BuildStudyReport(record)

	return &StudyResult{
		Record: record,
		Artifacts: []core.Artifact{
			{
				ID:        core.NewID(),
				Kind:      core.ArtifactStudyRun,
				Payload:   record,
				CreatedAt: record.CreatedAt,
			},
			{
				ID:        core.NewID(),
				Kind:      core.ArtifactStudyReport,
				Payload:   reportMarkdown,
				CreatedAt: record.CreatedAt,
			},
		},
		Report:    reportMarkdown,
		RuntimeMs: runtimeMs,
	}, nil
}

// GetRun fetches a stored run by ID
func (s *StudyService) GetRun(ctx context.Context, runID core.RunID) (*ports.StudyRunRecord, error) {
	return s.ledger.GetRun(ctx, runID)
}

// ListRuns lists stored runs, newest first
func (s *StudyService) ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.StudyRunRecord, error) {
	return s.ledger.ListRuns(ctx, filters)
}

// IngestColumn reads one numeric column from a sample source, profiles it,
// and runs a study on the derived mean and count.
func (s *StudyService) IngestColumn(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.Source == nil {
		return nil, core.NewValidationError("source", "must not be nil")
	}
	if req.Column == "" {
		return nil, core.NewValidationError("column", "must not be empty")
	}

	values, err := req.Source.ReadColumn(req.Column.String())
	if err != nil {
		return nil, fmt.Errorf("reading column %q: %w", req.Column, err)
	}

	summary, err := analysis.SummarizeSample(values)
	if err != nil {
		return nil, fmt.Errorf("summarizing column %q: %w", req.Column, err)
	}

	sigma := req.PopulationSD
	sigmaEstimated := false
	label := req.Label
	if sigma <= 0 {
		// A z-test wants a known population sigma. Without one the sample
		// SD is the closest substitute, and the run label says so.
		sigma = summary.StdDev
		sigmaEstimated = true
		label = fmt.Sprintf("%s (σ estimated from sample)", label)
		s.logger.Warn().
			Str("column", req.Column.String()).
			Float64("sample_sd", sigma).
			Msg("no population sigma supplied, falling back to sample standard deviation")
	}

	study, err := s.RunStudy(ctx, StudyRequest{
		Label:        label,
		SampleMean:   summary.Mean,
		NullMean:     req.NullMean,
		PopulationSD: sigma,
		SampleSize:   summary.Count,
		Tail:         req.Tail,
		Alpha:        req.Alpha,
	})
	if err != nil {
		return nil, err
	}

	return &IngestResult{
		Summary: summary,
		Artifact: core.Artifact{
			ID:        core.NewID(),
			Kind:      core.ArtifactSampleSummary,
			Payload:   summary,
			CreatedAt: core.Now(),
		},
		SigmaEstimated: sigmaEstimated,
		Study:          study,
	}, nil
}
