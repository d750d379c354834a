package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"zmean/domain/core"
)

// BatchService evaluates several study scenarios concurrently with a
// weighted-semaphore bound, collecting results index-stable so output
// order matches request order regardless of completion order.
type BatchService struct {
	study         *StudyService
	maxConcurrent int64
	logger        zerolog.Logger
}

// ScenarioOutcome holds one scenario's result or its failure
type ScenarioOutcome struct {
	Index   int          `json:"index"`
	Request StudyRequest `json:"request"`
	Result  *StudyResult `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// NewBatchService creates a batch service
func NewBatchService(study *StudyService, maxConcurrent int64, logger zerolog.Logger) (*BatchService, error) {
	if study == nil {
		return nil, core.NewValidationError("study", "must not be nil")
	}
	if maxConcurrent <= 0 {
		return nil, core.NewValidationError("maxConcurrent", "must be > 0")
	}
	return &BatchService{
		study:         study,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}, nil
}

// EvaluateScenarios runs all requests, at most maxConcurrent at a time.
// Individual scenario failures land in their outcome slot; only a
// cancelled context fails the batch as a whole.
func (b *BatchService) EvaluateScenarios(ctx context.Context, requests []StudyRequest) ([]ScenarioOutcome, error) {
	if len(requests) == 0 {
		return nil, core.NewValidationError("requests", "must not be empty")
	}

	sem := semaphore.NewWeighted(b.maxConcurrent)
	outcomes := make([]ScenarioOutcome, len(requests))
	var wg sync.WaitGroup

	for i, req := range requests {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(idx int, req StudyRequest) {
			defer wg.Done()
			defer sem.Release(1)

			outcome := ScenarioOutcome{Index: idx, Request: req}
			result, err := b.study.RunStudy(ctx, req)
			if err != nil {
				outcome.Error = err.Error()
				b.logger.Error().
					Int("scenario", idx).
					Err(err).
					Msg("scenario failed")
			} else {
				outcome.Result = result
			}
			outcomes[idx] = outcome
		}(i, req)
	}

	wg.Wait()

	b.logger.Info().
		Int("scenarios", len(requests)).
		Int64("max_concurrent", b.maxConcurrent).
		Msg("batch completed")

	return outcomes, nil
}
