package simulation

import (
	"context"
	"fmt"
	"math"

	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/internal/analysis"
	"zmean/ports"
)

// Config configures the null-world simulator.
type Config struct {
	Draws int   `json:"draws"`
	Seed  int64 `json:"seed"`
}

// DefaultConfig returns sensible defaults for null simulation
func DefaultConfig() Config {
	return Config{
		Draws: 10000,
		Seed:  42,
	}
}

// Result captures one simulation run: the analytic p-value next to the
// empirical one, plus a summary of the simulated null distribution.
// ZDraws holds the raw simulated statistics so callers can plot them
// without re-running the simulation.
type Result struct {
	Draws      int                   `json:"draws"`
	Seed       int64                 `json:"seed"`
	Tail       ztest.Tail            `json:"tail"`
	ObservedZ  float64               `json:"observed_z"`
	AnalyticP  float64               `json:"analytic_p"`
	EmpiricalP float64               `json:"empirical_p"`
	Null       analysis.SummaryStats `json:"null_distribution"`
	ZDraws     []float64             `json:"-"`
}

// NullSimulator draws z statistics from a world where the null hypothesis
// holds: each draw samples n observations from N(mu0, sigma), takes their
// mean, and standardizes it. The resulting z values are standard normal,
// which is what makes the empirical p-value comparable to the analytic one.
type NullSimulator struct {
	cfg Config
	rng ports.RNGPort
}

// NewNullSimulator creates a simulator backed by a seeded RNG stream.
func NewNullSimulator(cfg Config, rng ports.RNGPort) (*NullSimulator, error) {
	if cfg.Draws <= 0 || cfg.Draws > 1_000_000 {
		return nil, core.NewValidationError("draws", "must be between 1 and 1000000")
	}
	if rng == nil {
		return nil, core.NewValidationError("rng", "must not be nil")
	}
	return &NullSimulator{cfg: cfg, rng: rng}, nil
}

// NullZDraws simulates cfg.Draws z statistics under the null hypothesis.
func (s *NullSimulator) NullZDraws(ctx context.Context, in ztest.Inputs) ([]float64, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	stream, err := s.rng.SeededStream(ctx, "null-simulation", s.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("seeding null simulation: %w", err)
	}

	n := float64(in.SampleSize)
	se := in.StandardError()

	draws := make([]float64, s.cfg.Draws)
	for i := range draws {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		var sum float64
		for j := 0; j < in.SampleSize; j++ {
			sum += in.NullMean + in.PopulationSD*stream.NormFloat64()
		}
		draws[i] = (sum/n - in.NullMean) / se
	}

	return draws, nil
}

// Run evaluates the analytic test, simulates the null distribution, and
// reports both p-values side by side.
func (s *NullSimulator) Run(ctx context.Context, in ztest.Inputs, tail ztest.Tail) (Result, error) {
	res, err := ztest.Evaluate(in, tail)
	if err != nil {
		return Result{}, err
	}

	draws, err := s.NullZDraws(ctx, in)
	if err != nil {
		return Result{}, err
	}

	empirical, err := EmpiricalPValue(draws, res.Z, tail)
	if err != nil {
		return Result{}, err
	}

	null, err := analysis.SummarizeSample(draws)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Draws:      s.cfg.Draws,
		Seed:       s.cfg.Seed,
		Tail:       tail,
		ObservedZ:  res.Z,
		AnalyticP:  res.PValue,
		EmpiricalP: empirical,
		Null:       null,
		ZDraws:     draws,
	}, nil
}

// Artifact wraps the result for the artifact ledger vocabulary. The raw
// draws stay out of the payload; the summary and p-values identify the run.
func (r Result) Artifact() core.Artifact {
	payload := r
	payload.ZDraws = nil
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactNullSimulation,
		Payload:   payload,
		CreatedAt: core.Now(),
	}
}

// EmpiricalPValue computes the proportion of simulated draws at least as
// extreme as the observed statistic, in the direction the tail mode names.
func EmpiricalPValue(draws []float64, observedZ float64, tail ztest.Tail) (float64, error) {
	if len(draws) == 0 {
		return 0, fmt.Errorf("%w: no simulated draws", core.ErrInsufficientData)
	}
	if math.IsNaN(observedZ) || math.IsInf(observedZ, 0) {
		return 0, fmt.Errorf("%w: observed z is %v", core.ErrNonFiniteInput, observedZ)
	}

	extreme := 0
	switch tail {
	case ztest.TailRight:
		for _, d := range draws {
			if d >= observedZ {
				extreme++
			}
		}
	case ztest.TailLeft:
		for _, d := range draws {
			if d <= observedZ {
				extreme++
			}
		}
	case ztest.TailTwo:
		for _, d := range draws {
			if math.Abs(d) >= math.Abs(observedZ) {
				extreme++
			}
		}
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownTail, tail)
	}

	return float64(extreme) / float64(len(draws)), nil
}
