package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zmean/adapters/excel"
	"zmean/app"
	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/internal/config"
	"zmean/internal/plot"
	"zmean/internal/simulation"
	"zmean/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zmean-cli",
		Short: "zmean CLI for running one-sample z-test studies",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDemoCmd(),
		newSimulateCmd(),
		newSweepCmd(),
		newIngestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// studyFlags are the parameters shared by every study-running subcommand
type studyFlags struct {
	mean     float64
	nullMean float64
	sigma    float64
	n        int
	tail     string
	alpha    float64
	label    string
}

func (f *studyFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.mean, "mean", 103, "observed sample mean")
	cmd.Flags().Float64Var(&f.nullMean, "null-mean", 100, "hypothesized population mean")
	cmd.Flags().Float64Var(&f.sigma, "sigma", 16, "known population standard deviation")
	cmd.Flags().IntVar(&f.n, "n", 40, "sample size")
	cmd.Flags().StringVar(&f.tail, "tail", "right", "tail mode: right|left|two")
	cmd.Flags().Float64Var(&f.alpha, "alpha", 0.05, "significance level")
	cmd.Flags().StringVar(&f.label, "label", "", "label for the stored run")
}

func (f *studyFlags) toRequest() (app.StudyRequest, error) {
	tail, err := ztest.ParseTail(f.tail)
	if err != nil {
		return app.StudyRequest{}, err
	}
	return app.StudyRequest{
		Label:        f.label,
		SampleMean:   f.mean,
		NullMean:     f.nullMean,
		PopulationSD: f.sigma,
		SampleSize:   f.n,
		Tail:         tail,
		Alpha:        f.alpha,
	}, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if os.Getenv("ZMEAN_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func newRunCmd() *cobra.Command {
	var flags studyFlags
	var noPlot bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a one-sample z-test study",
		Long: `Run a one-sample z-test: standardize the sample mean against the
hypothesized population mean, derive the tail p-value, and decide against
the significance level.

Example: zmean-cli run --mean 103 --null-mean 100 --sigma 16 --n 40 --tail right --alpha 0.05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest()
			if err != nil {
				return err
			}
			return runStudy(cmd.Context(), req, !noPlot)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the density plot")

	return cmd
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the canonical worked example end to end",
		Long: `Run the worked example this project is built around: a sample of 40
IQ scores with mean 103 against a hypothesized mean of 100 with known
sigma 16, right-tailed at the 5% level.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo := testkit.DemoStudyRequest()
			return runStudy(cmd.Context(), app.StudyRequest{
				Label:        demo.Label,
				SampleMean:   demo.Inputs.SampleMean,
				NullMean:     demo.Inputs.NullMean,
				PopulationSD: demo.Inputs.PopulationSD,
				SampleSize:   demo.Inputs.SampleSize,
				Tail:         demo.Tail,
				Alpha:        demo.Alpha,
			}, true)
		},
	}
}

func runStudy(ctx context.Context, req app.StudyRequest, withPlot bool) error {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return fmt.Errorf("failed to initialize test kit: %w", err)
	}

	svc := app.NewStudyService(kit.RunLedger(), newLogger())
	result, err := svc.RunStudy(ctx, req)
	if err != nil {
		return err
	}
	record := result.Record

	fmt.Printf("\n=== HYPOTHESES ===\n")
	fmt.Printf("H0: %s\n", record.Hypotheses.Null)
	fmt.Printf("Ha: %s\n", record.Hypotheses.Alternative)
	fmt.Printf("Significance level: α = %.3f\n", record.Decision.Alpha)

	fmt.Printf("\n=== TEST STATISTIC ===\n")
	fmt.Printf("Standard error:  σ/√n = %.6f\n", record.Result.StdError)
	fmt.Printf("z-statistic:     %.6f\n", record.Result.Z)
	fmt.Printf("%s\n", ztest.Describe(record.Inputs, record.Result))

	fmt.Printf("\n=== P-VALUE ===\n")
	fmt.Printf("Φ(z):            %.6f\n", record.Result.CDF)
	fmt.Printf("p-value (%s): %.6f\n", record.Result.Tail, record.Result.PValue)
	fmt.Printf("Critical z at α: %.4f\n", record.CriticalZ)

	if withPlot {
		rendered, err := plot.DensityPlot(record.Result.Z, record.Result.Tail, plot.DefaultDensityConfig())
		if err != nil {
			return err
		}
		fmt.Printf("\n%s", rendered)
	}

	fmt.Printf("\n=== DECISION ===\n")
	fmt.Printf("%s\n", record.Decision.Conclusion)

	fmt.Printf("\n=== FINGERPRINT ===\n")
	fmt.Printf("Run ID:      %s\n", record.ID)
	fmt.Printf("Fingerprint: %s\n", record.Fingerprint)
	fmt.Printf("Runtime:     %dms\n", result.RuntimeMs)

	return nil
}

func newSimulateCmd() *cobra.Command {
	var flags studyFlags
	var draws int
	var seed int64
	var bins int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compare the analytic p-value against a simulated null distribution",
		Long: `Sample z statistics from a world where the null hypothesis is true and
compare the proportion at least as extreme as the observed statistic with
the analytic tail probability.

Example: zmean-cli simulate --draws 10000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("draws") {
				if appConfig, err := config.Load(); err == nil {
					draws = appConfig.Study.SimulationSize
				}
			}
			return runSimulate(cmd.Context(), req, draws, seed, bins)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&draws, "draws", 10000, "number of simulated null draws")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for deterministic simulation")
	cmd.Flags().IntVar(&bins, "bins", 15, "histogram bins")

	return cmd
}

func runSimulate(ctx context.Context, req app.StudyRequest, draws int, seed int64, bins int) error {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return fmt.Errorf("failed to initialize test kit: %w", err)
	}

	inputs, err := ztest.NewInputs(req.SampleMean, req.NullMean, req.PopulationSD, req.SampleSize)
	if err != nil {
		return err
	}

	sim, err := simulation.NewNullSimulator(simulation.Config{Draws: draws, Seed: seed}, kit.RNGAdapter())
	if err != nil {
		return err
	}

	fmt.Printf("Simulating %d null-world samples of n=%d (seed %d)...\n", draws, req.SampleSize, seed)
	result, err := sim.Run(ctx, inputs, req.Tail)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== SIMULATED NULL DISTRIBUTION ===\n")
	if err := plot.RenderHistogram(os.Stdout, result.ZDraws, bins); err != nil {
		return err
	}
	fmt.Printf("mean=%.4f sd=%.4f min=%.4f max=%.4f\n",
		result.Null.Mean, result.Null.StdDev, result.Null.Min, result.Null.Max)

	fmt.Printf("\n=== P-VALUE COMPARISON ===\n")
	fmt.Printf("Observed z:    %.6f (%s)\n", result.ObservedZ, result.Tail)
	fmt.Printf("Analytic p:    %.6f\n", result.AnalyticP)
	fmt.Printf("Empirical p:   %.6f (%d draws)\n", result.EmpiricalP, result.Draws)
	fmt.Printf("Difference:    %+.6f\n", result.EmpiricalP-result.AnalyticP)

	artifact := result.Artifact()
	fmt.Printf("\n=== ARTIFACT ===\n")
	fmt.Printf("Artifact %s (%s), seed %d\n", artifact.ID, artifact.Kind, result.Seed)

	return nil
}

func newSweepCmd() *cobra.Command {
	var flags studyFlags
	var alphaList string
	var maxConcurrent int64

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate one scenario across several significance levels",
		Long: `Run the same study at several significance levels concurrently and
tabulate where the decision flips.

Example: zmean-cli sweep --alphas 0.01,0.05,0.10,0.20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.toRequest()
			if err != nil {
				return err
			}

			alphas, err := parseAlphas(alphaList)
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), req, alphas, maxConcurrent)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&alphaList, "alphas", "0.01,0.05,0.10", "comma-separated significance levels")
	cmd.Flags().Int64Var(&maxConcurrent, "max-concurrent", 4, "scenario concurrency bound")

	return cmd
}

func parseAlphas(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	alphas := make([]float64, 0, len(parts))
	for _, part := range parts {
		alpha, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid alpha %q: %w", part, err)
		}
		alphas = append(alphas, alpha)
	}
	if len(alphas) == 0 {
		return nil, fmt.Errorf("no significance levels supplied")
	}
	return alphas, nil
}

func runSweep(ctx context.Context, base app.StudyRequest, alphas []float64, maxConcurrent int64) error {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return fmt.Errorf("failed to initialize test kit: %w", err)
	}

	logger := newLogger()
	svc := app.NewStudyService(kit.RunLedger(), logger)
	batch, err := app.NewBatchService(svc, maxConcurrent, logger)
	if err != nil {
		return err
	}

	requests := make([]app.StudyRequest, len(alphas))
	for i, alpha := range alphas {
		requests[i] = base
		requests[i].Alpha = alpha
		requests[i].Label = fmt.Sprintf("sweep α=%.3f", alpha)
	}

	outcomes, err := batch.EvaluateScenarios(ctx, requests)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== ALPHA SWEEP ===\n")
	fmt.Printf("%-8s %-10s %-10s %-10s %s\n", "α", "z", "p-value", "crit z", "decision")
	for _, outcome := range outcomes {
		if outcome.Error != "" {
			fmt.Printf("%-8.3f %s\n", outcome.Request.Alpha, outcome.Error)
			continue
		}
		record := outcome.Result.Record
		decision := "fail to reject H0"
		if record.Decision.RejectNull {
			decision = "reject H0"
		}
		fmt.Printf("%-8.3f %-10.4f %-10.6f %-10.4f %s\n",
			record.Decision.Alpha, record.Result.Z, record.Result.PValue, record.CriticalZ, decision)
	}

	return nil
}

func newIngestCmd() *cobra.Command {
	var flags studyFlags
	var sheet string

	cmd := &cobra.Command{
		Use:   "ingest [data-file] [column]",
		Short: "Derive a study from a numeric column in an xlsx or csv file",
		Long: `Read one numeric column from a spreadsheet, profile it, and run a
z-test on the derived sample mean and count. Pass --sigma when the
population standard deviation is known; otherwise the sample standard
deviation stands in and the run is flagged as approximate.

With a single argument the column is read from the SAMPLE_FILE configured
in the environment.

Example: zmean-cli ingest scores.xlsx iq_score --null-mean 100 --sigma 16`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tail, err := ztest.ParseTail(flags.tail)
			if err != nil {
				return err
			}

			var dataFile, column string
			if len(args) == 2 {
				dataFile, column = args[0], args[1]
			} else {
				appConfig, err := config.Load()
				if err != nil {
					return err
				}
				if appConfig.Data.SampleFile == "" {
					return fmt.Errorf("no data file argument and SAMPLE_FILE not set")
				}
				dataFile, column = appConfig.Data.SampleFile, args[0]
				if !cmd.Flags().Changed("sheet") {
					sheet = appConfig.Data.SheetName
				}
			}

			return runIngest(cmd.Context(), dataFile, column, sheet, flags, tail)
		},
	}

	cmd.Flags().Float64Var(&flags.nullMean, "null-mean", 100, "hypothesized population mean")
	cmd.Flags().Float64Var(&flags.sigma, "sigma", 0, "known population standard deviation (0 = estimate from sample)")
	cmd.Flags().StringVar(&flags.tail, "tail", "right", "tail mode: right|left|two")
	cmd.Flags().Float64Var(&flags.alpha, "alpha", 0.05, "significance level")
	cmd.Flags().StringVar(&flags.label, "label", "", "label for the stored run")
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "worksheet name for xlsx files")

	return cmd
}

func runIngest(ctx context.Context, dataFile, column, sheet string, flags studyFlags, tail ztest.Tail) error {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return fmt.Errorf("failed to initialize test kit: %w", err)
	}

	key, err := core.ParseSampleKey(column)
	if err != nil {
		return err
	}

	label := flags.label
	if label == "" {
		label = fmt.Sprintf("%s:%s", dataFile, column)
	}

	svc := app.NewStudyService(kit.RunLedger(), newLogger())
	result, err := svc.IngestColumn(ctx, app.IngestRequest{
		Label:        label,
		Source:       excel.NewDataReader(dataFile, sheet),
		Column:       key,
		NullMean:     flags.nullMean,
		PopulationSD: flags.sigma,
		Tail:         tail,
		Alpha:        flags.alpha,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n=== SAMPLE PROFILE ===\n")
	fmt.Printf("Column:  %s (%d values)\n", column, result.Summary.Count)
	fmt.Printf("Mean:    %.4f\n", result.Summary.Mean)
	fmt.Printf("SD:      %.4f (sample)\n", result.Summary.StdDev)
	fmt.Printf("Median:  %.4f  [Q25 %.4f, Q75 %.4f]\n", result.Summary.Median, result.Summary.Q25, result.Summary.Q75)
	fmt.Printf("Range:   [%.4f, %.4f]\n", result.Summary.Min, result.Summary.Max)
	if result.SigmaEstimated {
		fmt.Printf("Note:    population σ not supplied; using sample SD (approximation)\n")
	}

	fmt.Print(renderStudySummary(result.Study))
	return nil
}

func renderStudySummary(result *app.StudyResult) string {
	record := result.Record
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== STUDY RESULTS ===\n")
	fmt.Fprintf(&sb, "H0: %s   Ha: %s\n", record.Hypotheses.Null, record.Hypotheses.Alternative)
	fmt.Fprintf(&sb, "z = %.6f, p = %.6f (%s), critical z = %.4f\n",
		record.Result.Z, record.Result.PValue, record.Result.Tail, record.CriticalZ)
	fmt.Fprintf(&sb, "%s\n", record.Decision.Conclusion)
	fmt.Fprintf(&sb, "Run %s (fingerprint %s)\n", record.ID, record.Fingerprint)
	return sb.String()
}
