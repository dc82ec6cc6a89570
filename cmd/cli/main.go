package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"psimodal/adapters/excel"
	"psimodal/adapters/rng"
	"psimodal/adapters/stats/ordering"
	"psimodal/adapters/stats/profile"
	"psimodal/app"
	"psimodal/domain/modality"
	"psimodal/domain/psi"
	"psimodal/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "psimodal-cli",
		Short: "PSI modality estimation over single-cell splicing matrices",
	}

	rootCmd.AddCommand(
		newEstimateCmd(),
		newCountsCmd(),
		newOrderCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// estimateFlags are the shared estimation parameters
type estimateFlags struct {
	excludedMax  float64
	includedMin  float64
	bootstrapped bool
	nIter        int
	thresh       float64
	minSamples   int
	seed         int64
	jsonOutput   bool
}

func (f *estimateFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.excludedMax, "excluded-max", 0.2, "Upper edge of the excluded bin")
	cmd.Flags().Float64Var(&f.includedMin, "included-min", 0.8, "Lower edge of the included bin")
	cmd.Flags().BoolVar(&f.bootstrapped, "bootstrap", false, "Use bootstrapped consensus estimation")
	cmd.Flags().IntVar(&f.nIter, "n-iter", 100, "Bootstrap iterations")
	cmd.Flags().Float64Var(&f.thresh, "thresh", 0.6, "Bootstrap vote threshold")
	cmd.Flags().IntVar(&f.minSamples, "min-samples", 10, "Minimum valid samples per bootstrap trial")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "Random seed for deterministic bootstrap")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Emit JSON instead of text")
}

func (f *estimateFlags) request(m *psi.Matrix) app.EstimateRequest {
	req := app.DefaultEstimateRequest(m)
	req.ExcludedMax = f.excludedMax
	req.IncludedMin = f.includedMin
	req.Bootstrapped = f.bootstrapped
	req.NIter = f.nIter
	req.Thresh = f.thresh
	req.MinSamples = f.minSamples
	req.Seed = f.seed
	return req
}

func newEstimateCmd() *cobra.Command {
	var flags estimateFlags

	cmd := &cobra.Command{
		Use:   "estimate [matrix-file]",
		Short: "Assign a modality to every splicing event in a PSI matrix",
		Long: `Estimate the modality of each alternative splicing event in a
PSI matrix (CSV or XLSX; header row = event IDs, first column = cell IDs).

Example: psimodal-cli estimate psi.csv --bootstrap --n-iter 100 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runEstimate(ctx context.Context, path string, flags estimateFlags) error {
	m, err := excel.NewMatrixReader(path).ReadMatrix()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	svc := app.NewModalityService(testkit.NewInMemoryRunRepository(), rng.NewAdapter())

	startTime := time.Now()
	rec, err := svc.Estimate(ctx, flags.request(m))
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}

	if flags.jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(rec)
	}

	fmt.Printf("Estimated %d events over %d cells in %v\n",
		rec.NumEvents, rec.NumSamples, time.Since(startTime))
	fmt.Printf("Run ID: %s\n\n", rec.ID)
	for _, event := range m.EventIDs {
		if label, ok := rec.Assignments.Get(event); ok {
			fmt.Printf("%-40s %s\n", event, label)
		} else {
			fmt.Printf("%-40s (no data)\n", event)
		}
	}
	return nil
}

func newCountsCmd() *cobra.Command {
	var flags estimateFlags

	cmd := &cobra.Command{
		Use:   "counts [matrix-file]",
		Short: "Count events per modality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounts(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runCounts(ctx context.Context, path string, flags estimateFlags) error {
	m, err := excel.NewMatrixReader(path).ReadMatrix()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	svc := app.NewModalityService(testkit.NewInMemoryRunRepository(), rng.NewAdapter())
	counts, err := svc.Counts(ctx, flags.request(m))
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}

	if flags.jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(counts)
	}

	total := 0
	for _, ref := range modality.Table() {
		if n, ok := counts[ref.Name]; ok {
			fmt.Printf("%-12s %d\n", ref.Name, n)
			total += n
		}
	}
	if n, ok := counts[modality.Unassigned]; ok {
		fmt.Printf("%-12s %d\n", modality.Unassigned, n)
		total += n
	}
	fmt.Printf("%-12s %d\n", "total", total)
	return nil
}

func newOrderCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "order [matrix-file]",
		Short: "Order events by switchy score, least switchy first",
		Long: `Rank splicing events by how switch-like their PSI distribution is.
Events concentrated at 0 or 1 score high; events near 0.5 score low.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func runOrder(path string, jsonOutput bool) error {
	m, err := excel.NewMatrixReader(path).ReadMatrix()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	type rankedEvent struct {
		Event string  `json:"event"`
		Score float64 `json:"score"`
	}

	ranked := make([]rankedEvent, 0, m.NumEvents())
	for _, col := range ordering.Order(m) {
		ranked = append(ranked, rankedEvent{
			Event: string(m.EventIDs[col]),
			Score: ordering.SwitchyScore(m.Column(col)),
		})
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(ranked)
	}

	for i, r := range ranked {
		if math.IsNaN(r.Score) {
			fmt.Printf("%4d  %-40s (no data)\n", i+1, r.Event)
			continue
		}
		fmt.Printf("%4d  %-40s %.4f\n", i+1, r.Event, r.Score)
	}
	return nil
}

func newProfileCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profile [matrix-file]",
		Short: "Summarize per-event PSI distributions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func runProfile(path string, jsonOutput bool) error {
	m, err := excel.NewMatrixReader(path).ReadMatrix()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	profiles := profile.NewProfiler().ProfileMatrix(m)
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(profiles)
	}

	fmt.Printf("%-40s %6s %6s %8s %8s %8s\n", "event", "n", "valid", "mean", "std", "median")
	for _, p := range profiles {
		fmt.Printf("%-40s %6d %6d %8.3f %8.3f %8.3f\n",
			p.EventID, p.SampleSize, p.ValidCount, p.Mean, p.StdDev, p.Median)
	}
	return nil
}
