package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/metrasynth/gallery/internal/printer"
	"github.com/metrasynth/gallery/internal/runner"
)

var (
	batchFrom     int64
	batchCount    int
	batchParallel int
	batchOutDir   string
	batchFormat   string
	batchStore    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Grow patches for a range of seeds",
	Long: `Grow one patch per seed for --count consecutive seeds starting at --from.

Seeds run concurrently but each run is independent, so every patch is
identical to the one 'kipple generate --seed N' produces. Exhausted seeds
are listed in the summary rather than failing the batch.

Examples:
  # Grow seeds 0-99 into ./patches
  kipple batch --from 0 --count 100 --out patches

  # Only check which seeds converge
  kipple batch --from 500 --count 50`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int64Var(&batchFrom, "from", 0, "First seed")
	batchCmd.Flags().IntVar(&batchCount, "count", 10, "Number of seeds")
	batchCmd.Flags().IntVarP(&batchParallel, "parallel", "p", runtime.NumCPU(), "Runs to execute at once")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "Directory to write documents to")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "Document format: json or yaml")
	batchCmd.Flags().BoolVar(&batchStore, "store", false, "Save converged patches to the Redis patch store")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, _, err := outputSettings(cfg, batchFormat, "")
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	opts := runner.BatchOptions{
		From:      batchFrom,
		Count:     batchCount,
		Parallel:  batchParallel,
		OutputDir: batchOutDir,
		Format:    format,
	}

	if batchStore {
		client, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer client.Close()

		opts.OnOutcome = func(ctx context.Context, o *runner.Outcome) error {
			return client.Save(ctx, o.Record())
		}
	}

	printer.Step("Growing %d seeds from %d (%d at once)\n", batchCount, batchFrom, batchParallel)
	results, err := runner.Batch(ctx, cfg, opts, log)
	if err != nil {
		return printer.Error("batch failed", err.Error(), nil)
	}

	printer.Println()
	printer.Printf("%-12s %-24s %-10s %-10s %s\n", "SEED", "NAME", "STATE", "MODULES", "ITERATIONS")
	printer.Printf("%-12s %-24s %-10s %-10s %s\n", "------------", "------------------------", "----------", "----------", "----------")
	for _, r := range results {
		printer.Printf("%-12d %-24s %-10s %-10s %d\n",
			r.Seed, r.Name, r.State, fmt.Sprintf("%d/%d", r.ModuleCount, r.Target), r.Iterations)
	}

	converged, exhausted := runner.Summary(results)
	printer.Println()
	if exhausted == 0 {
		printer.Success("%d of %d seeds converged\n", converged, len(results))
	} else {
		printer.Warning("%d of %d seeds converged, %d exhausted\n", converged, len(results), exhausted)
	}
	return nil
}
