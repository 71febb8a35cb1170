package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metrasynth/gallery/internal/config"
	"github.com/metrasynth/gallery/internal/generator"
	"github.com/metrasynth/gallery/internal/printer"
	"github.com/metrasynth/gallery/internal/runner"
	"github.com/metrasynth/gallery/internal/watch"
)

var (
	watchOutput   string
	watchFormat   string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the patch whenever kipple.yml changes",
	Long: `Grow a patch now and again every time the configuration file is saved.

Invalid configurations and exhausted runs are reported and the previous
document is left in place. Stop with Ctrl+C.

Examples:
  kipple watch -o patch.json`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output file (required unless output.path is set)")
	watchCmd.Flags().StringVar(&watchFormat, "format", "", "Document format: json or yaml")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	// Validate the file once up front so startup errors are fatal
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, path, err := outputSettings(cfg, watchFormat, watchOutput)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		return printer.Error(
			"no output file",
			"watch rewrites a file on every change and cannot write to stdout.",
			[]string{"Name the output file:\n  kipple watch -o patch.json"},
		)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	printer.Step("Watching %s (Ctrl+C to stop)\n", configPath)
	return watch.File(ctx, configPath, watchDebounce, log, func(ctx context.Context) error {
		return regenerate(ctx, log)
	})
}

// regenerate reloads the configuration and rewrites the output document.
func regenerate(ctx context.Context, log *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		printer.Warning("Skipping change: %v\n", err)
		return err
	}

	format, path, err := outputSettings(cfg, watchFormat, watchOutput)
	if err != nil {
		return err
	}

	outcome, err := runner.Generate(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, generator.ErrExhausted) {
			printer.Warning("Seed %d exhausted; keeping previous document\n", cfg.RandomSeed)
		}
		return err
	}

	if err := outcome.Write(path, format, nil); err != nil {
		return err
	}
	printer.Success("%s  %s: %d modules → %s\n",
		time.Now().Format("15:04:05"), outcome.Name, outcome.Result.ModuleCount, path)
	return nil
}
