package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metrasynth/gallery/internal/config"
	"github.com/metrasynth/gallery/internal/printer"
	"github.com/metrasynth/gallery/internal/runner"
	"github.com/metrasynth/gallery/pkg/patch"
)

var (
	generateSeed   int64
	generateOutput string
	generateFormat string
	generateStore  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Grow one patch",
	Long: `Grow one patch from the configuration and write its document.

The document goes to stdout unless --output (or output.path in kipple.yml)
names a file. With --store the patch is also saved to the Redis patch
store configured in kipple.yml.

Examples:
  # Grow the configured seed and print JSON
  kipple generate

  # Grow seed 42 into a YAML file
  kipple generate --seed 42 -o patches/42.yaml --format yaml

  # Grow and keep the result in Redis
  kipple generate --store`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "Override random_seed")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file ('-' for stdout)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Document format: json or yaml")
	generateCmd.Flags().BoolVar(&generateStore, "store", false, "Save the patch to the Redis patch store")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("seed") {
		cfg.RandomSeed = generateSeed
		if err := cfg.Validate(); err != nil {
			return printer.Error("invalid seed", err.Error(), []string{"Seeds must be between 0 and 1073741824"})
		}
	}

	format, path, err := outputSettings(cfg, generateFormat, generateOutput)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	outcome, err := runner.Generate(ctx, cfg, log)
	if err != nil {
		return exhaustedError(err, cfg.RandomSeed)
	}

	if err := outcome.Write(path, format, printer.Out); err != nil {
		return err
	}

	toFile := path != "" && path != "-"
	if toFile {
		printer.Success("Grew %s: %d modules (target %d) in %d iterations\n",
			outcome.Name, outcome.Result.ModuleCount, outcome.Result.Target, outcome.Result.Iterations)
		printer.Detail("  wrote %s\n", path)
	}

	if generateStore {
		client, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer client.Close()

		record := outcome.Record()
		if err := client.Save(ctx, record); err != nil {
			return fmt.Errorf("failed to store patch: %w", err)
		}
		if toFile {
			printer.Success("Stored as %s\n", record.ID)
		}
	}

	return nil
}

// outputSettings resolves the document format and path, letting flags win
// over the output section of kipple.yml.
func outputSettings(cfg *config.Config, formatFlag, pathFlag string) (patch.Format, string, error) {
	name := formatFlag
	path := pathFlag
	if cfg.Output != nil {
		if name == "" {
			name = cfg.Output.Format
		}
		if path == "" {
			path = cfg.Output.Path
		}
	}
	if name == "" {
		name = string(patch.FormatJSON)
	}

	format, err := patch.ParseFormat(name)
	if err != nil {
		return "", "", printer.Error("invalid output format", err.Error(), []string{"Valid formats: json, yaml"})
	}
	return format, path, nil
}
