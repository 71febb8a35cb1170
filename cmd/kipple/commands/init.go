package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metrasynth/gallery/internal/config"
	"github.com/metrasynth/gallery/internal/printer"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default kipple.yml",
	Long: `Write a default configuration file to the --config path.

The defaults grow patches of 1 to 20 modules, split tracks up to four ways
and give every mutation category a 50% activation probability.

Use --force to overwrite an existing file.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if fileExists(configPath) {
		if !forceInit {
			return printer.Error(
				fmt.Sprintf("%s already exists", configPath),
				"Refusing to overwrite an existing configuration.",
				[]string{"Reinitialize with defaults:\n  kipple init --force"},
			)
		}
		printer.Warning("Removing existing %s...\n", configPath)
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to remove %s: %w", configPath, err)
		}
	}

	if err := config.Default().Write(configPath); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	printer.Success("Created %s\n", configPath)
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Adjust random_seed and the category probabilities\n")
	printer.Info("  2. Run 'kipple generate -o patch.json'\n")
	return nil
}
