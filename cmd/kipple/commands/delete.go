package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metrasynth/gallery/internal/patchstore"
	"github.com/metrasynth/gallery/internal/printer"
)

var deleteCmd = &cobra.Command{
	Use:   "delete PATCH_ID",
	Short: "Remove a patch from the Redis patch store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := client.Resolve(ctx, args[0])
	if err != nil {
		if patchstore.IsAmbiguousError(err) {
			return printer.Error("ambiguous short ID", patchstore.FormatAmbiguousError(err.(*patchstore.AmbiguousError)), nil)
		}
		if patchstore.IsNotFoundError(err) {
			return printer.Error(fmt.Sprintf("patch with ID '%s' not found", args[0]), "", []string{"List stored patches:\n  kipple list"})
		}
		return fmt.Errorf("failed to resolve patch ID: %w", err)
	}

	if err := client.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patch: %w", err)
	}
	printer.Success("Deleted %s\n", id)
	return nil
}
