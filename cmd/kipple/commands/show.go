package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metrasynth/gallery/internal/patchstore"
	"github.com/metrasynth/gallery/internal/printer"
	"github.com/metrasynth/gallery/pkg/patch"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show PATCH_ID",
	Short: "Print a stored patch document",
	Long: `Print the document of a patch saved with --store.

PATCH_ID may be a full ID or a unique prefix of at least 6 characters,
as shown by 'kipple list'.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "json", "Document format: json or yaml")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	format, err := patch.ParseFormat(showFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: json, yaml"})
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer client.Close()

	shortID := args[0]
	id, err := client.Resolve(ctx, shortID)
	if err != nil {
		if patchstore.IsNotFoundError(err) {
			return printer.Error(
				fmt.Sprintf("patch with ID '%s' not found", shortID),
				"The specified patch does not exist in the store.",
				[]string{"List stored patches:\n  kipple list"},
			)
		}
		if patchstore.IsAmbiguousError(err) {
			return printer.Error(
				"ambiguous short ID",
				patchstore.FormatAmbiguousError(err.(*patchstore.AmbiguousError)),
				nil,
			)
		}
		return fmt.Errorf("failed to resolve patch ID: %w", err)
	}

	record, err := client.Get(ctx, id)
	if err != nil {
		if patchstore.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("patch with ID '%s' not found", id),
				"The patch was resolved but could not be fetched.",
				[]string{"This might indicate a concurrent delete. Try again."},
			)
		}
		return fmt.Errorf("failed to get patch: %w", err)
	}

	return patch.Encode(printer.Out, record.Document, format)
}
