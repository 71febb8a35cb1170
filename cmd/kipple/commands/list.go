package commands

import (
	"github.com/spf13/cobra"

	"github.com/metrasynth/gallery/internal/patchstore"
	"github.com/metrasynth/gallery/internal/printer"
)

var (
	listSince string
	listUntil string
	listName  string
	listState string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List patches in the Redis patch store",
	Long: `List patches saved with --store, oldest first.

The store is read from the store section of kipple.yml.

Time Filters:
  --since  - Show patches created after this time
  --until  - Show patches created before this time

Examples:
  # Everything from the last two hours
  kipple list --since 2h

  # Converged patches named night-*
  kipple list --name 'night-*' --state converged`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "Show patches after time (duration or RFC3339)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Show patches before time (duration or RFC3339)")
	listCmd.Flags().StringVar(&listName, "name", "", "Filter by patch name (glob pattern)")
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by run state (exact match)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sinceMs, untilMs, err := patchstore.ParseRange(listSince, listUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use duration format like '1h30m' or RFC3339 like '2026-01-02T15:04:05Z'"},
		)
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

	records, err := client.List(ctx, &patchstore.Criteria{
		SinceMs:  sinceMs,
		UntilMs:  untilMs,
		NameGlob: listName,
		State:    listState,
	})
	if err != nil {
		return printer.Error("failed to list patches", err.Error(), nil)
	}

	patchstore.FormatTable(printer.Out, records, client.InstanceName())
	return nil
}
