package patchstore

import (
	"fmt"
	"io"
	"time"
)

// FormatTable writes records as a table with columns ID, NAME, SEED, STATE,
// MODULES and AGE. Returns the number of records written.
func FormatTable(w io.Writer, records []*Record, instanceName string) int {
	if len(records) == 0 {
		fmt.Fprintf(w, "No patches found for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Patches for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-10s %-20s %-10s %-10s %-8s %s\n",
		"ID", "NAME", "SEED", "STATE", "MODULES", "AGE")
	fmt.Fprintf(w, "%-10s %-20s %-10s %-10s %-8s %s\n",
		"----------", "--------------------", "----------", "----------", "--------", "--------")

	for _, r := range records {
		fmt.Fprintf(w, "%-10s %-20s %-10d %-10s %-8s %s\n",
			formatID(r.ID),
			formatName(r.Name),
			r.Seed,
			r.State,
			fmt.Sprintf("%d/%d", r.ModuleCount, r.Target),
			formatTimestamp(r.CreatedAtMs),
		)
	}

	noun := "patch"
	if len(records) != 1 {
		noun = "patches"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(records), noun)

	return len(records)
}

// formatID truncates a record ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatName(name string) string {
	if len(name) > 20 {
		return name[:17] + "..."
	}
	return name
}

// formatTimestamp renders a millisecond timestamp as relative time.
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
