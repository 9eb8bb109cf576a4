package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/pulp-tools/pic/internal/app"
	"github.com/pulp-tools/pic/internal/config"
	"github.com/pulp-tools/pic/internal/journal"
	"github.com/spf13/cobra"
)

const defaultJournalLimit = 20

func newJournalCommand(rt *runtime) *cobra.Command {
	limit := defaultJournalLimit
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recently recorded requests",
		Long: `List the requests pic has recorded, newest first. Recording is enabled
with PIC_JOURNAL_TYPE=bbolt.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return usageErrorf("--limit must be positive")
			}
			return rt.withApp(cmd.Context(), func(a *app.App) error {
				entries, err := a.Journal().Recent(limit)
				if err != nil {
					return fmt.Errorf("read journal: %w", err)
				}
				return renderEntries(cmd, entries, rt.cfg.Output)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultJournalLimit, "maximum number of entries to show")
	return cmd
}

func renderEntries(cmd *cobra.Command, entries []journal.Entry, format string) error {
	if entries == nil {
		entries = []journal.Entry{}
	}
	if format != config.OutputRaw {
		return renderValue(cmd.OutOrStdout(), entries, format)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			e.At.Format("2006-01-02T15:04:05Z07:00"), e.Method, e.Path, e.Status, e.DurationMs, e.Error)
	}
	return tw.Flush()
}
