package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/toolgate/audit"
)

// NewAuditCmd creates the "audit" subcommand for reading the invocation log.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent tool invocations",
		RunE:  runAudit,
	}

	cmd.Flags().String("audit-db", "", "Path to SQLite audit log (default: ~/.toolgate/audit.db)")
	cmd.Flags().Int("limit", 50, "Max rows to show")

	return cmd
}

func runAudit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("audit-db")
	limit, _ := cmd.Flags().GetInt("limit")

	if path == "" {
		defaultPath, err := audit.DefaultPath()
		if err != nil {
			return exitError(1, "%v", err)
		}
		path = defaultPath
	}

	store, err := audit.Open(path, newLogger(cmd))
	if err != nil {
		return exitError(1, "opening audit store: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	records, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return exitError(1, "reading audit store: %v", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tTOOL\tOUTCOME\tDURATION\tMESSAGE")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n",
			rec.StartedAt.Format(time.RFC3339), rec.Tool, rec.Outcome, rec.DurationMS, rec.Message)
	}
	return w.Flush()
}
