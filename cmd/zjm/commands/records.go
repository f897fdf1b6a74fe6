package commands

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
)

// Records lists the migrated tickets of the configured project.
func Records(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("records", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Jira.ProjectKey == "" {
		return fmt.Errorf("JIRA_PROJECT_KEY is required")
	}

	st, err := store.Open(ctx, cfg.Store, cfg.DataPath, cfg.Jira.ProjectKey)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ReadAll(ctx)
	if err != nil {
		return err
	}

	if output.Format == "json" {
		if records == nil {
			records = []store.Record{}
		}
		return output.JSON(records)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		migratedAt := "-"
		if !rec.MigratedAt.IsZero() {
			migratedAt = rec.MigratedAt.Format(time.RFC3339)
		}
		runID := rec.RunID
		if runID == "" {
			runID = "-"
		}
		rows = append(rows, []string{strconv.FormatInt(rec.TicketID, 10), rec.IssueKey, runID, migratedAt})
	}
	output.Table([]string{"TICKET", "ISSUE", "RUN", "MIGRATED"}, rows)
	return nil
}
