package commands

import (
	"context"
	"flag"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/migrate"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
)

type notifySummary struct {
	Records int           `json:"records"`
	Skipped []failure     `json:"skipped,omitempty"`
	Notes   *notesSummary `json:"notes,omitempty"`
}

// Notify tells the requesters of migrated tickets where their ticket went.
func Notify(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, st, err := openMigrator(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := m.Notify(ctx)
	if report != nil {
		if perr := printNotifyReport(report); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func printNotifyReport(r *migrate.NotifyReport) error {
	s := notifySummary{Records: r.Records, Notes: summarizeNotes(r.Notes)}
	for _, f := range r.Skipped {
		s.Skipped = append(s.Skipped, failure{TicketID: f.TicketID, Stage: f.Stage, Error: errString(f.Err)})
	}
	if output.Format == "json" {
		return output.JSON(s)
	}

	printNotes(s.Notes)
	for _, f := range s.Skipped {
		output.Warn("skipped ticket %d: %s", f.TicketID, f.Error)
	}
	notified := 0
	if s.Notes != nil {
		notified = s.Notes.Succeeded
	}
	output.Success("Notified %d requesters (%d skipped)", notified, len(s.Skipped))
	return nil
}
