package commands

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/migrate"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
)

type plannedIssue struct {
	TicketID    int64  `json:"ticket_id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Comments    int    `json:"comments"`
	Attachments int    `json:"attachments"`
}

type runSummary struct {
	RunID               string         `json:"run_id"`
	DryRun              bool           `json:"dry_run"`
	Tickets             int            `json:"tickets"`
	Planned             []plannedIssue `json:"planned,omitempty"`
	Migrated            []store.Record `json:"migrated"`
	Failures            []failure      `json:"failures,omitempty"`
	CommentsAdded       int            `json:"comments_added"`
	CommentsFailed      int            `json:"comments_failed"`
	AttachmentsUploaded int            `json:"attachments_uploaded"`
	AttachmentsFailed   int            `json:"attachments_failed"`
	Notes               *notesSummary  `json:"notes,omitempty"`
}

// Migrate moves the tickets of the configured views to the issue tracker.
func Migrate(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "Show the issues that would be created without changing anything")
	views := fs.String("views", "", "Comma separated view IDs (overrides ZENDESK_VIEWS)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *views != "" {
		ids, err := config.ParseViews(*views)
		if err != nil {
			return fmt.Errorf("invalid --views: %w", err)
		}
		cfg.Zendesk.Views = ids
	}
	if len(cfg.Zendesk.Views) == 0 {
		return fmt.Errorf("no views to migrate\n\nUsage: zjm migrate [--dry-run] [--views <id,id>]")
	}

	m, st, err := openMigrator(ctx, cfg, *dryRun)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := m.Migrate(ctx)
	if report != nil {
		if perr := printRunReport(report); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func summarizeRun(r *migrate.RunReport) runSummary {
	s := runSummary{
		RunID:               r.RunID,
		DryRun:              r.DryRun,
		Tickets:             r.Tickets,
		Migrated:            r.Migrated,
		CommentsAdded:       r.CommentsAdded,
		CommentsFailed:      r.CommentsFailed,
		AttachmentsUploaded: r.AttachmentsUploaded(),
		AttachmentsFailed:   r.AttachmentsFailed(),
		Notes:               summarizeNotes(r.Notes),
	}
	for _, p := range r.Planned {
		s.Planned = append(s.Planned, plannedIssue{
			TicketID:    p.Ticket.ID,
			Summary:     p.Fields.Summary,
			Description: p.Fields.Description,
			Comments:    len(p.Comments),
			Attachments: len(p.Attachments),
		})
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, failure{TicketID: f.TicketID, Stage: f.Stage, Error: errString(f.Err)})
	}
	for _, a := range r.Attachments {
		if a.Err != nil {
			s.Failures = append(s.Failures, failure{
				TicketID: a.TicketID,
				Stage:    "attachment",
				Error:    fmt.Sprintf("%s: %v", a.FileName, a.Err),
			})
		}
	}
	return s
}

func printRunReport(r *migrate.RunReport) error {
	s := summarizeRun(r)
	if output.Format == "json" {
		return output.JSON(s)
	}

	if s.DryRun {
		rows := make([][]string, 0, len(s.Planned))
		for _, p := range s.Planned {
			rows = append(rows, []string{
				strconv.FormatInt(p.TicketID, 10),
				p.Summary,
				strconv.Itoa(p.Comments),
				strconv.Itoa(p.Attachments),
			})
		}
		output.Table([]string{"TICKET", "SUMMARY", "COMMENTS", "ATTACHMENTS"}, rows)
		for _, f := range s.Failures {
			output.Warn("ticket %d (%s): %s", f.TicketID, f.Stage, f.Error)
		}
		output.Success("Dry run: %d of %d tickets would be migrated", len(s.Planned), s.Tickets)
		return nil
	}

	rows := make([][]string, 0, len(s.Migrated))
	for _, rec := range s.Migrated {
		rows = append(rows, []string{strconv.FormatInt(rec.TicketID, 10), rec.IssueKey})
	}
	output.Table([]string{"TICKET", "ISSUE"}, rows)
	printNotes(s.Notes)
	for _, f := range s.Failures {
		output.Warn("ticket %d (%s): %s", f.TicketID, f.Stage, f.Error)
	}
	output.Success("Migrated %d of %d tickets (%d comments, %d attachments)",
		len(s.Migrated), s.Tickets, s.CommentsAdded, s.AttachmentsUploaded)
	return nil
}
