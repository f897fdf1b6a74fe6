package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

// Migrate runs a full migration. Problems with single tickets, comments or
// attachments are logged and reported without stopping the run; the error
// is reserved for failures that leave nothing to migrate and for an
// interrupted note tracking, in which case the report is still returned.
func (m *Migrator) Migrate(ctx context.Context) (*RunReport, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}

	report := &RunReport{RunID: m.opts.RunID(), DryRun: m.opts.DryRun}
	log := m.logger.With("run", report.RunID)

	tickets, err := m.collectTickets(ctx)
	if err != nil {
		return report, err
	}
	report.Tickets = len(tickets)
	log.Info("migration started", "tickets", len(tickets), "views", len(m.opts.Views), "dry_run", m.opts.DryRun)

	var migrated []store.Record
	for _, t := range tickets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		plan, err := m.prepare(ctx, t, report)
		if err != nil {
			log.Error("failed to read ticket conversation", "ticket", t.ID, "error", err)
			report.fail(t.ID, StageComments, err)
			m.removeTicketDir(t.ID)
			continue
		}

		if m.opts.DryRun {
			report.Planned = append(report.Planned, *plan)
			continue
		}

		if rec, ok := m.migrateTicket(ctx, plan, report); ok {
			migrated = append(migrated, rec)
		}
	}

	if m.opts.DryRun {
		log.Info("dry run finished", "tickets", len(report.Planned))
		return report, nil
	}

	notes, err := m.addNotes(ctx, migrated, m.migratedNote, false)
	report.Notes = notes
	if err != nil {
		return report, fmt.Errorf("add migration notes: %w", err)
	}

	log.Info("migration finished",
		"migrated", len(report.Migrated),
		"failed", len(report.Failures),
		"attachments", report.AttachmentsUploaded(),
		"notes", notes.Succeeded(),
	)
	return report, nil
}

// collectTickets lists the tickets of every view; a ticket listed by
// several views is migrated once.
func (m *Migrator) collectTickets(ctx context.Context) ([]zendesk.Ticket, error) {
	seen := make(map[int64]bool)
	var tickets []zendesk.Ticket
	for _, view := range m.opts.Views {
		listed, err := m.source.ViewTickets(ctx, view)
		if err != nil {
			return nil, err
		}
		for _, t := range listed {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

// prepare builds the issue fields and gathers the conversation. Outside a
// dry run the attachments are downloaded; failed downloads are reported and
// left out.
func (m *Migrator) prepare(ctx context.Context, t zendesk.Ticket, report *RunReport) (*Plan, error) {
	plan := &Plan{Ticket: t, Fields: IssueFields(t, m.opts.ProjectKey, m.opts.IssueType)}

	comments, err := m.source.Comments(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if strings.TrimSpace(c.Text()) != "" {
			plan.Comments = append(plan.Comments, c.Text())
		}
		plan.Attachments = append(plan.Attachments, c.Attachments...)
	}

	if m.opts.DryRun {
		return plan, nil
	}

	for _, a := range plan.Attachments {
		path, err := m.download(ctx, t.ID, a)
		if err != nil {
			m.logger.Warn("failed to download attachment", "ticket", t.ID, "attachment", a.FileName, "error", err)
			report.Attachments = append(report.Attachments, AttachmentOutcome{
				TicketID: t.ID,
				FileName: a.FileName,
				Err:      err,
			})
			continue
		}
		plan.files = append(plan.files, localFile{
			name:     a.FileName,
			path:     path,
			archived: m.archiveFile(ctx, t.ID, path, report),
		})
	}
	return plan, nil
}

// migrateTicket creates the issue, records it, then carries the comments
// and attachments over.
func (m *Migrator) migrateTicket(ctx context.Context, plan *Plan, report *RunReport) (store.Record, bool) {
	id := plan.Ticket.ID
	defer m.removeTicketDir(id)

	issue, err := m.sink.CreateIssue(ctx, plan.Fields)
	if err != nil {
		m.logger.Error("failed to create issue", "ticket", id, "error", err)
		report.fail(id, StageCreateIssue, err)
		return store.Record{}, false
	}

	rec := store.Record{TicketID: id, IssueKey: issue.Key, RunID: report.RunID, MigratedAt: m.now()}
	report.Migrated = append(report.Migrated, rec)
	if err := m.store.Append(ctx, rec); err != nil {
		m.logger.Error("failed to record migrated ticket", "ticket", id, "issue", issue.Key, "error", err)
		report.fail(id, StageRecord, err)
	}
	m.logger.Info("ticket migrated", "ticket", id, "issue", issue.Key)

	for _, body := range plan.Comments {
		if err := m.sink.AddComment(ctx, issue.Key, body); err != nil {
			m.logger.Warn("failed to add comment", "issue", issue.Key, "error", err)
			report.CommentsFailed++
			continue
		}
		report.CommentsAdded++
	}

	for _, f := range plan.files {
		report.Attachments = append(report.Attachments, m.upload(ctx, id, issue.Key, f))
	}
	return rec, true
}
