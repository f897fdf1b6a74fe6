package migrate

import (
	"context"
	"fmt"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
)

// Notify posts the requester notice on every recorded ticket. Tickets that
// no longer exist or are closed are skipped. A ticket recorded several times
// is notified once, with its latest issue.
func (m *Migrator) Notify(ctx context.Context) (*NotifyReport, error) {
	records, err := m.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read migration records: %w", err)
	}
	report := &NotifyReport{Records: len(records)}

	latest := make(map[int64]int, len(records))
	var order []int64
	for i, rec := range records {
		if _, ok := latest[rec.TicketID]; !ok {
			order = append(order, rec.TicketID)
		}
		latest[rec.TicketID] = i
	}

	targets := make([]store.Record, 0, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec := records[latest[id]]

		ticket, err := m.source.Ticket(ctx, id)
		if err != nil {
			m.logger.Warn("skipping ticket", "ticket", id, "issue", rec.IssueKey, "error", err)
			report.Skipped = append(report.Skipped, TicketFailure{TicketID: id, Stage: StageLookup, Err: err})
			continue
		}
		if ticket.Status == "closed" {
			m.logger.Warn("skipping closed ticket", "ticket", id, "issue", rec.IssueKey)
			report.Skipped = append(report.Skipped, TicketFailure{TicketID: id, Stage: StageLookup, Err: ErrTicketClosed})
			continue
		}
		targets = append(targets, rec)
	}

	m.logger.Info("notifying requesters", "tickets", len(targets), "skipped", len(report.Skipped))
	notes, err := m.addNotes(ctx, targets, m.notice, true)
	report.Notes = notes
	if err != nil {
		return report, fmt.Errorf("add requester notices: %w", err)
	}
	return report, nil
}
