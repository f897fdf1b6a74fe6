package migrate

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

type noteData struct {
	TicketID  int64
	IssueKey  string
	Signature string
}

func parseNote(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, fmt.Errorf("template %s is empty", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, noteData{TicketID: 1, IssueKey: "KEY-1"}); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return tmpl, nil
}

func (m *Migrator) render(tmpl *template.Template, rec store.Record) string {
	var buf bytes.Buffer
	data := noteData{TicketID: rec.TicketID, IssueKey: rec.IssueKey, Signature: m.opts.Signature}
	if err := tmpl.Execute(&buf, data); err != nil {
		m.logger.Error("render note", "template", tmpl.Name(), "ticket", rec.TicketID, "error", err)
	}
	return buf.String()
}

// addNotes comments on every recorded ticket through bulk update jobs.
func (m *Migrator) addNotes(ctx context.Context, records []store.Record, tmpl *template.Template, public bool) (*batch.Report[store.Record], error) {
	return m.tracker.Track(ctx, records, func(rec store.Record) zendesk.TicketUpdate {
		return zendesk.TicketUpdate{
			ID:      rec.TicketID,
			Comment: &zendesk.CommentInput{Body: m.render(tmpl, rec), Public: public},
		}
	})
}
