package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/archive"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/client"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/jira"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/migrate"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

// openMigrator connects both APIs and the record store. A dry run gets a
// store that keeps nothing. The caller closes the returned store.
func openMigrator(ctx context.Context, cfg *config.Config, dryRun bool) (*migrate.Migrator, store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	var st store.Store = store.Discard{}
	if !dryRun {
		var err error
		st, err = store.Open(ctx, cfg.Store, cfg.DataPath, cfg.Jira.ProjectKey)
		if err != nil {
			return nil, nil, err
		}
	}

	opts := migrate.Options{
		Views:           cfg.Zendesk.Views,
		ProjectKey:      cfg.Jira.ProjectKey,
		IssueType:       cfg.Jira.IssueType,
		DownloadPath:    cfg.DownloadPath,
		DryRun:          dryRun,
		MigratedNote:    cfg.Templates.MigratedNote,
		RequesterNotice: cfg.Templates.RequesterNotice,
		Signature:       cfg.Templates.Signature,
		Logger:          slog.Default(),
		Tracker: batch.Config{
			BatchSize:    cfg.Tracker.BatchSize,
			PollInterval: cfg.Tracker.PollInterval,
			MaxRounds:    cfg.Tracker.MaxRounds,
		},
	}
	if cfg.Archive.Endpoint != "" && !dryRun {
		arch, err := archive.New(archive.Config(cfg.Archive))
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		opts.Archive = arch
	}

	m, err := migrate.New(
		zendesk.New(client.New(cfg.ZendeskEndpoint())),
		jira.New(client.New(cfg.JiraEndpoint())),
		st,
		opts,
	)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return m, st, nil
}

type failure struct {
	TicketID int64  `json:"ticket_id"`
	Stage    string `json:"stage,omitempty"`
	Error    string `json:"error"`
}

type notesSummary struct {
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Rounds     int               `json:"rounds"`
	Jobs       []batch.JobReport `json:"jobs"`
	Unresolved []batch.JobReport `json:"unresolved,omitempty"`
	Failures   []failure         `json:"failures,omitempty"`
}

func summarizeNotes(r *batch.Report[store.Record]) *notesSummary {
	if r == nil {
		return nil
	}
	s := &notesSummary{
		Succeeded:  r.Succeeded(),
		Failed:     r.Failed(),
		Rounds:     r.Rounds,
		Jobs:       r.Jobs,
		Unresolved: r.Unresolved,
	}
	for _, o := range r.Failures() {
		s.Failures = append(s.Failures, failure{TicketID: o.Item.TicketID, Error: errString(o.Err)})
	}
	return s
}

// printNotes renders the bulk update jobs behind a note run.
func printNotes(s *notesSummary) {
	if s == nil || len(s.Jobs)+len(s.Unresolved) == 0 {
		return
	}
	rows := make([][]string, 0, len(s.Jobs)+len(s.Unresolved))
	for _, j := range append(append([]batch.JobReport(nil), s.Jobs...), s.Unresolved...) {
		rows = append(rows, []string{
			strconv.Itoa(j.Batch),
			strconv.Itoa(j.Size),
			j.Job.ID,
			string(j.Job.Status),
			j.Job.URL,
		})
	}
	output.Table([]string{"BATCH", "TICKETS", "JOB", "STATUS", "URL"}, rows)
	for _, f := range s.Failures {
		output.Warn("ticket %d: %s", f.TicketID, f.Error)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
