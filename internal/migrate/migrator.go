// Package migrate moves helpdesk tickets into the issue tracker and keeps
// their requesters informed.
//
// A migration run lists the tickets of the configured views, creates one
// issue per ticket carrying its conversation and attachments, records the
// ticket/issue pair, and finally adds a private note to every migrated
// ticket through the bulk update job tracker. Notify reads the records back
// and posts a public comment to each ticket.
package migrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/jira"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

// TicketSource is the helpdesk side of a migration.
type TicketSource interface {
	ViewTickets(ctx context.Context, viewID int64) ([]zendesk.Ticket, error)
	Ticket(ctx context.Context, id int64) (*zendesk.Ticket, error)
	Comments(ctx context.Context, ticketID int64) ([]zendesk.Comment, error)
	DownloadAttachment(ctx context.Context, a zendesk.Attachment, w io.Writer) error
	batch.Submitter[zendesk.TicketUpdate]
}

// Archiver keeps a copy of downloaded attachments.
type Archiver interface {
	Put(ctx context.Context, objectName, localPath string) error
}

// IssueSink is the issue tracker side of a migration.
type IssueSink interface {
	CreateIssue(ctx context.Context, fields jira.IssueFields) (*jira.Issue, error)
	AddComment(ctx context.Context, key, body string) error
	AddAttachment(ctx context.Context, key, filename string, r io.Reader) error
}

// Options configures a Migrator.
type Options struct {
	Views        []int64
	ProjectKey   string
	IssueType    string
	DownloadPath string
	DryRun       bool

	Tracker batch.Config

	// Archive, when set, receives every downloaded attachment.
	Archive Archiver

	// Note templates, executed with TicketID, IssueKey and Signature.
	MigratedNote    string
	RequesterNotice string
	Signature       string

	Logger *slog.Logger
	Now    func() time.Time
	RunID  func() string
}

// Migrator runs migrations and requester notifications.
type Migrator struct {
	source  TicketSource
	sink    IssueSink
	store   store.Store
	opts    Options
	logger  *slog.Logger
	tracker *batch.Tracker[store.Record, zendesk.TicketUpdate]

	migratedNote *template.Template
	notice       *template.Template
}

// New creates a Migrator. The note templates are checked here so a broken
// template fails before anything is migrated.
func New(source TicketSource, sink IssueSink, st store.Store, opts Options) (*Migrator, error) {
	if opts.IssueType == "" {
		opts.IssueType = "Story"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == nil {
		opts.RunID = func() string { return uuid.New().String() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Tracker.Logger == nil {
		opts.Tracker.Logger = logger
	}

	migratedNote, err := parseNote("migrated_note", opts.MigratedNote)
	if err != nil {
		return nil, err
	}
	notice, err := parseNote("requester_notice", opts.RequesterNotice)
	if err != nil {
		return nil, err
	}

	return &Migrator{
		source:       source,
		sink:         sink,
		store:        st,
		opts:         opts,
		logger:       logger,
		tracker:      batch.NewTracker[store.Record, zendesk.TicketUpdate](source, opts.Tracker),
		migratedNote: migratedNote,
		notice:       notice,
	}, nil
}

func (m *Migrator) now() time.Time {
	return m.opts.Now().UTC()
}

// checkReady fails fast on settings the run cannot do without.
func (m *Migrator) checkReady() error {
	if m.opts.ProjectKey == "" {
		return fmt.Errorf("project key is required")
	}
	return nil
}
