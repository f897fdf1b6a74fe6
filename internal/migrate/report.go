package migrate

import (
	"errors"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/jira"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

// Stages at which a ticket can fail.
const (
	StageComments    = "comments"
	StageCreateIssue = "create_issue"
	StageRecord      = "record"
	StageLookup      = "lookup"
)

var (
	// ErrAttachmentMissing marks an attachment whose local file was gone at
	// upload time.
	ErrAttachmentMissing = errors.New("attachment file not found")

	// ErrTicketClosed marks a ticket that can no longer be commented on.
	ErrTicketClosed = errors.New("ticket is closed")
)

// Plan is a ticket prepared for the issue tracker.
type Plan struct {
	Ticket      zendesk.Ticket
	Fields      jira.IssueFields
	Comments    []string
	Attachments []zendesk.Attachment
	files       []localFile
}

type localFile struct {
	name     string
	path     string
	archived bool
}

// TicketFailure is a ticket that was not, or not completely, migrated.
type TicketFailure struct {
	TicketID int64
	Stage    string
	Err      error
}

// AttachmentOutcome is the result of carrying one attachment over.
type AttachmentOutcome struct {
	TicketID int64
	IssueKey string
	FileName string
	Path     string
	Archived bool
	Uploaded bool
	Err      error
}

// RunReport summarizes a migration run.
type RunReport struct {
	RunID          string
	DryRun         bool
	Tickets        int
	Planned        []Plan
	Migrated       []store.Record
	Failures       []TicketFailure
	CommentsAdded  int
	CommentsFailed int
	Attachments    []AttachmentOutcome
	ArchiveFailed  int
	Notes          *batch.Report[store.Record]
}

func (r *RunReport) fail(ticketID int64, stage string, err error) {
	r.Failures = append(r.Failures, TicketFailure{TicketID: ticketID, Stage: stage, Err: err})
}

// AttachmentsUploaded returns the number of attachments carried over.
func (r *RunReport) AttachmentsUploaded() int {
	n := 0
	for _, a := range r.Attachments {
		if a.Uploaded {
			n++
		}
	}
	return n
}

// AttachmentsFailed returns the number of attachments that were lost.
func (r *RunReport) AttachmentsFailed() int {
	return len(r.Attachments) - r.AttachmentsUploaded()
}

// NotifyReport summarizes a requester notification run.
type NotifyReport struct {
	Records int
	Skipped []TicketFailure
	Notes   *batch.Report[store.Record]
}
