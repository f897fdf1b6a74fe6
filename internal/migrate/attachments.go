package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/archive"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

func (m *Migrator) ticketDir(ticketID int64) string {
	return filepath.Join(m.opts.DownloadPath, strconv.FormatInt(ticketID, 10))
}

func (m *Migrator) removeTicketDir(ticketID int64) {
	if m.opts.DryRun {
		return
	}
	if err := os.RemoveAll(m.ticketDir(ticketID)); err != nil {
		m.logger.Warn("failed to remove download folder", "ticket", ticketID, "error", err)
	}
}

// localName keeps attachment files inside the ticket folder and apart from
// each other.
func localName(dir string, a zendesk.Attachment) string {
	name := filepath.Base(a.FileName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		name = fmt.Sprintf("attachment-%d", a.ID)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(dir, fmt.Sprintf("%d_%s", a.ID, name))
	}
	return path
}

// download stores an attachment under <download path>/<ticket id>/.
func (m *Migrator) download(ctx context.Context, ticketID int64, a zendesk.Attachment) (string, error) {
	dir := m.ticketDir(ticketID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download folder: %w", err)
	}

	path := localName(dir, a)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := m.source.DownloadAttachment(ctx, a, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// archiveFile copies a downloaded file to the archive, if one is configured.
func (m *Migrator) archiveFile(ctx context.Context, ticketID int64, path string, report *RunReport) bool {
	if m.opts.Archive == nil {
		return false
	}
	name := archive.ObjectName(m.opts.ProjectKey, ticketID, path)
	if err := m.opts.Archive.Put(ctx, name, path); err != nil {
		m.logger.Warn("failed to archive attachment", "ticket", ticketID, "object", name, "error", err)
		report.ArchiveFailed++
		return false
	}
	return true
}

// upload carries one downloaded file over to the issue. The file is removed
// once uploaded.
func (m *Migrator) upload(ctx context.Context, ticketID int64, issueKey string, lf localFile) AttachmentOutcome {
	out := AttachmentOutcome{
		TicketID: ticketID,
		IssueKey: issueKey,
		FileName: lf.name,
		Path:     lf.path,
		Archived: lf.archived,
	}

	f, err := os.Open(lf.path)
	if errors.Is(err, fs.ErrNotExist) {
		out.Err = fmt.Errorf("%w: %s", ErrAttachmentMissing, lf.path)
		m.logger.Warn("failed to upload attachment", "issue", issueKey, "attachment", lf.path, "error", out.Err)
		return out
	}
	if err != nil {
		out.Err = fmt.Errorf("open %s: %w", lf.path, err)
		m.logger.Warn("failed to upload attachment", "issue", issueKey, "attachment", lf.path, "error", err)
		return out
	}

	err = m.sink.AddAttachment(ctx, issueKey, lf.name, f)
	f.Close()
	if err != nil {
		out.Err = err
		m.logger.Warn("failed to upload attachment", "issue", issueKey, "attachment", lf.path, "error", err)
		return out
	}

	out.Uploaded = true
	if err := os.Remove(lf.path); err != nil {
		m.logger.Debug("failed to remove uploaded file", "path", lf.path, "error", err)
	}
	return out
}
