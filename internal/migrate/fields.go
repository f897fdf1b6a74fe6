package migrate

import (
	"fmt"
	"strings"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/jira"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

// descriptionCleaner drops characters the tracker's wiki markup would
// interpret.
var descriptionCleaner = strings.NewReplacer("`", "", "#", "")

// IssueFields maps a ticket to the fields of its issue.
func IssueFields(t zendesk.Ticket, projectKey, issueType string) jira.IssueFields {
	reference := fmt.Sprintf("Zendesk Ticket: %d", t.ID)
	return jira.IssueFields{
		Project:     jira.Project{Key: projectKey},
		Summary:     strings.ReplaceAll(t.Title(), "\n", " "),
		Description: fmt.Sprintf("%s \n\n %s", reference, descriptionCleaner.Replace(t.Description)),
		IssueType:   jira.IssueType{Name: issueType},
	}
}
