// Package jira creates issues in the issue tracker and attaches the
// conversation and files of migrated tickets to them.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/client"
)

// IssueFields is the field set of a new issue.
type IssueFields struct {
	Project     Project   `json:"project"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	IssueType   IssueType `json:"issuetype"`
}

type Project struct {
	Key string `json:"key"`
}

type IssueType struct {
	Name string `json:"name"`
}

// Issue identifies a created issue.
type Issue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Client is an issue tracker API client.
type Client struct {
	api *client.Client
}

// New creates an issue tracker client on top of an API client.
func New(api *client.Client) *Client {
	return &Client{api: api}
}

// CreateIssue creates an issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, fields IssueFields) (*Issue, error) {
	data, _, err := c.api.Post(ctx, "/rest/api/2/issue", map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	var issue Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return nil, fmt.Errorf("decode issue: %w", err)
	}
	if issue.Key == "" {
		return nil, fmt.Errorf("create issue: response has no key")
	}
	return &issue, nil
}

// AddComment appends a comment to an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	path := "/rest/api/2/issue/" + url.PathEscape(key) + "/comment"
	if _, _, err := c.api.Post(ctx, path, map[string]string{"body": body}); err != nil {
		return fmt.Errorf("add comment to %s: %w", key, err)
	}
	return nil
}

// AddAttachment uploads r as a file named filename on an issue.
func (c *Client) AddAttachment(ctx context.Context, key, filename string, r io.Reader) error {
	path := "/rest/api/2/issue/" + url.PathEscape(key) + "/attachments"
	header := http.Header{"X-Atlassian-Token": {"no-check"}}
	if _, _, err := c.api.Upload(ctx, path, "file", filename, r, header); err != nil {
		return fmt.Errorf("add attachment %s to %s: %w", filename, key, err)
	}
	return nil
}
