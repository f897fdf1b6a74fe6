// Package zendesk reads tickets from the helpdesk and applies bulk updates
// to them through its asynchronous job API.
package zendesk

import (
	"context"
	"fmt"
	"io"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/client"
)

// Client is a helpdesk API client.
type Client struct {
	api *client.Client
}

// New creates a helpdesk client on top of an API client.
func New(api *client.Client) *Client {
	return &Client{api: api}
}

// ViewTickets returns every ticket of a view, following pagination.
func (c *Client) ViewTickets(ctx context.Context, viewID int64) ([]Ticket, error) {
	var tickets []Ticket
	next := fmt.Sprintf("/api/v2/views/%d/tickets.json", viewID)
	for next != "" {
		var page struct {
			Tickets  []Ticket `json:"tickets"`
			NextPage string   `json:"next_page"`
		}
		if err := c.api.GetJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list view %d tickets: %w", viewID, err)
		}
		tickets = append(tickets, page.Tickets...)
		next = page.NextPage
	}
	return tickets, nil
}

// Ticket fetches a single ticket.
func (c *Client) Ticket(ctx context.Context, id int64) (*Ticket, error) {
	var resp struct {
		Ticket Ticket `json:"ticket"`
	}
	if err := c.api.GetJSON(ctx, fmt.Sprintf("/api/v2/tickets/%d.json", id), &resp); err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return &resp.Ticket, nil
}

// Comments returns the conversation of a ticket, oldest first.
func (c *Client) Comments(ctx context.Context, ticketID int64) ([]Comment, error) {
	var comments []Comment
	next := fmt.Sprintf("/api/v2/tickets/%d/comments.json", ticketID)
	for next != "" {
		var page struct {
			Comments []Comment `json:"comments"`
			NextPage string    `json:"next_page"`
		}
		if err := c.api.GetJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list ticket %d comments: %w", ticketID, err)
		}
		comments = append(comments, page.Comments...)
		next = page.NextPage
	}
	return comments, nil
}

// DownloadAttachment writes the content of an attachment to w.
func (c *Client) DownloadAttachment(ctx context.Context, a Attachment, w io.Writer) error {
	url := a.ContentURL
	if url == "" {
		var resp struct {
			Attachment Attachment `json:"attachment"`
		}
		if err := c.api.GetJSON(ctx, fmt.Sprintf("/api/v2/attachments/%d.json", a.ID), &resp); err != nil {
			return fmt.Errorf("get attachment %d: %w", a.ID, err)
		}
		url = resp.Attachment.ContentURL
	}
	if _, err := c.api.Download(ctx, url, w); err != nil {
		return fmt.Errorf("download attachment %d: %w", a.ID, err)
	}
	return nil
}

// SubmitBulkUpdate applies updates to many tickets in one asynchronous job.
func (c *Client) SubmitBulkUpdate(ctx context.Context, updates []TicketUpdate) (*batch.Job, error) {
	body := map[string]any{"tickets": updates}
	data, _, err := c.api.Put(ctx, "/api/v2/tickets/update_many.json", body)
	if err != nil {
		return nil, fmt.Errorf("update many tickets: %w", err)
	}
	return decodeJob(data)
}

// FetchJobStatus returns the current state of a job.
func (c *Client) FetchJobStatus(ctx context.Context, id string) (*batch.Job, error) {
	data, _, err := c.api.Get(ctx, "/api/v2/job_statuses/"+id+".json")
	if err != nil {
		return nil, fmt.Errorf("get job status %s: %w", id, err)
	}
	return decodeJob(data)
}
