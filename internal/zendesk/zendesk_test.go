package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/batch"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/client"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(client.New(config.Endpoint{URL: server.URL, User: "agent", Password: "pw"})), server
}

func TestViewTickets_FollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/api/v2/views/42/tickets.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode(map[string]any{
				"tickets":   []map[string]any{{"id": 3, "raw_subject": "Third"}},
				"next_page": nil,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"tickets": []map[string]any{
				{"id": 1, "raw_subject": "First"},
				{"id": 2, "raw_subject": "Second"},
			},
			"next_page": serverURL + "/api/v2/views/42/tickets.json?page=2",
		})
	})
	c, server := newTestClient(t, mux)
	serverURL = server.URL

	tickets, err := c.ViewTickets(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("tickets = %d, want 3", len(tickets))
	}
	if tickets[2].ID != 3 || tickets[2].Title() != "Third" {
		t.Errorf("tickets[2] = %+v", tickets[2])
	}
}

func TestTicket(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/tickets/7.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ticket": map[string]any{"id": 7, "subject": "Printer", "description": "It is on fire"},
		})
	})
	c, _ := newTestClient(t, mux)

	ticket, err := c.Ticket(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.ID != 7 || ticket.Title() != "Printer" || ticket.Description != "It is on fire" {
		t.Errorf("ticket = %+v", ticket)
	}
}

func TestTicket_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/tickets/8.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": "RecordNotFound", "description": "Not found"})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Ticket(context.Background(), 8)
	if !client.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/tickets/7/comments.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"comments": []map[string]any{
				{"id": 1, "body": "<p>Hi</p>", "plain_body": "Hi", "public": true},
				{"id": 2, "body": "See log", "public": false, "attachments": []map[string]any{
					{"id": 55, "file_name": "log.txt", "content_url": "https://acme.zendesk.com/attachments/token/x/?name=log.txt"},
				}},
			},
		})
	})
	c, _ := newTestClient(t, mux)

	comments, err := c.Comments(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].Text() != "Hi" || comments[1].Text() != "See log" {
		t.Errorf("texts = %q, %q", comments[0].Text(), comments[1].Text())
	}
	if len(comments[1].Attachments) != 1 || comments[1].Attachments[0].FileName != "log.txt" {
		t.Errorf("attachments = %+v", comments[1].Attachments)
	}
}

func TestDownloadAttachment(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/api/v2/attachments/55.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"attachment": map[string]any{"id": 55, "content_url": serverURL + "/files/55"},
		})
	})
	mux.HandleFunc("/files/55", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "log line")
	})
	c, server := newTestClient(t, mux)
	serverURL = server.URL

	var direct bytes.Buffer
	if err := c.DownloadAttachment(context.Background(), Attachment{ID: 55, ContentURL: server.URL + "/files/55"}, &direct); err != nil {
		t.Fatalf("direct download: %v", err)
	}
	var lookedUp bytes.Buffer
	if err := c.DownloadAttachment(context.Background(), Attachment{ID: 55}, &lookedUp); err != nil {
		t.Fatalf("download by id: %v", err)
	}
	if direct.String() != "log line" || lookedUp.String() != "log line" {
		t.Errorf("contents = %q, %q", direct.String(), lookedUp.String())
	}
}

func TestSubmitBulkUpdate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/tickets/update_many.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		var body struct {
			Tickets []TicketUpdate `json:"tickets"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Tickets) != 2 {
			t.Errorf("tickets = %d, want 2", len(body.Tickets))
		} else if body.Tickets[1].ID != 2 || body.Tickets[1].Comment.Public || body.Tickets[1].Comment.Body != "moved" {
			t.Errorf("tickets[1] = %+v", body.Tickets[1])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"job_status": map[string]any{
				"id":     "8b726e606741012ffc2d782bcb7848fe",
				"url":    "https://acme.zendesk.com/api/v2/job_statuses/8b726e606741012ffc2d782bcb7848fe.json",
				"status": "queued",
				"total":  2,
			},
		})
	})
	c, _ := newTestClient(t, mux)

	updates := []TicketUpdate{
		{ID: 1, Comment: &CommentInput{Body: "moved"}},
		{ID: 2, Comment: &CommentInput{Body: "moved"}},
	}
	job, err := c.SubmitBulkUpdate(context.Background(), updates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ID != "8b726e606741012ffc2d782bcb7848fe" || job.Status != batch.StatusQueued || job.Total != 2 {
		t.Errorf("job = %+v", job)
	}
	if job.Status.Terminal() {
		t.Error("queued job reported terminal")
	}
}

func TestFetchJobStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/job_statuses/abc.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"job_status": map[string]any{
				"id":     "abc",
				"status": "completed",
				"results": []map[string]any{
					{"id": 1, "index": 0, "success": true, "action": "update", "status": "Updated"},
					{"id": 2, "index": 1, "error": "TicketUpdateFailed", "details": "Ticket is closed"},
					{"id": 3, "status": "Updated"},
				},
			},
		})
	})
	c, _ := newTestClient(t, mux)

	job, err := c.FetchJobStatus(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != batch.StatusCompleted || len(job.Results) != 3 {
		t.Fatalf("job = %+v", job)
	}
	if !job.Results[0].Success || job.Results[0].Index == nil || *job.Results[0].Index != 0 {
		t.Errorf("results[0] = %+v", job.Results[0])
	}
	if job.Results[1].Success || job.Results[1].Error != "TicketUpdateFailed" || job.Results[1].Details != "Ticket is closed" {
		t.Errorf("results[1] = %+v", job.Results[1])
	}
	if !job.Results[2].Success || job.Results[2].Index != nil {
		t.Errorf("results[2] = %+v", job.Results[2])
	}
}

func TestFetchJobStatus_MissingID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/job_statuses/abc.json", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"job_status":{}}`)
	})
	c, _ := newTestClient(t, mux)

	if _, err := c.FetchJobStatus(context.Background(), "abc"); err == nil {
		t.Fatal("expected error for job status without id")
	}
}
