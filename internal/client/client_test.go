package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v2/tickets/1.json" {
			t.Errorf("path = %s, want /api/v2/tickets/1.json", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"ticket": map[string]any{"id": 1}})
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	data, status, err := c.Get(context.Background(), "/api/v2/tickets/1.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 {
		t.Errorf("status = %d, want 200", status)
	}
	if !strings.Contains(string(data), `"id":1`) {
		t.Errorf("body = %s", data)
	}
}

func TestClient_Put(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing Content-Type header")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "solved" {
			t.Errorf("status = %q, want solved", body["status"])
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	if _, _, err := c.Put(context.Background(), "/x", map[string]string{"status": "solved"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"key": "SUP-1"})
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	data, status, err := c.Post(context.Background(), "/rest/api/2/issue", map[string]any{"fields": map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 201 {
		t.Errorf("status = %d, want 201", status)
	}
	var result map[string]string
	json.Unmarshal(data, &result)
	if result["key"] != "SUP-1" {
		t.Errorf("key = %q, want SUP-1", result["key"])
	}
}

func TestClient_BasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "agent@acme.test/token" || pass != "secret" {
			t.Errorf("basic auth = %q/%q (%v)", user, pass, ok)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL, User: "agent@acme.test/token", Password: "secret"})
	if _, _, err := c.Get(context.Background(), "/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AbsoluteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("query = %s, want page=2", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: "http://unused.invalid"})
	if _, _, err := c.Get(context.Background(), server.URL+"/api/v2/views/1/tickets.json?page=2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_CredentialsStayOnEndpointHost(t *testing.T) {
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("credentials sent to a foreign host")
		}
		io.WriteString(w, "payload")
	}))
	defer foreign.Close()

	own := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("credentials missing on endpoint host")
		}
		io.WriteString(w, "payload")
	}))
	defer own.Close()

	c := New(config.Endpoint{URL: own.URL, User: "agent", Password: "secret"})
	ctx := context.Background()
	if _, _, err := c.Get(ctx, foreign.URL+"/api/v2/views/1/tickets.json?page=2"); err != nil {
		t.Fatalf("Get foreign: %v", err)
	}
	if _, err := c.Download(ctx, foreign.URL+"/attachments/token/abc/?name=log.txt", io.Discard); err != nil {
		t.Fatalf("Download foreign: %v", err)
	}
	if _, err := c.Download(ctx, own.URL+"/attachments/token/abc/?name=log.txt", io.Discard); err != nil {
		t.Fatalf("Download own: %v", err)
	}
	if _, _, err := c.Get(ctx, "/api/v2/users/me.json"); err != nil {
		t.Fatalf("Get own: %v", err)
	}
}

func TestClient_ZendeskErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error":       "RecordNotFound",
			"description": "Not found",
		})
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	_, status, err := c.Get(context.Background(), "/api/v2/tickets/9.json")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
	if err.Error() != "RecordNotFound: Not found" {
		t.Errorf("error = %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false, want true")
	}
}

func TestClient_JiraErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"errorMessages": []string{},
			"errors": map[string]string{
				"summary":   "You must specify a summary of the issue.",
				"issuetype": "valid issue type is required",
			},
		})
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	_, _, err := c.Post(context.Background(), "/rest/api/2/issue", map[string]any{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := "HTTP 400: issuetype: valid issue type is required; summary: You must specify a summary of the issue."
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if IsNotFound(err) {
		t.Error("IsNotFound() = true for a 400")
	}
}

func TestClient_PlainErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	_, _, err := c.Get(context.Background(), "/")
	if err == nil || err.Error() != "HTTP 502: upstream down" {
		t.Errorf("error = %v", err)
	}
}

func TestClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "file-contents")
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	var buf bytes.Buffer
	n, err := c.Download(context.Background(), server.URL+"/attachments/token/abc/?name=log.txt", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(len("file-contents")) || buf.String() != "file-contents" {
		t.Errorf("downloaded %d bytes: %q", n, buf.String())
	}
}

func TestClient_TransfersOutlastRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		if r.Method == http.MethodPost {
			io.WriteString(w, "[]")
			return
		}
		io.WriteString(w, "large-file")
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	c.http.Timeout = 50 * time.Millisecond

	if _, _, err := c.Get(context.Background(), "/api"); err == nil {
		t.Fatal("expected API call to time out")
	}
	var buf bytes.Buffer
	if _, err := c.Download(context.Background(), "/attachments/1", &buf); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buf.String() != "large-file" {
		t.Errorf("downloaded %q", buf.String())
	}
	if _, _, err := c.Upload(context.Background(), "/upload", "file", "big.bin", strings.NewReader("data"), nil); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Download(ctx, "/attachments/1", io.Discard); err == nil {
		t.Error("expected Download to honour the context deadline")
	}
}

func TestClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Atlassian-Token") != "no-check" {
			t.Errorf("missing extra header")
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "screenshot.png" || string(data) != "png-bytes" {
			t.Errorf("uploaded %q = %q", hdr.Filename, data)
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "[]")
	}))
	defer server.Close()

	c := New(config.Endpoint{URL: server.URL})
	header := http.Header{"X-Atlassian-Token": {"no-check"}}
	if _, _, err := c.Upload(context.Background(), "/upload", "file", "screenshot.png", strings.NewReader("png-bytes"), header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ConnectionError(t *testing.T) {
	c := New(config.Endpoint{URL: "http://localhost:1"})
	_, _, err := c.Get(context.Background(), "/")
	if err == nil {
		t.Fatal("expected connection error")
	}
}
