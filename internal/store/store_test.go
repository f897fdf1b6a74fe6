package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_AppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "", filepath.Join(t.TempDir(), "data"), "SUP")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	want := []Record{
		{TicketID: 101, IssueKey: "SUP-1", RunID: "run-a", MigratedAt: at},
		{TicketID: 102, IssueKey: "SUP-2", RunID: "run-a", MigratedAt: at},
		{TicketID: 250, IssueKey: "SUP-3", RunID: "run-b", MigratedAt: at.Add(time.Hour)},
	}
	for _, rec := range want {
		if err := s.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadAll = %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].TicketID != want[i].TicketID || got[i].IssueKey != want[i].IssueKey ||
			got[i].RunID != want[i].RunID || !got[i].MigratedAt.Equal(want[i].MigratedAt) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileStore_AppendsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.jsonl")

	for i := int64(1); i <= 2; i++ {
		s, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("NewFileStore: %v", err)
		}
		if err := s.Append(ctx, Record{TicketID: i, IssueKey: "SUP"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
		s.Close()
	}

	s, _ := NewFileStore(path)
	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 || got[0].TicketID != 1 || got[1].TicketID != 2 {
		t.Errorf("records = %+v, want tickets 1 and 2", got)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "none.jsonl"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, err := s.ReadAll(context.Background())
	if err != nil || len(got) != 0 {
		t.Errorf("ReadAll = %v, %v; want no records", got, err)
	}
}

func TestFileStore_CorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	data := `{"ticket_id":1,"issue_key":"SUP-1","migrated_at":"2024-03-01T12:00:00Z"}` + "\n" + `{"ticket_id":2,`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, _ := NewFileStore(path)
	got, err := s.ReadAll(context.Background())
	if err == nil {
		t.Fatal("expected error for truncated record")
	}
	if len(got) != 1 {
		t.Errorf("records before the error = %d, want 1", len(got))
	}
}

func TestOpen_FileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.jsonl")
	s, err := Open(context.Background(), "file://"+path, "unused", "SUP")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	fs, ok := s.(*FileStore)
	if !ok {
		t.Fatalf("Open returned %T, want *FileStore", s)
	}
	if fs.Path() != path {
		t.Errorf("Path() = %q, want %q", fs.Path(), path)
	}
}

func TestOpen_DefaultFileName(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), "", dir, "SUP")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.(*FileStore).Path(); got != filepath.Join(dir, "SUP_migrated_tickets.jsonl") {
		t.Errorf("Path() = %q", got)
	}
}

func TestDiscard(t *testing.T) {
	var s Store = Discard{}
	ctx := context.Background()
	if err := s.Append(ctx, Record{TicketID: 1, IssueKey: "SUP-1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	records, err := s.ReadAll(ctx)
	if err != nil || len(records) != 0 {
		t.Errorf("ReadAll = %v, %v, want nothing", records, err)
	}
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), "mongodb://localhost/zjm", t.TempDir(), "SUP")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestOpen_InvalidRedisURL(t *testing.T) {
	if _, err := NewRedisStore("redis://:bad:port/x", "SUP"); err == nil {
		t.Error("expected error for invalid redis URL")
	}
}

func TestRedisKey(t *testing.T) {
	if got := RedisKey("SUP"); got != "zjm:migrated:SUP" {
		t.Errorf("RedisKey = %q", got)
	}
}
