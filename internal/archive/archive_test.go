package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		project string
		ticket  int64
		file    string
		want    string
	}{
		{"MIB", 10, "log.txt", "MIB/10/log.txt"},
		{"MIB", 10, "../../etc/passwd", "MIB/10/passwd"},
		{"OPS", 7, "tmp/7/100_a.png", "OPS/7/100_a.png"},
	}
	for _, tt := range tests {
		if got := ObjectName(tt.project, tt.ticket, tt.file); got != tt.want {
			t.Errorf("ObjectName(%q, %d, %q) = %q, want %q", tt.project, tt.ticket, tt.file, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("shot.png"); got != "image/png" {
		t.Errorf("ContentType(shot.png) = %q", got)
	}
	if got := ContentType("blob"); got != "application/octet-stream" {
		t.Errorf("ContentType(blob) = %q", got)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without endpoint")
	}

	s, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Bucket() != DefaultBucket {
		t.Errorf("bucket = %q, want %q", s.Bucket(), DefaultBucket)
	}
}

func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("ZJM_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("ZJM_TEST_MINIO_ENDPOINT not set")
	}

	s, err := New(Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("ZJM_TEST_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("ZJM_TEST_MINIO_SECRET_KEY"),
		Bucket:    "zjm-test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("archived"), 0o644); err != nil {
		t.Fatal(err)
	}
	name := ObjectName("TEST", 1, path)
	if err := s.Put(context.Background(), name, path); err != nil {
		t.Fatalf("Put: %v", err)
	}

	obj, err := s.client.GetObject(context.Background(), s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	defer obj.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, obj); err != nil {
		t.Fatalf("read object: %v", err)
	}
	if buf.String() != "archived" {
		t.Errorf("object content = %q", buf.String())
	}
}
