// Package archive keeps a copy of migrated attachments in S3 compatible
// object storage.
package archive

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultBucket is used when no bucket is configured.
const DefaultBucket = "zjm-attachments"

// Config locates the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store uploads files to one bucket, creating it on first use.
type Store struct {
	client *minio.Client
	bucket string
	ready  bool
}

// New connects to the object store described by cfg.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("archive endpoint is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive client: %w", err)
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Bucket returns the bucket files are written to.
func (s *Store) Bucket() string {
	return s.bucket
}

// Ready makes sure the bucket exists and is reachable.
func (s *Store) Ready(ctx context.Context) error {
	return s.ensureBucket(ctx)
}

func (s *Store) ensureBucket(ctx context.Context) error {
	if s.ready {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	s.ready = true
	return nil
}

// Put uploads the file at localPath as objectName.
func (s *Store) Put(ctx context.Context, objectName, localPath string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	opts := minio.PutObjectOptions{ContentType: ContentType(localPath)}
	if _, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, opts); err != nil {
		return fmt.Errorf("archive %s: %w", objectName, err)
	}
	return nil
}

// ObjectName places an attachment under <project>/<ticket id>/<file name>.
func ObjectName(project string, ticketID int64, fileName string) string {
	return path.Join(project, strconv.FormatInt(ticketID, 10), filepath.Base(fileName))
}

// ContentType guesses the media type from the file extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
