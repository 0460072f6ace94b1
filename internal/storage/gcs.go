package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Harshith014/resumeUploader/config"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSClient stores uploads in a Google Cloud Storage bucket. Public access
// is expected to be granted on the bucket itself.
type GCSClient struct {
	client        *storage.Client
	bucket        *storage.BucketHandle
	name          string
	projectID     string
	publicBaseURL string
}

// NewGCSClient constructs a GCS client from config. Without a credentials
// file the application default credentials are used.
func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*GCSClient, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = joinURL(gcsPublicHost, cfg.Bucket)
	}
	return &GCSClient{
		client:        client,
		bucket:        client.Bucket(cfg.Bucket),
		name:          cfg.Bucket,
		projectID:     cfg.ProjectID,
		publicBaseURL: base,
	}, nil
}

// EnsureBucket creates the bucket when it is missing and a project id is
// configured.
func (g *GCSClient) EnsureBucket(ctx context.Context) error {
	_, err := g.bucket.Attrs(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, storage.ErrBucketNotExist):
		return fmt.Errorf("check bucket %s: %w", g.name, err)
	case strings.TrimSpace(g.projectID) == "":
		return fmt.Errorf("bucket %s does not exist and no gcs project id is set", g.name)
	}
	return g.bucket.Create(ctx, g.projectID, &storage.BucketAttrs{
		UniformBucketLevelAccess: storage.UniformBucketLevelAccess{Enabled: true},
	})
}

func (g *GCSClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	w := g.bucket.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = immutableCacheControl
	if size > 0 && size < int64(w.ChunkSize) {
		// Single request upload for small files.
		w.ChunkSize = 0
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs put %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs put %s: %w", key, err)
	}
	return nil
}

func (g *GCSClient) Delete(ctx context.Context, key string) error {
	return g.bucket.Object(key).Delete(ctx)
}

func (g *GCSClient) Bucket() string {
	return g.name
}

func (g *GCSClient) URL(key string) string {
	return joinURL(g.publicBaseURL, key)
}
