package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Bucket() string
	// URL returns the reference clients use to fetch key.
	URL(key string) string
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
	newKey  func(field, filename string) string
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend, newKey: NewObjectKey}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Store uploads an asset for a form field under a fresh key and returns the
// reference to record on the user.
func (s *Storage) Store(ctx context.Context, field, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := s.newKey(field, filename)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("store %s: %w", field, err)
	}
	return s.backend.URL(key), nil
}

// Discard deletes an asset previously returned by Store.
func (s *Storage) Discard(ctx context.Context, ref string) error {
	prefix := s.backend.URL("")
	if !strings.HasPrefix(ref, prefix) {
		return fmt.Errorf("reference %q is not in bucket %s", ref, s.backend.Bucket())
	}
	return s.backend.Delete(ctx, strings.TrimPrefix(ref, prefix))
}

// NewObjectKey returns "<field>s/<field>-<uuid><ext>".
func NewObjectKey(field, filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	return fmt.Sprintf("%ss/%s-%s%s", field, field, uuid.NewString(), ext)
}

// Keys are never reused, so stored objects can be cached indefinitely.
const immutableCacheControl = "public, max-age=31536000, immutable"

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
