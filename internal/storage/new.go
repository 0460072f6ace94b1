package storage

import (
	"context"
	"fmt"

	"github.com/Harshith014/resumeUploader/config"
)

// New builds the backend selected by cfg.Backend and makes sure its bucket
// or directory exists.
func New(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case config.StorageLocal, "":
		backend, err = NewLocalDisk(cfg.Local)
	case config.StorageMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case config.StorageS3:
		backend, err = NewS3Client(ctx, cfg.S3)
	case config.StorageGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Backend, err)
	}

	s := NewStorage(backend)
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure %s bucket: %w", cfg.Backend, err)
	}
	return s, nil
}

// LocalDir returns the directory to serve when the backend is local disk.
func (s *Storage) LocalDir() (dir, urlPrefix string, ok bool) {
	local, ok := s.backend.(*LocalDisk)
	if !ok {
		return "", "", false
	}
	return local.Dir(), local.URLPrefix(), true
}
