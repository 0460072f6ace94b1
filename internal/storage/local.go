package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Harshith014/resumeUploader/config"
)

// LocalDisk stores objects as files below a directory that the HTTP server
// exposes under URLPrefix.
type LocalDisk struct {
	dir       string
	urlPrefix string
}

// NewLocalDisk constructs a local disk backend from config.
func NewLocalDisk(cfg config.LocalStorageConfig) (*LocalDisk, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("upload directory is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/uploads"
	}
	return &LocalDisk{dir: dir, urlPrefix: prefix}, nil
}

// EnsureBucket creates the upload directory.
func (l *LocalDisk) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes the object through a temporary file so readers never see a
// partial upload.
func (l *LocalDisk) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Delete removes a stored object.
func (l *LocalDisk) Delete(ctx context.Context, key string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	return os.Remove(target)
}

// Bucket returns the upload directory.
func (l *LocalDisk) Bucket() string {
	return l.dir
}

// URL returns the public path of key.
func (l *LocalDisk) URL(key string) string {
	return joinURL(l.urlPrefix, key)
}

// Dir returns the directory served for this backend.
func (l *LocalDisk) Dir() string {
	return l.dir
}

// URLPrefix returns the path the directory is served under.
func (l *LocalDisk) URLPrefix() string {
	return l.urlPrefix
}

func (l *LocalDisk) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.dir, cleaned), nil
}
