// Package recording resolves and reads call recording files captured by
// the switch's MixMonitor feature and paired up in callgen.Recording
// entries. It does not write, upload or archive recordings.
package recording

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Store abstracts recording file storage backends.
type Store interface {
	// LocalPath returns the local filesystem path if the file exists on
	// disk. Returns "" if not available locally.
	LocalPath(path string) string

	// URL returns a presigned URL for the recording. Returns "" for
	// local-only backends.
	URL(ctx context.Context, path string) (string, error)

	// Open returns a reader for the recording.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks whether the recording is present in this backend.
	Exists(ctx context.Context, path string) bool

	Type() string
}

// Config selects and configures the recording storage backend.
type Config struct {
	LocalDir string
	S3Bucket string
	S3Region string
}

func (c Config) s3Enabled() bool { return c.S3Bucket != "" }

// New builds the Store a Config describes: local filesystem when no S3
// bucket is set, S3 otherwise.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (Store, error) {
	if !cfg.s3Enabled() {
		return NewLocalStore(cfg.LocalDir), nil
	}

	s3store, err := NewS3Store(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("recording S3 store init: %w", err)
	}
	return s3store, nil
}

// LocalStore stores recordings on the local filesystem, rooted at dir.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// safePath resolves path to an absolute location under dir, rejecting
// path traversal.
func (s *LocalStore) safePath(path string) (string, error) {
	full := filepath.Join(s.dir, filepath.FromSlash(path))
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	base, err := filepath.Abs(s.dir)
	if err != nil {
		return "", fmt.Errorf("invalid base: %w", err)
	}
	if !strings.HasPrefix(abs, base+string(filepath.Separator)) && abs != base {
		return "", fmt.Errorf("path traversal rejected: %q", path)
	}
	return abs, nil
}

func (s *LocalStore) LocalPath(path string) string {
	full, err := s.safePath(path)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(full); err == nil {
		return full
	}
	return ""
}

func (s *LocalStore) URL(ctx context.Context, path string) (string, error) {
	return "", nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.safePath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *LocalStore) Exists(ctx context.Context, path string) bool {
	full, err := s.safePath(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (s *LocalStore) Type() string { return "local" }
