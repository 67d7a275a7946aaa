package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// LocalStorage implements Storage interface for local filesystem.
//
// Files are written to a temp file in the same directory and published with
// os.Link, which fails if the final name already exists. A reader never sees
// a partially written recording, and two writers never overwrite each other.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "static/uploads"
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(cfg.BasePath, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: cfg.BasePath}, nil
}

// Save stores a file locally
func (s *LocalStorage) Save(ctx context.Context, names Namer, reader io.Reader, contentType string) (string, int64, error) {
	// Directory may have been removed since startup; MkdirAll is a no-op if it exists
	if err := os.MkdirAll(s.basePath, dirPerm); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: reader})
	if err != nil {
		tmp.Close()
		return "", n, fmt.Errorf("failed to write file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", n, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", n, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return "", n, fmt.Errorf("failed to chmod file: %w", err)
	}

	for attempt := 0; attempt < MaxNameAttempts; attempt++ {
		name := names(attempt)
		if err := validateName(name); err != nil {
			return "", n, err
		}

		err := os.Link(tmpPath, filepath.Join(s.basePath, name))
		if err == nil {
			return name, n, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", n, fmt.Errorf("failed to publish file: %w", err)
		}
	}

	return "", n, ErrExists
}

// Ping checks that the storage directory exists and is a directory
func (s *LocalStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Save will recreate it
			return nil
		}
		return fmt.Errorf("failed to stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.basePath)
	}
	return nil
}
