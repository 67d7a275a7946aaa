package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrExists возвращается Save, если все имена, предложенные Namer,
	// уже заняты. Существующие объекты при этом не перезаписываются.
	ErrExists = errors.New("storage: object already exists")

	// ErrInvalidName - имя не является плоским именем файла.
	ErrInvalidName = errors.New("storage: invalid object name")
)

// MaxNameAttempts - сколько имён Save пробует, прежде чем вернуть ErrExists
const MaxNameAttempts = 5

// Namer returns the object name for the given attempt, starting at 0.
// Save calls it again with the next attempt when a name is taken.
type Namer func(attempt int) string

// Storage defines the interface for recording storage operations
type Storage interface {
	// Save stores reader under the first free name produced by names and
	// returns that name and the number of bytes written. The object becomes
	// visible only after all bytes are written; on error nothing is left
	// behind. Existing objects are never overwritten.
	Save(ctx context.Context, names Namer, reader io.Reader, contentType string) (string, int64, error)

	// Ping checks that the storage is reachable and writable
	Ping(ctx context.Context) error
}

// Config holds storage configuration
type Config struct {
	Type      string // local, cloudflare_r2
	BasePath  string // For local storage
	Bucket    string // For R2
	AccessKey string // For R2
	SecretKey string // For R2
	Endpoint  string // For R2
}

// Fixed returns a Namer that always proposes name
func Fixed(name string) Namer {
	return func(int) string { return name }
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// validateName требует плоское имя без разделителей и переходов вверх.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// contextReader прерывает чтение, когда ctx отменён.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// countingReader считает прочитанные байты.
type countingReader struct {
	r io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	return n, err
}
