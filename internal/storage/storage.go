// Package storage mirrors saved project sources into an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/internal/languages"
	"github.com/dcode-ide/apiserver/types"
)

// Object store backends.
const (
	BackendMinio = "minio"
	BackendGCS   = "gcs"
)

const sourceContentType = "text/plain; charset=utf-8"

// ErrObjectNotFound is returned by Read when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage defines the object operations the mirror needs from a backend.
// Sources are small, so bodies travel as byte slices. Delete of a missing key
// succeeds.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// CodeMirror keeps a copy of each project's source under a stable key.
type CodeMirror struct {
	backend ObjectStorage
}

// NewCodeMirror constructs a mirror over the provided backend.
func NewCodeMirror(backend ObjectStorage) *CodeMirror {
	return &CodeMirror{backend: backend}
}

// New builds the configured backend, ensures its bucket and returns a mirror.
// It returns nil, nil when no backend is configured.
func New(ctx context.Context, cfg config.StorageConfig) (*CodeMirror, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case BackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case BackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Backend, err)
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewCodeMirror(backend), nil
}

// Key returns the object key of a project's source file.
func Key(ownerID, projectID, language string) string {
	return path.Join("projects", ownerID, projectID, "main."+languages.Extension(language))
}

// Save writes the project's current code.
func (m *CodeMirror) Save(ctx context.Context, project types.Project) error {
	key := Key(project.OwnerID, project.ID, project.Language)
	if err := m.backend.Put(ctx, key, []byte(project.Code), sourceContentType); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Load reads back the mirrored source of a project. A project that was never
// mirrored, or has been removed, yields ErrObjectNotFound.
func (m *CodeMirror) Load(ctx context.Context, project types.Project) (string, error) {
	key := Key(project.OwnerID, project.ID, project.Language)
	data, err := m.backend.Read(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

// Remove deletes the mirrored source of a project.
func (m *CodeMirror) Remove(ctx context.Context, project types.Project) error {
	key := Key(project.OwnerID, project.ID, project.Language)
	if err := m.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Bucket returns the configured bucket name.
func (m *CodeMirror) Bucket() string {
	return m.backend.Bucket()
}

// Close releases the backend's connections, if it holds any.
func (m *CodeMirror) Close() error {
	if c, ok := m.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
