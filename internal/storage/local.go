package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
)

// Storage holds document payloads keyed by opaque storage keys. The services
// only ever validate metadata; bytes go straight through.
type Storage interface {
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// NewKey builds a storage key under the owning user task.
func NewKey(userTaskID uuid.UUID, fileName string) string {
	return filepath.Join(userTaskID.String(), uuid.New().String()+filepath.Ext(fileName))
}

type localStorage struct {
	basePath string
	log      *logger.Logger
}

func NewLocalStorage(basePath string, baseLog *logger.Logger) (Storage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &localStorage{
		basePath: basePath,
		log:      baseLog.With("service", "LocalStorage"),
	}, nil
}

func (s *localStorage) Save(key string, r io.Reader) error {
	path := filepath.Join(s.basePath, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create file directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return nil
}

func (s *localStorage) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, key))
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

func (s *localStorage) Delete(key string) error {
	err := os.Remove(filepath.Join(s.basePath, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}
