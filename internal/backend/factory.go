// Package backend builds the blob store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// Config holds what the factory needs from the application config.
type Config struct {
	Type         BackendType
	DataDir      string
	SQLiteDBPath string
}

// FromAppConfig extracts the backend settings.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	bt := BackendType(appConfig.DataBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:         bt,
		DataDir:      appConfig.DataDir,
		SQLiteDBPath: appConfig.SQLiteDBPath,
	}, nil
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is the blob store plus its cleanup and an optional readiness probe.
type Result struct {
	Blobs   storage.BlobStore
	Cleanup CleanupFunc
	Ping    func(ctx context.Context) error
}

// Factory creates blob stores.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Type {
	case FileBackend:
		blobs, err := storage.NewFileBlobStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		f.logger.InfoContext(ctx, "Using file storage", "data_dir", cfg.DataDir)
		return &Result{Blobs: blobs, Cleanup: noop}, nil

	case SQLiteBackend:
		blobs, err := storage.NewSQLiteBlobStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		f.logger.InfoContext(ctx, "Using SQLite storage", "db_path", cfg.SQLiteDBPath)
		return &Result{Blobs: blobs, Cleanup: blobs.Close, Ping: blobs.Ping}, nil

	case MemoryBackend:
		f.logger.WarnContext(ctx, "Using in-memory storage, data is lost on restart")
		return &Result{Blobs: storage.NewMemoryBlobStore(), Cleanup: noop}, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
}

func noop() error { return nil }
