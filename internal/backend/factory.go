package backend

import (
	"context"
	"fmt"

	applog "dailyspend/internal/log"
	"dailyspend/internal/storage/file"
	"dailyspend/internal/storage/memory"
	"dailyspend/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend opens the configured store and checks that its contents load.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case FileBackend:
		res = f.createFileBackend(config)
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		res = f.createMemoryBackend()
	}
	if err != nil {
		return nil, err
	}

	if _, err := res.Store.Load(ctx); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("load ledger from %s backend: %w", config.Type, err)
	}
	return res, nil
}

func (f *DefaultFactory) createFileBackend(config Config) *BackendResult {
	f.logger.Info("Initialized file backend",
		"ledger_file", config.LedgerFile,
		"recipient_file", config.RecipientFile)
	return &BackendResult{Store: file.New(config.LedgerFile, config.RecipientFile)}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	f.logger.Warn("Using memory backend, the ledger is lost on exit")
	return &BackendResult{Store: memory.New(nil)}
}
