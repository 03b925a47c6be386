// Package file stores the ledger as one indented JSON document and the
// digest recipient as a plain text chat id.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dailyspend/internal/core"
	"dailyspend/internal/storage"
)

type Store struct {
	ledgerPath    string
	recipientPath string
}

var _ storage.Store = (*Store)(nil)

// New returns a store rooted at the given paths. Parent directories are
// created on first save.
func New(ledgerPath, recipientPath string) *Store {
	return &Store{ledgerPath: ledgerPath, recipientPath: recipientPath}
}

func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	data, err := os.ReadFile(s.ledgerPath)
	if errors.Is(err, os.ErrNotExist) {
		return core.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.ledgerPath, errors.Join(storage.ErrCorrupt, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return core.Ledger{}, nil
	}

	var l core.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		slog.ErrorContext(ctx, "Ledger file is not valid JSON", "path", s.ledgerPath, "error", err)
		return nil, fmt.Errorf("decode ledger %s: %w", s.ledgerPath, errors.Join(storage.ErrCorrupt, err))
	}
	l, err = storage.Prepare(l)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: %w", s.ledgerPath, err)
	}
	return l, nil
}

// Save replaces the document atomically: a temp file in the same directory
// is written, synced and renamed over the old one.
func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	if l == nil {
		l = core.Ledger{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := writeAtomic(s.ledgerPath, data); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	slog.DebugContext(ctx, "Ledger saved", "path", s.ledgerPath, "months", len(l))
	return nil
}

func (s *Store) LoadRecipient(_ context.Context) (int64, bool, error) {
	data, err := os.ReadFile(s.recipientPath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read recipient: %w", err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse recipient %q: %w", raw, err)
	}
	return id, true, nil
}

func (s *Store) SaveRecipient(_ context.Context, chatID int64) error {
	if err := writeAtomic(s.recipientPath, []byte(strconv.FormatInt(chatID, 10))); err != nil {
		return fmt.Errorf("write recipient: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
