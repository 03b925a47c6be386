// Package storage defines the persistence ports for the ledger and the
// digest recipient. Implementations live in the file, sqlite and memory
// subpackages.
package storage

import (
	"context"
	"errors"

	"dailyspend/internal/core"
)

// ErrCorrupt marks a store whose contents cannot be trusted. Callers must
// fail the operation rather than continue with a partial ledger.
var ErrCorrupt = errors.New("ledger store corrupt")

type (
	// LedgerStore loads and saves the whole ledger document.
	// Load on a store that was never written returns an empty ledger.
	LedgerStore interface {
		Load(ctx context.Context) (core.Ledger, error)
		Save(ctx context.Context, l core.Ledger) error
	}

	// RecipientStore keeps the chat that receives the daily digest.
	RecipientStore interface {
		LoadRecipient(ctx context.Context) (chatID int64, ok bool, err error)
		SaveRecipient(ctx context.Context, chatID int64) error
	}

	// Store bundles both ports for backends that provide them together.
	Store interface {
		LedgerStore
		RecipientStore
	}
)

// Prepare validates and normalizes a freshly decoded ledger. Every store
// runs loaded data through it so corrupt contents fail closed the same way.
func Prepare(l core.Ledger) (core.Ledger, error) {
	if l == nil {
		return core.Ledger{}, nil
	}
	if err := l.Validate(); err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	l.Normalize()
	return l, nil
}
