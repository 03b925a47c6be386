package sheets

import (
	"context"

	"dailyspend/internal/core"
)

// Ports for the spreadsheet mirror of the ledger event stream.
type (
	EventWriter interface {
		// AppendEvent adds one row for e and returns a reference to it.
		AppendEvent(ctx context.Context, e core.LedgerEvent) (rowRef string, err error)
	}

	// EventIndex reports which events are already mirrored, so redelivered
	// messages do not produce duplicate rows.
	EventIndex interface {
		HasEvent(ctx context.Context, id string) (bool, error)
	}

	// EventLister reads mirrored events back for a month.
	EventLister interface {
		ListEvents(ctx context.Context, monthKey string) ([]core.LedgerEvent, error)
	}

	Mirror interface {
		EventWriter
		EventIndex
		EventLister
	}
)
