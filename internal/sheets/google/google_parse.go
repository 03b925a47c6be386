package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dailyspend/internal/core"
)

// Column layout of the ledger sheet, A through H.
var header = []any{"ID", "Occurred At", "Kind", "Month", "Day", "Category", "Delta", "Value"}

const columns = "A:H"

func eventRow(e core.LedgerEvent) []any {
	return []any{
		e.ID,
		e.OccurredAt.UTC().Format(time.RFC3339),
		string(e.Kind),
		e.MonthKey,
		e.DayKey,
		e.Category,
		e.Delta,
		e.Value,
	}
}

// parseEventRow converts a sheet row back into an event. Rows written by
// hand or the header row fail to parse and are skipped by callers.
func parseEventRow(row []any) (core.LedgerEvent, error) {
	cols := toStrings(row)
	if len(cols) < len(header) {
		return core.LedgerEvent{}, fmt.Errorf("row has %d columns, want %d", len(cols), len(header))
	}
	occurred, err := time.Parse(time.RFC3339, cols[1])
	if err != nil {
		return core.LedgerEvent{}, fmt.Errorf("occurred at %q: %w", cols[1], err)
	}
	delta, err := strconv.Atoi(cols[6])
	if err != nil {
		return core.LedgerEvent{}, fmt.Errorf("delta %q: %w", cols[6], err)
	}
	value, err := strconv.Atoi(cols[7])
	if err != nil {
		return core.LedgerEvent{}, fmt.Errorf("value %q: %w", cols[7], err)
	}
	if cols[0] == "" || cols[2] == "" {
		return core.LedgerEvent{}, fmt.Errorf("row without id or kind")
	}
	return core.LedgerEvent{
		ID:         cols[0],
		OccurredAt: occurred,
		Kind:       core.EventKind(cols[2]),
		MonthKey:   cols[3],
		DayKey:     cols[4],
		Category:   cols[5],
		Delta:      delta,
		Value:      value,
	}, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
