package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// Series implements the user-facing operations on a whole recurring series.
type Series struct {
	entries    EntryStore
	tombstones TombstoneStore
}

func NewSeries(entries EntryStore, tombstones TombstoneStore) *Series {
	return &Series{entries: entries, tombstones: tombstones}
}

// DeleteOccurrence removes a single entry and tombstones its date so the
// projector never regenerates it.
func (s *Series) DeleteOccurrence(ctx context.Context, userID string, e *ledger.Entry) error {
	if err := s.tombstones.AddDeletedDate(ctx, userID, e.SeriesKey(), e.Date); err != nil {
		return ledger.StorageError("add tombstone", err)
	}

	if err := s.entries.DeleteEntry(ctx, userID, e.ID); err != nil {
		return ledger.StorageError("delete occurrence", err)
	}

	return nil
}

// DeleteSeries removes every recurring entry sharing e's description, amount
// and category. Tombstones recorded for the series are kept.
func (s *Series) DeleteSeries(ctx context.Context, userID string, e *ledger.Entry) (int, error) {
	entries, err := s.entries.ListEntries(ctx, userID, ledger.ListFilter{})
	if err != nil {
		return 0, ledger.StorageError("list entries", err)
	}

	deleted := 0

	for _, candidate := range entries {
		if !candidate.IsRecurring() || !candidate.SameSeries(e) {
			continue
		}

		if err := s.entries.DeleteEntry(ctx, userID, candidate.ID); err != nil {
			return deleted, ledger.StorageError("delete series entry", err)
		}

		deleted++
	}

	return deleted, nil
}

// CreateSeries inserts one confirmed entry per occurrence from params.Date
// through the series end date, or the end of asOf's month when the series is
// open-ended. Elapsed occurrences are back-filled.
func (s *Series) CreateSeries(ctx context.Context, userID string, params ledger.CreateParams, asOf time.Time) ([]uuid.UUID, error) {
	if params.Recurring == nil {
		return nil, fmt.Errorf("%w: recurrence is required", ledger.ErrInvalidEntry)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	dates, err := occurrenceDates(params.Date, params.Recurring, asOf)
	if err != nil {
		return nil, err
	}

	tmpl := params.Entry(userID)

	entries := make([]*ledger.Entry, len(dates))
	for i, d := range dates {
		entries[i] = occurrence(tmpl, userID, d)
	}

	if err := s.entries.CreateEntries(ctx, entries); err != nil {
		return nil, ledger.StorageError("create series", err)
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	return ids, nil
}

// occurrenceDates lists the dates of a series seeded at start. An open-ended
// series starting after the current month still gets its first occurrence.
func occurrenceDates(start string, r *ledger.Recurrence, asOf time.Time) ([]string, error) {
	if r.SeriesEndDate != "" && start > r.SeriesEndDate {
		return nil, fmt.Errorf("%w: series ends before it starts", ledger.ErrInvalidEntry)
	}

	until := boundary(r, asOf)
	if start > until {
		return []string{start}, nil
	}

	current, err := ledger.ParseDate(start)
	if err != nil {
		return nil, err
	}

	var dates []string

	for date := start; date <= until; date = ledger.FormatDate(current) {
		dates = append(dates, date)

		current, err = r.Frequency.Next(current)
		if err != nil {
			return nil, err
		}
	}

	return dates, nil
}
