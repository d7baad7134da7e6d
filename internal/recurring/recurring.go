package recurring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

//go:generate mockgen -source=recurring.go -destination=store_mock.go -package=recurring
type EntryStore interface {
	ListEntries(ctx context.Context, userID string, filter ledger.ListFilter) ([]*ledger.Entry, error)
	CreateEntry(ctx context.Context, e *ledger.Entry) error
	CreateEntries(ctx context.Context, entries []*ledger.Entry) error
	DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error
}

// TombstoneStore remembers occurrence dates a user removed from a series so
// they are never projected again.
type TombstoneStore interface {
	DeletedDates(ctx context.Context, userID string) (map[string][]string, error)
	AddDeletedDate(ctx context.Context, userID, seriesKey, date string) error
}

var amountTolerance = decimal.RequireFromString("0.01")

// AnchorFor returns the anchor day implied by an occurrence on date: the
// day-of-month for monthly series, the weekday (Sunday=0) otherwise.
func AnchorFor(f ledger.Frequency, date time.Time) int {
	if f == ledger.FrequencyMonthly {
		return date.Day()
	}

	return int(date.Weekday())
}

// boundary is the last date a series may produce occurrences on.
func boundary(r *ledger.Recurrence, asOf time.Time) string {
	if r.SeriesEndDate != "" {
		return r.SeriesEndDate
	}

	return ledger.EndOfMonth(asOf)
}

// lastOccurrence returns the greatest date among entries sharing tmpl's
// series, or tmpl's own date when nothing else matches.
func lastOccurrence(entries []*ledger.Entry, tmpl *ledger.Entry) string {
	last := tmpl.Date

	for _, e := range entries {
		if e.SameSeries(tmpl) && e.Date > last {
			last = e.Date
		}
	}

	return last
}

func exists(entries []*ledger.Entry, tmpl *ledger.Entry, date string) bool {
	for _, e := range entries {
		if e.Date != date || e.Description != tmpl.Description || e.Category != tmpl.Category {
			continue
		}

		if e.Amount.Sub(tmpl.Amount).Abs().LessThanOrEqual(amountTolerance) {
			return true
		}
	}

	return false
}

// occurrence builds a confirmed copy of tmpl dated on date.
func occurrence(tmpl *ledger.Entry, userID, date string) *ledger.Entry {
	r := *tmpl.Recurring

	return &ledger.Entry{
		UserID:      userID,
		Date:        date,
		Description: tmpl.Description,
		Amount:      tmpl.Amount,
		Category:    tmpl.Category,
		Confirmed:   true,
		Recurring:   &r,
	}
}
