package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring entry repeats.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyWeekly   Frequency = "weekly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyBiWeekly, FrequencyWeekly:
		return true
	}

	return false
}

// Next returns the occurrence following last.
//
// Monthly keeps last's own day-of-month; days the following month does not
// have roll forward into the month after (Jan 31 -> Mar 3).
func (f Frequency) Next(last time.Time) (time.Time, error) {
	switch f {
	case FrequencyMonthly:
		return time.Date(last.Year(), last.Month()+1, last.Day(), 0, 0, 0, 0, time.UTC), nil
	case FrequencyBiWeekly:
		return last.AddDate(0, 0, 14), nil
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7), nil
	}

	return time.Time{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidEntry, f)
}

// Recurrence is the metadata carried by every entry of a recurring series.
type Recurrence struct {
	Frequency Frequency
	// AnchorDay is the day-of-month (monthly) or day-of-week, Sunday=0
	// (weekly, bi-weekly). It is informational: occurrences are derived from
	// the previous occurrence's date.
	AnchorDay     int
	SeriesEndDate string // optional, YYYY-MM-DD
}

// Validate checks the recurrence is usable for projection.
func (r *Recurrence) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidEntry, r.Frequency)
	}

	switch r.Frequency {
	case FrequencyMonthly:
		if r.AnchorDay < 1 || r.AnchorDay > 31 {
			return fmt.Errorf("%w: monthly anchor day %d out of range", ErrInvalidEntry, r.AnchorDay)
		}
	default:
		if r.AnchorDay < 0 || r.AnchorDay > 6 {
			return fmt.Errorf("%w: weekday anchor %d out of range", ErrInvalidEntry, r.AnchorDay)
		}
	}

	if r.SeriesEndDate != "" {
		if _, err := ParseDate(r.SeriesEndDate); err != nil {
			return err
		}
	}

	return nil
}

// Entry is a single ledger line owned by a user.
type Entry struct {
	ID          uuid.UUID
	UserID      string
	Date        string // YYYY-MM-DD
	Description string
	Amount      decimal.Decimal // negative = outflow
	Category    string
	Confirmed   bool
	Recurring   *Recurrence // nil for one-off entries
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// IsRecurring reports whether the entry belongs to a recurring series.
func (e *Entry) IsRecurring() bool {
	return e.Recurring != nil
}

// SeriesKey identifies the recurring series e belongs to.
func (e *Entry) SeriesKey() string {
	return SeriesKey(e.Description, e.Amount, e.Category)
}

// SameSeries reports whether e and other share description, amount and category.
func (e *Entry) SameSeries(other *Entry) bool {
	return e.Description == other.Description &&
		e.Amount.Equal(other.Amount) &&
		e.Category == other.Category
}

// SeriesKey joins the series identity tuple into the key used for tombstones.
func SeriesKey(description string, amount decimal.Decimal, category string) string {
	return strings.Join([]string{description, amount.String(), category}, "|")
}

// CategoryTotal is the absolute outflow recorded against a category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}
