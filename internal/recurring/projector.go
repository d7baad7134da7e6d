package recurring

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

// Projector materializes upcoming occurrences of recurring entries.
type Projector struct {
	entries    EntryStore
	tombstones TombstoneStore
	metrics    *metrics.Registry
}

func NewProjector(entries EntryStore, tombstones TombstoneStore, m *metrics.Registry) *Projector {
	return &Projector{entries: entries, tombstones: tombstones, metrics: m}
}

// Reconcile inserts every missing future occurrence of the user's recurring
// series up to the series end date or the end of asOf's month, and returns how
// many entries were inserted.
//
// Candidates on or before asOf's date are never inserted; elapsed gaps are
// only filled when a series is created.
func (p *Projector) Reconcile(ctx context.Context, userID string, asOf time.Time) (int, error) {
	entries, err := p.entries.ListEntries(ctx, userID, ledger.ListFilter{})
	if err != nil {
		return 0, ledger.StorageError("list entries", err)
	}

	deleted, err := p.tombstones.DeletedDates(ctx, userID)
	if err != nil {
		return 0, ledger.StorageError("read tombstones", err)
	}

	today := ledger.Today(asOf)

	// Inserted occurrences join the working set so that later templates of
	// the same series see them as the last occurrence.
	working := slices.Clone(entries)
	inserted := 0

	for _, tmpl := range entries {
		if !tmpl.IsRecurring() || !tmpl.Confirmed {
			continue
		}

		if err := tmpl.Recurring.Validate(); err != nil {
			slog.WarnContext(ctx, "skipping malformed recurring entry", "entry_id", tmpl.ID, "error", err)
			p.metrics.RecordSkipped("malformed")

			continue
		}

		n, err := p.project(ctx, userID, tmpl, &working, deleted[tmpl.SeriesKey()], today, boundary(tmpl.Recurring, asOf))
		inserted += n

		if err != nil {
			p.metrics.RecordInserted(inserted)
			return inserted, err
		}
	}

	p.metrics.RecordInserted(inserted)

	if inserted > 0 {
		slog.InfoContext(ctx, "recurring reconciled", "user_id", userID, "inserted", inserted)
	}

	return inserted, nil
}

func (p *Projector) project(
	ctx context.Context,
	userID string,
	tmpl *ledger.Entry,
	working *[]*ledger.Entry,
	tombstoned []string,
	today, until string,
) (int, error) {
	last, err := ledger.ParseDate(lastOccurrence(*working, tmpl))
	if err != nil {
		slog.WarnContext(ctx, "skipping recurring entry with bad date", "entry_id", tmpl.ID, "error", err)
		p.metrics.RecordSkipped("malformed")

		return 0, nil
	}

	freq := tmpl.Recurring.Frequency
	inserted := 0

	for candidate, err := freq.Next(last); err == nil; candidate, err = freq.Next(candidate) {
		date := ledger.FormatDate(candidate)
		if date > until {
			break
		}

		switch {
		case date <= today:
			p.metrics.RecordSkipped("elapsed")
		case slices.Contains(tombstoned, date):
			p.metrics.RecordSkipped("tombstoned")
		case exists(*working, tmpl, date):
			p.metrics.RecordSkipped("exists")
		default:
			e := occurrence(tmpl, userID, date)
			if err := p.entries.CreateEntry(ctx, e); err != nil {
				return inserted, ledger.StorageError("create occurrence", err)
			}

			*working = append(*working, e)
			inserted++
		}
	}

	return inserted, nil
}
