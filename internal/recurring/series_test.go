package recurring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
)

func TestSeries_DeleteOccurrence(t *testing.T) {
	ctrl := gomock.NewController(t)
	entries := recurring.NewMockEntryStore(ctrl)
	tombstones := recurring.NewMockTombstoneStore(ctrl)

	e := rent("2026-01-15")

	gomock.InOrder(
		tombstones.EXPECT().AddDeletedDate(gomock.Any(), userID, "Rent|-1200|rent-mortgage", "2026-01-15").Return(nil),
		entries.EXPECT().DeleteEntry(gomock.Any(), userID, e.ID).Return(nil),
	)

	err := recurring.NewSeries(entries, tombstones).DeleteOccurrence(context.Background(), userID, e)
	assert.NoError(t, err)
}

func TestSeries_DeleteOccurrence_TombstoneFailureKeepsEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	entries := recurring.NewMockEntryStore(ctrl)
	tombstones := recurring.NewMockTombstoneStore(ctrl)

	tombstones.EXPECT().AddDeletedDate(gomock.Any(), userID, gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	err := recurring.NewSeries(entries, tombstones).DeleteOccurrence(context.Background(), userID, rent("2026-01-15"))
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)
}

func TestSeries_DeleteSeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	entries := recurring.NewMockEntryStore(ctrl)
	tombstones := recurring.NewMockTombstoneStore(ctrl)

	series := []*ledger.Entry{
		rent("2025-10-15"), rent("2025-11-15"), rent("2025-12-15"), rent("2026-01-15"), rent("2026-02-15"),
	}

	oneOff := rent("2026-02-01")
	oneOff.Recurring = nil

	other := rent("2026-02-15")
	other.Amount = decimal.RequireFromString("-1250")

	stored := append([]*ledger.Entry{oneOff, other}, series...)

	entries.EXPECT().ListEntries(gomock.Any(), userID, ledger.ListFilter{}).Return(stored, nil)

	for _, e := range series {
		entries.EXPECT().DeleteEntry(gomock.Any(), userID, e.ID).Return(nil)
	}

	n, err := recurring.NewSeries(entries, tombstones).DeleteSeries(context.Background(), userID, series[2])
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSeries_CreateSeries(t *testing.T) {
	asOf := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		params  ledger.CreateParams
		want    []string
		wantErr error
	}{
		{
			name: "BackfillsThroughMonthEnd",
			params: ledger.CreateParams{
				Date: "2025-11-15", Description: "Rent", Amount: decimal.NewFromInt(-1200), Category: "rent-mortgage",
				Recurring: &ledger.Recurrence{Frequency: ledger.FrequencyMonthly, AnchorDay: 15},
			},
			want: []string{"2025-11-15", "2025-12-15", "2026-01-15", "2026-02-15"},
		},
		{
			name: "StopsAtSeriesEndDate",
			params: ledger.CreateParams{
				Date: "2026-01-01", Description: "Gym", Amount: decimal.NewFromInt(-30), Category: "fitness",
				Recurring: &ledger.Recurrence{Frequency: ledger.FrequencyWeekly, AnchorDay: 4, SeriesEndDate: "2026-01-29"},
			},
			want: []string{"2026-01-01", "2026-01-08", "2026-01-15", "2026-01-22", "2026-01-29"},
		},
		{
			name: "FutureStartKeepsFirstOccurrence",
			params: ledger.CreateParams{
				Date: "2026-04-01", Description: "Insurance", Amount: decimal.NewFromInt(-90), Category: "insurance",
				Recurring: &ledger.Recurrence{Frequency: ledger.FrequencyMonthly, AnchorDay: 1},
			},
			want: []string{"2026-04-01"},
		},
		{
			name: "EndsBeforeStart",
			params: ledger.CreateParams{
				Date: "2026-03-01", Description: "Gym", Amount: decimal.NewFromInt(-30),
				Recurring: &ledger.Recurrence{Frequency: ledger.FrequencyWeekly, AnchorDay: 0, SeriesEndDate: "2026-02-01"},
			},
			wantErr: ledger.ErrInvalidEntry,
		},
		{
			name: "MissingRecurrence",
			params: ledger.CreateParams{
				Date: "2026-03-01", Description: "Gym", Amount: decimal.NewFromInt(-30),
			},
			wantErr: ledger.ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			entries := recurring.NewMockEntryStore(ctrl)
			tombstones := recurring.NewMockTombstoneStore(ctrl)

			var created []*ledger.Entry

			if tt.wantErr == nil {
				entries.EXPECT().
					CreateEntries(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, es []*ledger.Entry) error {
						for _, e := range es {
							e.ID = uuid.New()
						}

						created = es

						return nil
					})
			}

			ids, err := recurring.NewSeries(entries, tombstones).CreateSeries(context.Background(), userID, tt.params, asOf)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, ids, len(tt.want))

			dates := make([]string, len(created))
			for i, e := range created {
				dates[i] = e.Date
				assert.Equal(t, ids[i], e.ID)
				assert.True(t, e.Confirmed)
				assert.Equal(t, userID, e.UserID)
				require.NotNil(t, e.Recurring)
			}

			assert.Equal(t, tt.want, dates)
		})
	}
}

func TestAnchorFor(t *testing.T) {
	d := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) // Tuesday

	assert.Equal(t, 10, recurring.AnchorFor(ledger.FrequencyMonthly, d))
	assert.Equal(t, 2, recurring.AnchorFor(ledger.FrequencyWeekly, d))
	assert.Equal(t, 2, recurring.AnchorFor(ledger.FrequencyBiWeekly, d))
}
