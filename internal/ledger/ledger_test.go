package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestFrequency_Next(t *testing.T) {
	tests := []struct {
		name      string
		frequency ledger.Frequency
		last      string
		want      string
	}{
		{name: "Monthly", frequency: ledger.FrequencyMonthly, last: "2024-01-15", want: "2024-02-15"},
		{name: "MonthlyOverflow", frequency: ledger.FrequencyMonthly, last: "2023-01-31", want: "2023-03-03"},
		{name: "MonthlyLeapOverflow", frequency: ledger.FrequencyMonthly, last: "2024-01-31", want: "2024-03-02"},
		{name: "MonthlyYearEnd", frequency: ledger.FrequencyMonthly, last: "2024-12-10", want: "2025-01-10"},
		{name: "BiWeekly", frequency: ledger.FrequencyBiWeekly, last: "2024-02-20", want: "2024-03-05"},
		{name: "Weekly", frequency: ledger.FrequencyWeekly, last: "2024-12-28", want: "2025-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last, err := ledger.ParseDate(tt.last)
			require.NoError(t, err)

			next, err := tt.frequency.Next(last)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ledger.FormatDate(next))
		})
	}
}

func TestFrequency_Next_Unknown(t *testing.T) {
	last, err := ledger.ParseDate("2024-01-01")
	require.NoError(t, err)

	_, err = ledger.Frequency("yearly").Next(last)
	assert.ErrorIs(t, err, ledger.ErrInvalidEntry)
}

func TestRecurrence_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       ledger.Recurrence
		wantErr bool
	}{
		{name: "Monthly", r: ledger.Recurrence{Frequency: ledger.FrequencyMonthly, AnchorDay: 31}},
		{name: "MonthlyZeroAnchor", r: ledger.Recurrence{Frequency: ledger.FrequencyMonthly, AnchorDay: 0}, wantErr: true},
		{name: "WeeklySunday", r: ledger.Recurrence{Frequency: ledger.FrequencyWeekly, AnchorDay: 0}},
		{name: "WeeklyOutOfRange", r: ledger.Recurrence{Frequency: ledger.FrequencyWeekly, AnchorDay: 7}, wantErr: true},
		{name: "BadEndDate", r: ledger.Recurrence{Frequency: ledger.FrequencyBiWeekly, SeriesEndDate: "soon"}, wantErr: true},
		{name: "UnknownFrequency", r: ledger.Recurrence{Frequency: "daily"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidEntry)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestEntry_SameSeries(t *testing.T) {
	a := &ledger.Entry{Description: "Rent", Amount: decimal.RequireFromString("-1200.00"), Category: "rent-mortgage"}
	b := &ledger.Entry{Description: "Rent", Amount: decimal.RequireFromString("-1200"), Category: "rent-mortgage"}
	c := &ledger.Entry{Description: "Rent", Amount: decimal.RequireFromString("-1250"), Category: "rent-mortgage"}

	assert.True(t, a.SameSeries(b))
	assert.Equal(t, a.SeriesKey(), b.SeriesKey())
	assert.False(t, a.SameSeries(c))
	assert.Equal(t, "Rent|-1200|rent-mortgage", a.SeriesKey())
}

func TestMonthRange(t *testing.T) {
	first, last, err := ledger.MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)

	_, _, err = ledger.MonthRange("February")
	assert.ErrorIs(t, err, ledger.ErrInvalidEntry)
}
