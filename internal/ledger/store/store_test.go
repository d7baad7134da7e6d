package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store"
)

var entryColumns = []string{
	"id", "user_id", "date", "description", "amount", "category", "confirmed",
	"frequency", "anchor_day", "series_end_date",
	"created_at", "updated_at", "deleted_at",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db, mock
}

func TestStore_GetEntry_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := store.New(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT .* FROM entries").
		WithArgs(id, "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetEntry(context.Background(), "user-1", id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListEntries(t *testing.T) {
	db, mock := newMock(t)
	s := store.New(db)

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(entryColumns).
		AddRow(uuid.New().String(), "user-1", "2024-02-01", "Rent", "-1200.00", "rent-mortgage", true,
			"monthly", 1, nil, created, nil, nil).
		AddRow(uuid.New().String(), "user-1", "2024-01-20", "Coffee", "-3.50", "dining-out", true,
			nil, nil, nil, created, nil, nil)

	mock.ExpectQuery("SELECT .* FROM entries WHERE user_id = \\$1 AND deleted_at IS NULL AND date >= \\$2::date ORDER BY date DESC").
		WithArgs("user-1", "2024-01-01").
		WillReturnRows(rows)

	entries, err := s.ListEntries(context.Background(), "user-1", ledger.ListFilter{StartDate: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NotNil(t, entries[0].Recurring)
	assert.Equal(t, ledger.FrequencyMonthly, entries[0].Recurring.Frequency)
	assert.Equal(t, 1, entries[0].Recurring.AnchorDay)
	assert.Empty(t, entries[0].Recurring.SeriesEndDate)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(-1200)))

	assert.Nil(t, entries[1].Recurring)
	assert.Equal(t, "2024-01-20", entries[1].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteEntry_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := store.New(db)

	id := uuid.New()
	mock.ExpectExec("UPDATE entries SET deleted_at = NOW\\(\\)").
		WithArgs(id, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteEntry(context.Background(), "user-1", id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateEntries_RollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)
	s := store.New(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO entries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.New().String(), time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO entries").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	entries := []*ledger.Entry{
		{UserID: "user-1", Date: "2024-02-01", Description: "Rent", Amount: decimal.NewFromInt(-1200)},
		{UserID: "user-1", Date: "2024-03-01", Description: "Rent", Amount: decimal.NewFromInt(-1200)},
	}

	err := s.CreateEntries(context.Background(), entries)
	require.Error(t, err)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_BeginImport_LockFailure(t *testing.T) {
	db, mock := newMock(t)
	s := store.New(db)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := s.BeginImport(context.Background(), "user-1", "2024-01-01", "2024-01-31")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
