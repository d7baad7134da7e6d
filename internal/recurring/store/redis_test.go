package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/recurring/store"
)

func TestRedis_AddDeletedDate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := store.NewRedis(db)

	mock.ExpectTxPipeline()
	mock.ExpectSAdd("tally:tombstones:idx:user-1", "Rent|-1200|rent-mortgage").SetVal(1)
	mock.ExpectSAdd("tally:tombstones:set:6:user-1:Rent|-1200|rent-mortgage", "2026-02-15").SetVal(1)
	mock.ExpectTxPipelineExec()

	err := s.AddDeletedDate(context.Background(), "user-1", "Rent|-1200|rent-mortgage", "2026-02-15")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_AddDeletedDate_KeysDoNotAlias(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := store.NewRedis(db)

	mock.ExpectTxPipeline()
	mock.ExpectSAdd("tally:tombstones:idx:a:b", "c").SetVal(1)
	mock.ExpectSAdd("tally:tombstones:set:3:a:b:c", "2026-02-15").SetVal(1)
	mock.ExpectTxPipelineExec()

	mock.ExpectTxPipeline()
	mock.ExpectSAdd("tally:tombstones:idx:a", "b:c").SetVal(1)
	mock.ExpectSAdd("tally:tombstones:set:1:a:b:c", "2026-02-15").SetVal(1)
	mock.ExpectTxPipelineExec()

	require.NoError(t, s.AddDeletedDate(context.Background(), "a:b", "c", "2026-02-15"))
	require.NoError(t, s.AddDeletedDate(context.Background(), "a", "b:c", "2026-02-15"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_DeletedDates(t *testing.T) {
	t.Run("returns sorted dates per series", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		s := store.NewRedis(db)

		mock.ExpectSMembers("tally:tombstones:idx:user-1").SetVal([]string{"Rent|-1200|rent-mortgage"})
		mock.ExpectSMembers("tally:tombstones:set:6:user-1:Rent|-1200|rent-mortgage").
			SetVal([]string{"2026-03-15", "2026-02-15"})

		got, err := s.DeletedDates(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"Rent|-1200|rent-mortgage": {"2026-02-15", "2026-03-15"},
		}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty index", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		s := store.NewRedis(db)

		mock.ExpectSMembers("tally:tombstones:idx:user-2").SetVal([]string{})

		got, err := s.DeletedDates(context.Background(), "user-2")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("redis error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		s := store.NewRedis(db)

		mock.ExpectSMembers("tally:tombstones:idx:user-1").SetErr(errors.New("connection refused"))

		_, err := s.DeletedDates(context.Background(), "user-1")
		assert.Error(t, err)
	})
}
