package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry reads an entry row from the scanner.
// Expected column order matches selectEntryColumns.
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var frequency, seriesEnd sql.NullString

	var anchorDay sql.NullInt32

	if err := s.Scan(
		&e.ID, &e.UserID, &e.Date, &e.Description, &e.Amount, &e.Category, &e.Confirmed,
		&frequency, &anchorDay, &seriesEnd,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	); err != nil {
		return nil, err
	}

	if frequency.Valid {
		e.Recurring = &ledger.Recurrence{
			Frequency:     ledger.Frequency(frequency.String),
			AnchorDay:     int(anchorDay.Int32),
			SeriesEndDate: seriesEnd.String,
		}
	}

	return &e, nil
}

const selectEntryColumns = `
	id, user_id, to_char(date, 'YYYY-MM-DD'), description, amount, category, confirmed,
	frequency, anchor_day, to_char(series_end_date, 'YYYY-MM-DD'),
	created_at, updated_at, deleted_at
`

const insertEntry = `
	INSERT INTO entries (user_id, date, description, amount, category, confirmed,
		frequency, anchor_day, series_end_date, created_at, updated_at)
	VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9::date, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

// recurrenceArgs flattens the optional recurrence into nullable columns.
func recurrenceArgs(r *ledger.Recurrence) (any, any, any) {
	if r == nil {
		return nil, nil, nil
	}

	var end any
	if r.SeriesEndDate != "" {
		end = r.SeriesEndDate
	}

	return string(r.Frequency), r.AnchorDay, end
}

func insert(ctx context.Context, q queryer, e *ledger.Entry) error {
	frequency, anchor, end := recurrenceArgs(e.Recurring)

	return q.QueryRowContext(ctx, insertEntry,
		e.UserID,
		e.Date,
		e.Description,
		e.Amount,
		e.Category,
		e.Confirmed,
		frequency,
		anchor,
		end,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	if err := insert(ctx, s.db, e); err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

// CreateEntries inserts all entries in one transaction.
func (s *Store) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, e := range entries {
		if err := insert(ctx, dbTx, e); err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, userID string, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM entries
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, userID string, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM entries
		WHERE user_id = $1 AND deleted_at IS NULL`

	args := []any{userID}

	argIdx := 2

	if filter.StartDate != "" {
		query += fmt.Sprintf(" AND date >= $%d::date", argIdx)

		args = append(args, filter.StartDate)
		argIdx++
	}

	if filter.EndDate != "" {
		query += fmt.Sprintf(" AND date <= $%d::date", argIdx)

		args = append(args, filter.EndDate)
		argIdx++
	}

	if filter.Confirmed != nil {
		query += fmt.Sprintf(" AND confirmed = $%d", argIdx)

		args = append(args, *filter.Confirmed)
	}

	query += " ORDER BY date DESC, created_at DESC"

	return queryEntries(ctx, s.db, query, args...)
}

func queryEntries(ctx context.Context, q queryer, query string, args ...any) ([]*ledger.Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		UPDATE entries
		SET date = $1::date, description = $2, amount = $3, category = $4, confirmed = $5,
			frequency = $6, anchor_day = $7, series_end_date = $8::date, updated_at = NOW()
		WHERE id = $9 AND user_id = $10 AND deleted_at IS NULL
	`

	frequency, anchor, end := recurrenceArgs(e.Recurring)

	res, err := s.db.ExecContext(ctx, query,
		e.Date,
		e.Description,
		e.Amount,
		e.Category,
		e.Confirmed,
		frequency,
		anchor,
		end,
		e.ID,
		e.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error {
	query := `
		UPDATE entries
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func importLockKey(userID, minDate, maxDate string) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(minDate))
	h.Write([]byte{0})
	h.Write([]byte(maxDate))

	return int64(h.Sum64())
}

type importTx struct {
	tx     *sql.Tx
	userID string
}

// BeginImport opens a transaction holding an advisory lock on the user's
// date range so concurrent imports of the same statement serialize.
func (s *Store) BeginImport(ctx context.Context, userID, minDate, maxDate string) (ledger.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(userID, minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, userID: userID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []ledger.CreateParams) ([]*ledger.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		Description string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		minDate = min(minDate, p.Date)
		maxDate = max(maxDate, p.Date)

		keySet[lookupKey{Date: p.Date, Amount: p.Amount.String(), Description: p.Description}] = struct{}{}
	}

	query := `SELECT ` + selectEntryColumns + `
		FROM entries
		WHERE user_id = $1 AND deleted_at IS NULL AND date >= $2::date AND date <= $3::date
		ORDER BY date ASC`

	entries, err := queryEntries(ctx, itx.tx, query, itx.userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	var duplicates []*ledger.Entry

	for _, e := range entries {
		k := lookupKey{Date: e.Date, Amount: e.Amount.String(), Description: e.Description}
		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		if err := insert(ctx, itx.tx, e); err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	return nil
}
