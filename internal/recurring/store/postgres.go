package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres keeps tombstones in the recurring_deletions table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) DeletedDates(ctx context.Context, userID string) (map[string][]string, error) {
	query := `
		SELECT series_key, to_char(date, 'YYYY-MM-DD')
		FROM recurring_deletions
		WHERE user_id = $1
		ORDER BY series_key, date
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tombstones: %w", err)
	}
	defer rows.Close()

	deleted := make(map[string][]string)

	for rows.Next() {
		var key, date string
		if err := rows.Scan(&key, &date); err != nil {
			return nil, fmt.Errorf("scanning tombstone: %w", err)
		}

		deleted[key] = append(deleted[key], date)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tombstone rows: %w", err)
	}

	return deleted, nil
}

func (s *Postgres) AddDeletedDate(ctx context.Context, userID, seriesKey, date string) error {
	query := `
		INSERT INTO recurring_deletions (user_id, series_key, date, created_at)
		VALUES ($1, $2, $3::date, NOW())
		ON CONFLICT (user_id, series_key, date) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, userID, seriesKey, date); err != nil {
		return fmt.Errorf("adding tombstone: %w", err)
	}

	return nil
}
