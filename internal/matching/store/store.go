package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, userID, description string) (string, error) {
	query := `
		SELECT category
		FROM category_rules
		WHERE user_id = $1 AND $2 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var categoryID string

	err := s.db.QueryRowContext(ctx, query, userID, description).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return categoryID, nil
}

func (s *Store) CreateRule(ctx context.Context, userID, pattern, categoryID string) error {
	query := `
		INSERT INTO category_rules (user_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, userID, pattern, categoryID)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
