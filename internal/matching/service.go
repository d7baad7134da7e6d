package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

var ErrUnknownCategory = errors.New("unknown category")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in
	// description, or "" when no rule applies.
	FindMatch(ctx context.Context, userID, description string) (string, error)
	CreateRule(ctx context.Context, userID, pattern, categoryID string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category learned for description, or "" if none.
func (s *Service) Suggest(ctx context.Context, userID, description string) (string, error) {
	return s.repo.FindMatch(ctx, userID, description)
}

// Learn remembers that descriptions containing pattern belong to the given
// category, accepted by id, display name or legacy alias.
func (s *Service) Learn(ctx context.Context, userID, pattern, categoryValue string) (category.Category, error) {
	c, ok := category.Resolve(categoryValue)
	if !ok {
		return category.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryValue)
	}

	if err := s.repo.CreateRule(ctx, userID, strings.TrimSpace(pattern), c.ID); err != nil {
		return category.Category{}, err
	}

	return c, nil
}

// Categorize fills in the category of every uncategorized row from the
// user's rules, falling back to category.Other.
func (s *Service) Categorize(ctx context.Context, userID string, params []ledger.CreateParams) error {
	for i := range params {
		if params[i].Category != "" {
			continue
		}

		match, err := s.repo.FindMatch(ctx, userID, params[i].Description)
		if err != nil {
			return fmt.Errorf("matching %q: %w", params[i].Description, err)
		}

		if match == "" {
			match = category.Other
		}

		params[i].Category = match
	}

	return nil
}
