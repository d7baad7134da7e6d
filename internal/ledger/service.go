package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, userID string, id uuid.UUID) (*Entry, error)
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error

	// ListEntries returns the user's entries ordered by date descending.
	ListEntries(ctx context.Context, userID string, filter ListFilter) ([]*Entry, error)

	BeginImport(ctx context.Context, userID, minDate, maxDate string) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	Category    string
	Confirmed   bool
	Recurring   *Recurrence
}

// ListFilter narrows a listing. Empty dates are unbounded.
type ListFilter struct {
	StartDate string
	EndDate   string
	Confirmed *bool
}

// StorageError tags a repository failure as ErrStorageUnavailable.
// ErrNotFound passes through untouched.
func StorageError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}

	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func (p CreateParams) Validate() error {
	if _, err := ParseDate(p.Date); err != nil {
		return err
	}

	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}

	if p.Recurring != nil {
		return p.Recurring.Validate()
	}

	return nil
}

// Entry builds an unsaved entry for userID from the params.
func (p CreateParams) Entry(userID string) *Entry {
	return &Entry{
		UserID:      userID,
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Category:    p.Category,
		Confirmed:   p.Confirmed,
		Recurring:   p.Recurring,
	}
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := params.Entry(userID)
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, StorageError("create entry", err)
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetEntry(ctx, userID, id)
	if err != nil {
		return nil, StorageError("get entry", err)
	}

	return e, nil
}

func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]*Entry, error) {
	entries, err := s.repo.ListEntries(ctx, userID, filter)
	if err != nil {
		return nil, StorageError("list entries", err)
	}

	return entries, nil
}

func (s *Service) Update(ctx context.Context, e *Entry) error {
	params := CreateParams{
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Recurring:   e.Recurring,
	}
	if err := params.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return StorageError("update entry", err)
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.repo.DeleteEntry(ctx, userID, id); err != nil {
		return StorageError("delete entry", err)
	}

	return nil
}

// DeleteMonth removes every entry dated within month (YYYY-MM) and returns
// how many were removed.
func (s *Service) DeleteMonth(ctx context.Context, userID, month string) (int, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return 0, err
	}

	entries, err := s.repo.ListEntries(ctx, userID, ListFilter{StartDate: start, EndDate: end})
	if err != nil {
		return 0, StorageError("list entries", err)
	}

	for i, e := range entries {
		if err := s.repo.DeleteEntry(ctx, userID, e.ID); err != nil {
			return i, StorageError("delete entry", err)
		}
	}

	return len(entries), nil
}

// CategoryTotals sums confirmed outflows per category as positive amounts,
// largest first.
func (s *Service) CategoryTotals(ctx context.Context, userID string, filter ListFilter) ([]CategoryTotal, error) {
	entries, err := s.repo.ListEntries(ctx, userID, filter)
	if err != nil {
		return nil, StorageError("list entries", err)
	}

	var totals []CategoryTotal

	index := make(map[string]int)

	for _, e := range entries {
		if !e.Confirmed || !e.Amount.IsNegative() {
			continue
		}

		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{Category: e.Category})
		}

		totals[i].Total = totals[i].Total.Add(e.Amount.Abs())
	}

	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})

	return totals, nil
}

type ImportResult struct {
	Imported  []*Entry
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Entry
}

type dupKey struct {
	Date        string
	Amount      string
	Description string
}

func keyOf(date string, amount decimal.Decimal, description string) dupKey {
	return dupKey{Date: date, Amount: amount.String(), Description: description}
}

// ImportBatch stores parsed statement rows. When any row matches an existing
// entry nothing is written and the split between new rows and conflicts is
// returned for the caller to confirm through CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, userID string, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for _, p := range params {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, StorageError("begin import", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, StorageError("find duplicates", err)
	}

	lookup := make(map[dupKey]*Entry, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Description)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	entries := paramsToEntries(userID, newParams)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, StorageError("create entries", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, StorageError("commit import", err)
	}

	return &ImportResult{Imported: entries}, nil
}

// CreateBatch stores params unconditionally in one transaction.
func (s *Service) CreateBatch(ctx context.Context, userID string, params []CreateParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for _, p := range params {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, StorageError("begin import", err)
	}
	defer itx.Rollback()

	entries := paramsToEntries(userID, params)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, StorageError("create entries", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, StorageError("commit import", err)
	}

	return entries, nil
}

func dateRange(params []CreateParams) (string, string) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		minDate = min(minDate, p.Date)
		maxDate = max(maxDate, p.Date)
	}

	return minDate, maxDate
}

func paramsToEntries(userID string, params []CreateParams) []*Entry {
	entries := make([]*Entry, len(params))
	for i, p := range params {
		entries[i] = p.Entry(userID)
	}

	return entries
}

// SortByDateDesc orders entries newest first, keeping insertion order for ties.
func SortByDateDesc(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		return cmp.Compare(b.Date, a.Date)
	})
}
