package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=entitlement
type Repository interface {
	// GetRecord returns ErrNotFound when the user has no record yet.
	GetRecord(ctx context.Context, userID string) (*Record, error)
	PutRecord(ctx context.Context, r *Record) error
}

type Service struct {
	repo    Repository
	metrics *metrics.Registry
}

func NewService(repo Repository, m *metrics.Registry) *Service {
	return &Service{repo: repo, metrics: m}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// load returns the user's record, or a zero-valued one for a fresh user.
func (s *Service) load(ctx context.Context, userID string) (*Record, bool, error) {
	r, err := s.repo.GetRecord(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Record{UserID: userID}, false, nil
	}

	if err != nil {
		return nil, false, storageErr("get entitlement", err)
	}

	return r, true, nil
}

func (s *Service) put(ctx context.Context, r *Record, now time.Time) error {
	r.UpdatedAt = now

	if err := s.repo.PutRecord(ctx, r); err != nil {
		return storageErr("put entitlement", err)
	}

	return nil
}

// CheckStatus reports whether the user may import now. An elapsed billing
// period is rolled over and persisted before the status is computed.
func (s *Service) CheckStatus(ctx context.Context, userID string, now time.Time) (Status, error) {
	r, found, err := s.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}

	if found && r.rolloverDue(now) {
		r.startPeriod(now)

		if err := s.put(ctx, r, now); err != nil {
			return Status{}, err
		}
	}

	st := r.status()
	s.metrics.RecordEntitlementCheck(string(r.Plan), st.CanImport)

	return st, nil
}

// RecordImport accounts for one completed import. The result is advisory:
// usage is counted before the limit is compared, so the call that reaches the
// limit reports the import as allowed.
func (s *Service) RecordImport(ctx context.Context, userID string, now time.Time) (Usage, error) {
	r, _, err := s.load(ctx, userID)
	if err != nil {
		return Usage{}, err
	}

	var usage Usage

	switch {
	case !r.Plan.Subscribed() && !r.TrialUsed:
		r.Plan = PlanNone
		r.UsageThisPeriod = 0
		r.TrialUsed = true

		if err := s.put(ctx, r, now); err != nil {
			return Usage{}, err
		}

	case r.Plan.Subscribed() && !r.TrialUsed:
		if r.rolloverDue(now) {
			r.startPeriod(now)
		}

		r.TrialUsed = true

		if err := s.put(ctx, r, now); err != nil {
			return Usage{}, err
		}

		usage = Usage{Allowed: true, Remaining: r.Plan.Limit()}

	case r.Plan.Subscribed():
		if r.PeriodEnd == nil || r.rolloverDue(now) {
			r.startPeriod(now)
		}

		r.UsageThisPeriod++

		if err := s.put(ctx, r, now); err != nil {
			return Usage{}, err
		}

		limit := r.Plan.Limit()
		usage = Usage{Allowed: r.UsageThisPeriod < limit, Remaining: max(0, limit-r.UsageThisPeriod)}

	default:
		return Usage{}, nil
	}

	s.metrics.RecordImportUsage(string(r.Plan), usage.Allowed)

	return usage, nil
}

// PlanActivated starts a paid plan with a fresh period ending at a.PeriodEnd.
// The trial flag is preserved.
func (s *Service) PlanActivated(ctx context.Context, userID string, a Activation, now time.Time) error {
	if err := s.applyPlan(ctx, userID, a, now); err != nil {
		return err
	}

	slog.InfoContext(ctx, "plan activated", "user_id", userID, "plan", a.Plan)

	return nil
}

// PlanRenewed has the same effect as PlanActivated.
func (s *Service) PlanRenewed(ctx context.Context, userID string, a Activation, now time.Time) error {
	if err := s.applyPlan(ctx, userID, a, now); err != nil {
		return err
	}

	slog.InfoContext(ctx, "plan renewed", "user_id", userID, "plan", a.Plan)

	return nil
}

func (s *Service) applyPlan(ctx context.Context, userID string, a Activation, now time.Time) error {
	if !a.Plan.Subscribed() {
		return fmt.Errorf("%w: %q", ErrInvalidPlan, a.Plan)
	}

	r, _, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	end := a.PeriodEnd

	r.Plan = a.Plan
	r.StripeCustomerID = a.CustomerID
	r.StripeSubscriptionID = a.SubscriptionID
	r.PeriodStart = &now
	r.PeriodEnd = &end
	r.UsageThisPeriod = 0

	return s.put(ctx, r, now)
}

// PlanCanceledOrExpired drops the paid plan. A canceled user never regains
// the free trial.
func (s *Service) PlanCanceledOrExpired(ctx context.Context, userID string, now time.Time) error {
	r, _, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	r.Plan = PlanNone
	r.StripeCustomerID = ""
	r.StripeSubscriptionID = ""
	r.PeriodStart = nil
	r.PeriodEnd = nil
	r.UsageThisPeriod = 0
	r.TrialUsed = true

	if err := s.put(ctx, r, now); err != nil {
		return err
	}

	slog.InfoContext(ctx, "plan canceled", "user_id", userID)

	return nil
}
