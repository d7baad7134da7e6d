package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetRecord(ctx context.Context, userID string) (*entitlement.Record, error) {
	query := `
		SELECT user_id, plan, stripe_customer_id, stripe_subscription_id,
			period_start, period_end, usage_this_period, trial_used, updated_at
		FROM entitlements
		WHERE user_id = $1
	`

	var r entitlement.Record

	var plan string

	var customerID, subscriptionID sql.NullString

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&r.UserID, &plan, &customerID, &subscriptionID,
		&r.PeriodStart, &r.PeriodEnd, &r.UsageThisPeriod, &r.TrialUsed, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entitlement.ErrNotFound
		}

		return nil, fmt.Errorf("getting entitlement: %w", err)
	}

	r.Plan = entitlement.Plan(plan)
	r.StripeCustomerID = customerID.String
	r.StripeSubscriptionID = subscriptionID.String

	return &r, nil
}

// PutRecord upserts the whole record.
func (s *Store) PutRecord(ctx context.Context, r *entitlement.Record) error {
	query := `
		INSERT INTO entitlements (user_id, plan, stripe_customer_id, stripe_subscription_id,
			period_start, period_end, usage_this_period, trial_used, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			usage_this_period = EXCLUDED.usage_this_period,
			trial_used = EXCLUDED.trial_used,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.UserID,
		string(r.Plan),
		nullable(r.StripeCustomerID),
		nullable(r.StripeSubscriptionID),
		r.PeriodStart,
		r.PeriodEnd,
		r.UsageThisPeriod,
		r.TrialUsed,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting entitlement: %w", err)
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
