package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

var (
	ErrSessionMismatch = errors.New("checkout session belongs to another user")
	ErrNoSubscription  = errors.New("checkout session has no subscription")
	ErrUnknownPrice    = errors.New("price is not mapped to a plan")
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=billing
type Entitlements interface {
	PlanActivated(ctx context.Context, userID string, a entitlement.Activation, now time.Time) error
	PlanRenewed(ctx context.Context, userID string, a entitlement.Activation, now time.Time) error
	PlanCanceledOrExpired(ctx context.Context, userID string, now time.Time) error
}

// Provider reads checkout sessions and subscriptions from the billing API.
type Provider interface {
	CheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	Subscription(ctx context.Context, id string) (*Subscription, error)
}

const (
	outcomeApplied = "applied"
	outcomeIgnored = "ignored"
	outcomeFailed  = "failed"
)

type Service struct {
	entitlements Entitlements
	provider     Provider
	prices       map[string]entitlement.Plan
	metrics      *metrics.Registry
}

// NewService maps price ids to plans; prices naming an unknown plan are
// dropped with a warning.
func NewService(ent Entitlements, provider Provider, prices map[string]string, m *metrics.Registry) *Service {
	plans := make(map[string]entitlement.Plan, len(prices))

	for price, name := range prices {
		p, err := entitlement.ParsePlan(name)
		if err != nil {
			slog.Warn("ignoring billing price", "price", price, "error", err)
			continue
		}

		plans[price] = p
	}

	return &Service{entitlements: ent, provider: provider, prices: plans, metrics: m}
}

// HandleEvent applies a verified webhook event. Events that cannot be tied to
// a user or plan are ignored; only provider and storage failures are
// returned, so the provider retries the delivery.
func (s *Service) HandleEvent(ctx context.Context, ev *Event, now time.Time) error {
	applied, err := s.dispatch(ctx, ev, now)

	outcome := outcomeIgnored

	switch {
	case err != nil:
		outcome = outcomeFailed
	case applied:
		outcome = outcomeApplied
	}

	s.metrics.RecordBillingEvent(ev.Type, outcome)

	return err
}

func (s *Service) dispatch(ctx context.Context, ev *Event, now time.Time) (bool, error) {
	switch ev.Type {
	case EventCheckoutCompleted:
		var session CheckoutSession
		if err := ev.decodeObject(&session); err != nil {
			return false, err
		}

		return s.checkoutCompleted(ctx, &session, now)

	case EventSubscriptionUpdated:
		var sub Subscription
		if err := ev.decodeObject(&sub); err != nil {
			return false, err
		}

		return s.subscriptionUpdated(ctx, &sub, now)

	case EventSubscriptionDeleted:
		var sub Subscription
		if err := ev.decodeObject(&sub); err != nil {
			return false, err
		}

		uid := sub.Metadata["uid"]
		if uid == "" {
			return false, nil
		}

		return true, s.entitlements.PlanCanceledOrExpired(ctx, uid, now)
	}

	return false, nil
}

func (s *Service) checkoutCompleted(ctx context.Context, session *CheckoutSession, now time.Time) (bool, error) {
	uid := session.UserID()
	if uid == "" {
		slog.ErrorContext(ctx, "checkout session without user", "session_id", session.ID)
		return false, nil
	}

	sub, err := s.subscriptionOf(ctx, session)
	if errors.Is(err, ErrNoSubscription) {
		slog.ErrorContext(ctx, "checkout session without subscription", "session_id", session.ID)
		return false, nil
	}

	if err != nil {
		return false, err
	}

	a, err := s.activation(sub, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to map subscription price", "price", sub.PriceID(), "error", err)
		return false, nil
	}

	return true, s.entitlements.PlanActivated(ctx, uid, a, now)
}

func (s *Service) subscriptionUpdated(ctx context.Context, sub *Subscription, now time.Time) (bool, error) {
	uid := sub.Metadata["uid"]
	if uid == "" {
		return false, nil
	}

	switch sub.Status {
	case "active":
		a, err := s.activation(sub, now)
		if err != nil {
			slog.ErrorContext(ctx, "failed to map subscription price", "price", sub.PriceID(), "error", err)
			return false, nil
		}

		return true, s.entitlements.PlanRenewed(ctx, uid, a, now)
	case "canceled", "unpaid", "past_due":
		return true, s.entitlements.PlanCanceledOrExpired(ctx, uid, now)
	}

	return false, nil
}

// ConfirmCheckout applies the subscription bought in a checkout session for
// userID. Clients call it after checkout in case the webhook is late.
func (s *Service) ConfirmCheckout(ctx context.Context, userID, sessionID string, now time.Time) (entitlement.Plan, error) {
	session, err := s.provider.CheckoutSession(ctx, sessionID)
	if err != nil {
		return entitlement.PlanNone, fmt.Errorf("fetching checkout session: %w", err)
	}

	if session.UserID() != userID {
		return entitlement.PlanNone, ErrSessionMismatch
	}

	sub, err := s.subscriptionOf(ctx, session)
	if err != nil {
		return entitlement.PlanNone, err
	}

	a, err := s.activation(sub, now)
	if err != nil {
		return entitlement.PlanNone, err
	}

	if err := s.entitlements.PlanActivated(ctx, userID, a, now); err != nil {
		return entitlement.PlanNone, err
	}

	return a.Plan, nil
}

func (s *Service) subscriptionOf(ctx context.Context, session *CheckoutSession) (*Subscription, error) {
	id, sub := session.SubscriptionRef()
	if sub != nil {
		return sub, nil
	}

	if id == "" {
		return nil, ErrNoSubscription
	}

	sub, err := s.provider.Subscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching subscription: %w", err)
	}

	return sub, nil
}

// activation builds the plan change for sub. A missing period end starts a
// one-month period from now.
func (s *Service) activation(sub *Subscription, now time.Time) (entitlement.Activation, error) {
	plan, ok := s.prices[sub.PriceID()]
	if !ok {
		return entitlement.Activation{}, fmt.Errorf("%w: %q", ErrUnknownPrice, sub.PriceID())
	}

	end := now.AddDate(0, 1, 0)
	if sub.CurrentPeriodEnd > 0 {
		end = sub.PeriodEnd()
	}

	return entitlement.Activation{
		Plan:           plan,
		CustomerID:     sub.Customer,
		SubscriptionID: sub.ID,
		PeriodEnd:      end,
	}, nil
}
