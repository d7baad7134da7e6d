// Package stripe reads checkout sessions and subscriptions from the Stripe
// API.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/tally/internal/billing"
)

type Options struct {
	// BaseURL overrides the API endpoint; empty uses the live API.
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	// MaxFailures consecutive server errors open the breaker.
	MaxFailures uint32
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
}

type Client struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 20
	}

	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}

	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}

	cfg := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{Timeout: opts.Timeout},
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelNull},
	}
	if opts.BaseURL != "" {
		cfg.URL = stripeapi.String(opts.BaseURL)
	}

	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, cfg)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			var apiErr *stripeapi.Error
			if errors.As(err, &apiErr) {
				return apiErr.HTTPStatusCode < http.StatusInternalServerError
			}

			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		api:     client.New(opts.APIKey, &stripeapi.Backends{API: backend, Connect: backend, Uploads: backend}),
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), int(opts.RatePerSecond)+1),
	}
}

// CheckoutSession returns the session with its subscription expanded.
func (c *Client) CheckoutSession(ctx context.Context, id string) (*billing.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")

	res, err := c.call(ctx, func() (any, error) {
		return c.api.CheckoutSessions.Get(id, params)
	})
	if err != nil {
		return nil, fmt.Errorf("getting checkout session %s: %w", id, err)
	}

	return toCheckoutSession(res.(*stripeapi.CheckoutSession))
}

func (c *Client) Subscription(ctx context.Context, id string) (*billing.Subscription, error) {
	params := &stripeapi.SubscriptionParams{}
	params.Context = ctx

	res, err := c.call(ctx, func() (any, error) {
		return c.api.Subscriptions.Get(id, params)
	})
	if err != nil {
		return nil, fmt.Errorf("getting subscription %s: %w", id, err)
	}

	return toSubscription(res.(*stripeapi.Subscription)), nil
}

func (c *Client) call(ctx context.Context, fn func() (any, error)) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return c.breaker.Execute(fn)
}

func toCheckoutSession(s *stripeapi.CheckoutSession) (*billing.CheckoutSession, error) {
	out := &billing.CheckoutSession{
		ID:                s.ID,
		ClientReferenceID: s.ClientReferenceID,
		Metadata:          s.Metadata,
	}

	if s.Customer != nil {
		out.Customer = s.Customer.ID
	}

	if s.Subscription == nil {
		return out, nil
	}

	if s.Subscription.Items != nil {
		out.Expanded = toSubscription(s.Subscription)
		return out, nil
	}

	raw, err := json.Marshal(s.Subscription.ID)
	if err != nil {
		return nil, fmt.Errorf("encoding subscription id: %w", err)
	}

	out.Subscription = raw

	return out, nil
}

func toSubscription(s *stripeapi.Subscription) *billing.Subscription {
	out := &billing.Subscription{
		ID:               s.ID,
		Status:           string(s.Status),
		Metadata:         s.Metadata,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
	}

	if s.Customer != nil {
		out.Customer = s.Customer.ID
	}

	if s.Items != nil {
		for _, item := range s.Items.Data {
			if item == nil || item.Price == nil {
				continue
			}

			out.Items.Data = append(out.Items.Data, billing.SubscriptionItem{Price: billing.Price{ID: item.Price.ID}})
		}
	}

	return out
}
