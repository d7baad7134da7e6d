package billing

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is the envelope of a billing webhook delivery.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type CheckoutSession struct {
	ID                string            `json:"id"`
	ClientReferenceID string            `json:"client_reference_id"`
	Customer          string            `json:"customer"`
	Metadata          map[string]string `json:"metadata"`
	// Subscription is the subscription id; the API may also return the
	// expanded object when asked to.
	Subscription json.RawMessage `json:"subscription"`
	// Expanded is set by API clients that already decoded the subscription.
	Expanded *Subscription `json:"-"`
}

// UserID returns the tally user the checkout was started for.
func (s *CheckoutSession) UserID() string {
	if uid := s.Metadata["uid"]; uid != "" {
		return uid
	}

	return s.ClientReferenceID
}

// SubscriptionRef returns the subscription id, and the expanded subscription
// when present.
func (s *CheckoutSession) SubscriptionRef() (string, *Subscription) {
	if s.Expanded != nil {
		return s.Expanded.ID, s.Expanded
	}

	if len(s.Subscription) == 0 || string(s.Subscription) == "null" {
		return "", nil
	}

	var id string
	if err := json.Unmarshal(s.Subscription, &id); err == nil {
		return id, nil
	}

	var sub Subscription
	if err := json.Unmarshal(s.Subscription, &sub); err == nil && sub.ID != "" {
		return sub.ID, &sub
	}

	return "", nil
}

type Subscription struct {
	ID               string            `json:"id"`
	Customer         string            `json:"customer"`
	Status           string            `json:"status"`
	Metadata         map[string]string `json:"metadata"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Items            struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
}

type SubscriptionItem struct {
	Price Price `json:"price"`
}

type Price struct {
	ID string `json:"id"`
}

// PriceID is the price of the first subscription item.
func (s *Subscription) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}

	return s.Items.Data[0].Price.ID
}

func (s *Subscription) PeriodEnd() time.Time {
	return time.Unix(s.CurrentPeriodEnd, 0).UTC()
}

func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	if ev.Type == "" {
		return nil, fmt.Errorf("decoding event: missing type")
	}

	return &ev, nil
}

func (e *Event) decodeObject(v any) error {
	if err := json.Unmarshal(e.Data.Object, v); err != nil {
		return fmt.Errorf("decoding %s object: %w", e.Type, err)
	}

	return nil
}
