package entitlement

import (
	"fmt"
	"time"
)

// Plan is the paid tier a user subscribes to. PlanNone covers both the
// unconsumed trial and a user who never subscribed.
type Plan string

const (
	PlanNone  Plan = ""
	PlanBasic Plan = "basic"
	PlanPro   Plan = "pro"
)

// TrialLimit is the lifetime number of free imports.
const TrialLimit = 1

// Limit is the number of imports the plan allows per billing period.
func (p Plan) Limit() int {
	switch p {
	case PlanBasic:
		return 3
	case PlanPro:
		return 10
	}

	return 0
}

// Subscribed reports whether p is a paid plan.
func (p Plan) Subscribed() bool {
	return p == PlanBasic || p == PlanPro
}

func (p Plan) String() string {
	if p == PlanNone {
		return "none"
	}

	return string(p)
}

func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanBasic, PlanPro:
		return p, nil
	}

	return PlanNone, fmt.Errorf("%w: %q", ErrInvalidPlan, s)
}

// Record is the persisted entitlement state of one user.
type Record struct {
	UserID               string
	Plan                 Plan
	StripeCustomerID     string
	StripeSubscriptionID string
	PeriodStart          *time.Time
	PeriodEnd            *time.Time
	UsageThisPeriod      int
	TrialUsed            bool
	UpdatedAt            time.Time
}

func (r *Record) rolloverDue(now time.Time) bool {
	return r.PeriodEnd != nil && !now.Before(*r.PeriodEnd)
}

// startPeriod opens a fresh one-month billing period at now.
func (r *Record) startPeriod(now time.Time) {
	end := now.AddDate(0, 1, 0)

	r.PeriodStart = &now
	r.PeriodEnd = &end
	r.UsageThisPeriod = 0
}

func (r *Record) status() Status {
	if !r.Plan.Subscribed() {
		if r.TrialUsed {
			return Status{Used: TrialLimit}
		}

		return Status{CanImport: true, Remaining: TrialLimit, Limit: TrialLimit}
	}

	limit := r.Plan.Limit()
	st := Status{Plan: r.Plan, Limit: limit, PeriodEnd: r.PeriodEnd}

	if !r.TrialUsed {
		// The unused trial is a bonus import on top of the plan quota.
		st.Remaining = limit + TrialLimit
	} else {
		st.Used = r.UsageThisPeriod
		st.Remaining = max(0, limit-r.UsageThisPeriod)
	}

	st.CanImport = st.Remaining > 0

	return st
}

// Status is what a user may still import in the current period.
type Status struct {
	CanImport bool
	Remaining int
	Limit     int
	Plan      Plan
	Used      int
	PeriodEnd *time.Time
}

// Usage is the outcome of recording one import.
type Usage struct {
	Allowed   bool
	Remaining int
}

// Activation carries a paid plan confirmed by the billing provider.
type Activation struct {
	Plan           Plan
	CustomerID     string
	SubscriptionID string
	PeriodEnd      time.Time
}
