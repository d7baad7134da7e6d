package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus collectors for the API. A nil *Registry is
// valid and records nothing, so services can run without instrumentation.
type Registry struct {
	reg *prometheus.Registry

	RecurringInserted prometheus.Counter
	RecurringSkipped  *prometheus.CounterVec
	EntitlementChecks *prometheus.CounterVec
	ImportUsage       *prometheus.CounterVec
	BillingEvents     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

func New() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),

		RecurringInserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tally_recurring_inserted_total",
				Help: "Recurring occurrences materialized by reconciliation",
			},
		),

		RecurringSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_recurring_skipped_total",
				Help: "Recurring templates or candidates skipped by reason",
			},
			[]string{"reason"},
		),

		EntitlementChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_entitlement_checks_total",
				Help: "Entitlement status checks by plan and outcome",
			},
			[]string{"plan", "can_import"},
		),

		ImportUsage: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_import_usage_total",
				Help: "Recorded imports by plan and whether they were allowed",
			},
			[]string{"plan", "allowed"},
		),

		BillingEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_billing_events_total",
				Help: "Billing webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_http_request_duration_seconds",
				Help:    "HTTP request duration by route pattern",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"method", "route", "status"},
		),
	}

	m.reg.MustRegister(
		m.RecurringInserted,
		m.RecurringSkipped,
		m.EntitlementChecks,
		m.ImportUsage,
		m.BillingEvents,
		m.RequestDuration,
	)

	return m
}

func (m *Registry) RecordInserted(n int) {
	if m == nil || n == 0 {
		return
	}

	m.RecurringInserted.Add(float64(n))
}

func (m *Registry) RecordSkipped(reason string) {
	if m == nil {
		return
	}

	m.RecurringSkipped.WithLabelValues(reason).Inc()
}

func (m *Registry) RecordEntitlementCheck(plan string, canImport bool) {
	if m == nil {
		return
	}

	m.EntitlementChecks.WithLabelValues(planLabel(plan), strconv.FormatBool(canImport)).Inc()
}

func (m *Registry) RecordImportUsage(plan string, allowed bool) {
	if m == nil {
		return
	}

	m.ImportUsage.WithLabelValues(planLabel(plan), strconv.FormatBool(allowed)).Inc()
}

func (m *Registry) RecordBillingEvent(eventType, outcome string) {
	if m == nil {
		return
	}

	m.BillingEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}

	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.reg
}

func planLabel(plan string) string {
	if plan == "" {
		return "none"
	}

	return plan
}
