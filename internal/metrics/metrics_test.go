package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

func TestRegistry_NilIsNoop(t *testing.T) {
	var m *metrics.Registry

	assert.NotPanics(t, func() {
		m.RecordInserted(3)
		m.RecordSkipped("tombstone")
		m.RecordEntitlementCheck("pro", true)
		m.RecordImportUsage("", false)
		m.RecordBillingEvent("checkout.session.completed", "applied")
		m.ObserveRequest(http.MethodGet, "/entries", http.StatusOK, time.Millisecond)
	})
}

func TestRegistry_Counters(t *testing.T) {
	m := metrics.New()

	m.RecordInserted(2)
	m.RecordInserted(0)
	m.RecordEntitlementCheck("", false)
	m.RecordEntitlementCheck("", false)

	body := scrape(t, m)
	assert.Contains(t, body, "tally_recurring_inserted_total 2")
	assert.Contains(t, body, `tally_entitlement_checks_total{can_import="false",plan="none"} 2`)
}

func scrape(t *testing.T, m *metrics.Registry) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func TestRegistry_Handler(t *testing.T) {
	m := metrics.New()
	m.RecordBillingEvent("customer.subscription.deleted", "applied")

	assert.Contains(t, scrape(t, m), `tally_billing_events_total{outcome="applied",type="customer.subscription.deleted"} 1`)
}
