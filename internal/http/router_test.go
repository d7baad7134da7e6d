package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/billing"
	"github.com/MrJamesThe3rd/tally/internal/http/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/http/entries"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

func newRouter(t *testing.T) (http.Handler, *auth.Authenticator) {
	t.Helper()

	now := time.Now
	authn := auth.New("test-secret", "tally")

	h := api.Handlers{
		Entries:     entries.NewHandler(nil, nil, nil, now),
		Entitlement: entitlement.NewHandler(nil, now),
		Import:      importcsv.NewHandler(nil, nil, nil, nil, now),
		Matching:    matching.NewHandler(nil),
		Billing:     billing.NewHandler(nil, "whsec", time.Minute, now),
	}

	return api.New(h, authn, metrics.New(), []string{"https://app.example.com"}), authn
}

func TestRouter_RequiresToken(t *testing.T) {
	r, _ := newRouter(t)

	for _, path := range []string{"/api/v1/entries", "/api/v1/entitlement/status", "/api/v1/categories"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	r, authn := newRouter(t)

	token, err := authn.Issue("user-1", time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"groceries"`)
}

func TestRouter_WebhookSkipsAuth(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(`{}`))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Rejected by signature verification, not by the token check.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ConfirmRequiresToken(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/confirm-subscription", strings.NewReader(`{}`))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/entries", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tally_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)
}
