package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/billing"
	"github.com/MrJamesThe3rd/tally/internal/http/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/http/entries"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

type Handlers struct {
	Entries     *entries.Handler
	Entitlement *entitlement.Handler
	Import      *importcsv.Handler
	Matching    *matching.Handler
	Billing     *billing.Handler
}

func New(
	h Handlers,
	authn *auth.Authenticator,
	m *metrics.Registry,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(instrument(m))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/billing", func(r chi.Router) {
			// Webhook requests are authenticated by their signature.
			h.Billing.WebhookRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(authn.Middleware)
				h.Billing.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)

			r.Route("/entries", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Entries.Routes(r)
			})

			r.Route("/entitlement", h.Entitlement.Routes)
			r.Route("/import", h.Import.Routes)
			r.Route("/rules", h.Matching.Routes)
			r.Route("/categories", matching.CategoryRoutes)
		})
	})

	return router
}

// instrument records request latency by route pattern so path parameters do
// not explode the label cardinality.
func instrument(m *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			m.ObserveRequest(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
