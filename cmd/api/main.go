package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/tally/internal/billing"
	"github.com/MrJamesThe3rd/tally/internal/billing/stripe"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	entitlementStore "github.com/MrJamesThe3rd/tally/internal/entitlement/store"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	billingHandler "github.com/MrJamesThe3rd/tally/internal/http/billing"
	entitlementHandler "github.com/MrJamesThe3rd/tally/internal/http/entitlement"
	entriesHandler "github.com/MrJamesThe3rd/tally/internal/http/entries"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
	recurringStore "github.com/MrJamesThe3rd/tally/internal/recurring/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	reg := metrics.New()
	now := time.Now

	entries := ledgerStore.New(db)

	var tombstones recurring.TombstoneStore = recurringStore.NewPostgres(db)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}

		tombstones = recurringStore.NewRedis(rdb)
		slog.Info("recurring deletions stored in redis", "addr", cfg.Redis.Addr)
	}

	var (
		ledgerService      = ledger.NewService(entries)
		projector          = recurring.NewProjector(entries, tombstones, reg)
		series             = recurring.NewSeries(entries, tombstones)
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService()
		entitlementService = entitlement.NewService(entitlementStore.New(db), reg)
		billingService     = billing.NewService(
			entitlementService,
			stripe.New(stripe.Options{
				BaseURL:       cfg.Billing.APIURL,
				APIKey:        cfg.Billing.APIKey,
				Timeout:       cfg.Billing.APITimeout,
				RatePerSecond: cfg.Billing.APIRatePerSecond,
			}),
			cfg.Prices(),
			reg,
		)
	)

	handlers := tallyHttp.Handlers{
		Entries:     entriesHandler.NewHandler(ledgerService, projector, series, now),
		Entitlement: entitlementHandler.NewHandler(entitlementService, now),
		Import:      importHandler.NewHandler(importService, ledgerService, matchingService, entitlementService, now),
		Matching:    matchingHandler.NewHandler(matchingService),
		Billing: billingHandler.NewHandler(
			billingService, cfg.Billing.WebhookSecret, cfg.Billing.SignatureTolerance, now,
		),
	}

	authn := auth.New(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	router := tallyHttp.New(handlers, authn, reg, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
