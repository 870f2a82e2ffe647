package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saintvisionai/crm-bridge/internal/billing"
	"github.com/saintvisionai/crm-bridge/internal/config"
	"github.com/saintvisionai/crm-bridge/internal/ghl"
	"github.com/saintvisionai/crm-bridge/internal/httpserver"
	"github.com/saintvisionai/crm-bridge/internal/notify"
	"github.com/saintvisionai/crm-bridge/internal/store"
	"github.com/saintvisionai/crm-bridge/internal/sync"
)

// main boots the service: config → store → clients → worker → HTTP server.
// Missing external configuration selects explicit disabled variants instead
// of partially wired clients.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With(slog.String("service", "crm-bridge"))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	st, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("store init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	var ghlAPI ghl.API = ghl.Disabled{}
	if cfg.GHLAPIKey != "" {
		ghlAPI = ghl.NewClient(ghl.ClientOptions{
			BaseURL: cfg.GHLBaseURL,
			APIKey:  cfg.GHLAPIKey,
		})
	} else {
		logger.Warn("GHL_API_KEY unset, outbound CRM calls disabled")
	}

	var verifier billing.Verifier = billing.Disabled{}
	if cfg.StripeSecretKey != "" {
		verifier = billing.NewStripeVerifier(cfg.StripeSecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY unset, billing verification disabled")
	}

	var notifier notify.Notifier = notify.Disabled{}
	if cfg.AMQPURL != "" {
		notifier, err = notify.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Error("amqp init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("AMQP_URL unset, notification fanout disabled")
	}
	defer notifier.Close()

	worker := sync.NewWorker(sync.NewProcessor(st, notifier, logger), 256, logger)
	worker.Start()

	router := httpserver.NewRouter(cfg, httpserver.Deps{
		Store:   st,
		GHL:     ghlAPI,
		Billing: verifier,
		Worker:  worker,
		Logger:  logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	if err := run(srv, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
	}

	// Let queued webhook events finish before the process exits.
	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := worker.Stop(drainCtx); err != nil {
		logger.Error("worker drain timed out", slog.String("error", err.Error()))
	}
}

// buildStore picks Postgres when DB_URL is set and the in-memory store
// otherwise. The memory store keeps local development and demos working
// without a database; synced state is simply not durable.
func buildStore(cfg config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL unset, using in-memory store")
		return store.NewMemoryStore(), nil
	}
	pg, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

// run serves until SIGINT/SIGTERM, then shuts the listener down gracefully.
func run(srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
