package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saintvisionai/crm-bridge/internal/actions"
	"github.com/saintvisionai/crm-bridge/internal/auth"
	"github.com/saintvisionai/crm-bridge/internal/billing"
	"github.com/saintvisionai/crm-bridge/internal/config"
	"github.com/saintvisionai/crm-bridge/internal/ghl"
	"github.com/saintvisionai/crm-bridge/internal/provision"
	"github.com/saintvisionai/crm-bridge/internal/store"
	"github.com/saintvisionai/crm-bridge/internal/sync"
	"github.com/saintvisionai/crm-bridge/internal/webhook"
)

// Deps are the constructed dependencies the router wires together. Lifecycle
// is owned by the process bootstrap; nothing here is ambient global state.
type Deps struct {
	Store   store.Store
	GHL     ghl.API
	Billing billing.Verifier
	Worker  *sync.Worker
	Logger  *slog.Logger
}

// NewRouter wires public endpoints and authenticated APIs.
// Public: /health, /ready, /webhooks/ghl
// Authenticated (X-API-Key): /api/crm, /api/provision, /api/webhooks/stats
func NewRouter(cfg config.Config, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	// Wrong-method requests to the webhook path must get 405, not 404.
	r.HandleMethodNotAllowed = true

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the store dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Inbound webhooks stay public; GHL does not sign deliveries.
	webhook.NewReceiver(d.Worker, d.Logger).Register(r)

	// Auth group enforces caller identity via X-API-Key.
	authGroup := r.Group("/")
	authGroup.Use(auth.APIKeyMiddleware(cfg.APIKeys))

	actions.NewDispatcher(d.GHL, d.Logger).Register(authGroup)
	provision.RegisterRoutes(authGroup, provision.New(d.Store, d.GHL, d.Billing, cfg.GHLAgencyID, d.Logger))
	registerStatsRoutes(authGroup, d.Store)

	return r
}

// registerStatsRoutes exposes audit-log volume per event type, the only
// processing signal the webhook contract makes externally observable.
func registerStatsRoutes(r gin.IRoutes, st store.Store) {
	r.GET("/api/webhooks/stats", func(c *gin.Context) {
		eventType := c.Query("type")
		if eventType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "type is required"})
			return
		}
		count, err := st.CountWebhookEvents(c.Request.Context(), eventType)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"type":    eventType,
			"count":   count,
		})
	})
}
