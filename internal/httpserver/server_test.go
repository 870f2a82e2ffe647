package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saintvisionai/crm-bridge/internal/billing"
	"github.com/saintvisionai/crm-bridge/internal/config"
	"github.com/saintvisionai/crm-bridge/internal/ghl"
	"github.com/saintvisionai/crm-bridge/internal/models"
	"github.com/saintvisionai/crm-bridge/internal/notify"
	"github.com/saintvisionai/crm-bridge/internal/store"
	"github.com/saintvisionai/crm-bridge/internal/sync"
)

// newTestServer wires the full stack the way main does, with the in-memory
// store and disabled external clients.
func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore, *sync.Worker) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	st.SeedWorkspace(models.Workspace{ID: "ws-1", UserID: "user-1", GHLLocationID: "loc_1"})

	worker := sync.NewWorker(sync.NewProcessor(st, notify.Disabled{}, logger), 64, logger)
	worker.Start()

	cfg := config.Config{
		Port:    "0",
		APIKeys: map[string]string{"test-key": "tester"},
	}
	router := NewRouter(cfg, Deps{
		Store:   st,
		GHL:     ghl.Disabled{},
		Billing: billing.Disabled{},
		Worker:  worker,
		Logger:  logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = worker.Stop(context.Background()) })
	return srv, st, worker
}

func TestHealthAndReady(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestAuthenticatedRoutesRejectMissingKey(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/crm?action=get-locations", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestOpportunityWebhookEndToEnd is the full inbound path: webhook POST →
// ack → audit → worker → workspace lookup → upsert → notification.
func TestOpportunityWebhookEndToEnd(t *testing.T) {
	srv, st, worker := newTestServer(t)

	payload := `{
		"type": "opportunity.created",
		"locationId": "loc_1",
		"data": {"id": "opp_9", "title": "Demo Deal", "monetaryValue": 500}
	}`
	resp, err := http.Post(srv.URL+"/webhooks/ghl", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ack struct {
		Received  bool   `json:"received"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	require.True(t, ack.Received)
	require.NotEmpty(t, ack.Timestamp)

	require.NoError(t, worker.Stop(context.Background()))

	require.Len(t, st.Opportunities, 1)
	opp := st.Opportunities["opp_9"]
	require.Equal(t, "ws-1", opp.WorkspaceID)
	require.Equal(t, "Demo Deal", opp.Title)
	require.Equal(t, 500.0, opp.Value)

	require.Len(t, st.Notifications, 1)
	require.Equal(t, models.NotificationOpportunityCreated, st.Notifications[0].Type)
	require.Equal(t, "user-1", st.Notifications[0].UserID)
}

func TestWebhookStatsRequiresAuthAndType(t *testing.T) {
	srv, st, _ := newTestServer(t)
	require.NoError(t, st.RecordWebhookEvent(context.Background(), "contact.created", "loc_1", []byte(`{}`)))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/webhooks/stats?type=contact.created", nil)
	req.Header.Set("X-API-Key", "test-key")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Type    string `json:"type"`
		Count   int64  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)
	require.EqualValues(t, 1, body.Count)

	// Missing type parameter.
	req2, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/webhooks/stats", nil)
	req2.Header.Set("X-API-Key", "test-key")
	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}
