package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/saintvisionai/crm-bridge/internal/models"
	"github.com/saintvisionai/crm-bridge/internal/notify"
	"github.com/saintvisionai/crm-bridge/internal/store"
	"github.com/saintvisionai/crm-bridge/internal/sync"
)

func newTestReceiver(t *testing.T, st store.Store) (*gin.Engine, *sync.Worker) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := sync.NewWorker(sync.NewProcessor(st, notify.Disabled{}, logger), 16, logger)
	worker.Start()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	NewReceiver(worker, logger).Register(r)
	return r, worker
}

func seededStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.SeedWorkspace(models.Workspace{ID: "ws-1", UserID: "user-1", GHLLocationID: "loc_1"})
	return st
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/ghl", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAckIsAlwaysSentForPost(t *testing.T) {
	st := seededStore()
	r, worker := newTestReceiver(t, st)
	defer worker.Stop(context.Background())

	for _, body := range []string{
		`{"type":"contact.created","locationId":"loc_1","data":{"id":"con_1"}}`,
		`{"type":"contact.created"}`, // missing locationId
		`{not json`,
		``,
	} {
		w := post(r, body)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"received":true`)
		require.Contains(t, w.Body.String(), `"timestamp"`)
	}
}

func TestNonPostIsMethodNotAllowed(t *testing.T) {
	st := seededStore()
	r, worker := newTestReceiver(t, st)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/webhooks/ghl", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	}

	require.NoError(t, worker.Stop(context.Background()))
	require.Empty(t, st.Events, "non-POST must not be processed")
}

func TestInvalidPayloadIsDroppedSilently(t *testing.T) {
	st := seededStore()
	r, worker := newTestReceiver(t, st)

	post(r, `{"locationId":"loc_1"}`)          // missing type
	post(r, `{"type":"contact.created"}`)      // missing locationId
	post(r, `{"type":7,"locationId":"loc_1"}`) // wrong field type
	post(r, `not even json`)

	require.NoError(t, worker.Stop(context.Background()))
	require.Empty(t, st.Events, "invalid payloads must not be audited")
	require.Empty(t, st.Contacts)
	require.Empty(t, st.Notifications)
}

func TestValidEventIsAuditedAndProcessed(t *testing.T) {
	st := seededStore()
	r, worker := newTestReceiver(t, st)

	w := post(r, `{"type":"contact.created","locationId":"loc_1","data":{"id":"con_42","firstName":"Lin"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, worker.Stop(context.Background()))

	require.Len(t, st.Events, 1)
	require.Equal(t, "contact.created", st.Events[0].EventType)
	require.Equal(t, "loc_1", st.Events[0].LocationID)

	require.Len(t, st.Contacts, 1)
	require.Equal(t, "Lin", st.Contacts["con_42"].FirstName)
	require.Len(t, st.Notifications, 1)
}

func TestUnknownLocationCreatesNoSyncState(t *testing.T) {
	st := seededStore()
	r, worker := newTestReceiver(t, st)

	w := post(r, `{"type":"contact.created","locationId":"loc_unmapped","data":{"id":"con_1"}}`)
	require.Equal(t, http.StatusOK, w.Code, "sender still gets its receipt")

	require.NoError(t, worker.Stop(context.Background()))
	require.Len(t, st.Events, 1, "audit row is written before workspace lookup")
	require.Empty(t, st.Contacts)
	require.Empty(t, st.Notifications)
}

// blockingStore stalls audit writes until released, simulating a hung
// database.
type blockingStore struct {
	*store.MemoryStore
	release chan struct{}
}

func (b *blockingStore) RecordWebhookEvent(ctx context.Context, eventType, locationID string, payload json.RawMessage) error {
	<-b.release
	return b.MemoryStore.RecordWebhookEvent(ctx, eventType, locationID, payload)
}

// TestAckDeliveredWhileAuditWriteHangs serves the receiver over a real
// listener: the sender must hold its 200 before any store I/O completes, even
// when the database hangs indefinitely. A recorder cannot observe this; only
// a real connection shows whether the response was flushed.
func TestAckDeliveredWhileAuditWriteHangs(t *testing.T) {
	st := &blockingStore{
		MemoryStore: seededStore(),
		release:     make(chan struct{}),
	}
	r, worker := newTestReceiver(t, st)

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Post(srv.URL+"/webhooks/ghl", "application/json",
		strings.NewReader(`{"type":"contact.created","locationId":"loc_1","data":{"id":"con_1"}}`))
	require.NoError(t, err, "ack must arrive while the audit write is stuck")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ack struct {
		Received bool `json:"received"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	require.True(t, ack.Received)

	// Unstick the store and let the worker finish the write.
	close(st.release)
	require.NoError(t, worker.Stop(context.Background()))
	require.Len(t, st.Events, 1)
	require.Len(t, st.Contacts, 1)
}
