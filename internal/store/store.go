package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/saintvisionai/crm-bridge/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence surface used by the webhook processors, the
// provisioning flow and the read-side endpoints. Backed by Postgres in
// production and by MemoryStore in tests and when DB_URL is unset.
type Store interface {
	// Ping validates connectivity for the readiness endpoint.
	Ping(ctx context.Context) error
	Close()

	// RecordWebhookEvent appends one row to the audit log.
	RecordWebhookEvent(ctx context.Context, eventType, locationID string, payload json.RawMessage) error
	// CountWebhookEvents returns audit-log volume for an event type,
	// used by the stats endpoint.
	CountWebhookEvents(ctx context.Context, eventType string) (int64, error)

	// WorkspaceByLocation resolves the owning workspace for a GHL location.
	// Returns ErrNotFound when the location has no mapping.
	WorkspaceByLocation(ctx context.Context, ghlLocationID string) (models.Workspace, error)

	// UpsertContact inserts or updates the synced contact keyed on
	// ghl_contact_id. Last write wins; no ordering guarantee is made
	// between concurrent deliveries.
	UpsertContact(ctx context.Context, c models.Contact) error
	// UpsertOpportunity inserts or updates keyed on ghl_opportunity_id.
	UpsertOpportunity(ctx context.Context, o models.Opportunity) error

	// InsertNotification creates an unread notification row.
	InsertNotification(ctx context.Context, n models.Notification) error

	// InsertClientAccount persists a provisioned sub-account record.
	InsertClientAccount(ctx context.Context, a models.ClientAccount) error
}
