package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saintvisionai/crm-bridge/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for synced CRM state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// RecordWebhookEvent appends one audit row. The payload is stored verbatim.
func (p *PostgresStore) RecordWebhookEvent(ctx context.Context, eventType, locationID string, payload json.RawMessage) error {
	if eventType == "" || locationID == "" {
		return errors.New("eventType/locationID required")
	}
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO ghl_webhook_events(event_type, location_id, payload)
		VALUES ($1,$2,$3)
	`, eventType, locationID, payload)
	return err
}

func (p *PostgresStore) CountWebhookEvents(ctx context.Context, eventType string) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM ghl_webhook_events WHERE event_type=$1
	`, eventType).Scan(&count)
	return count, err
}

// WorkspaceByLocation resolves the tenant owning a GHL location.
func (p *PostgresStore) WorkspaceByLocation(ctx context.Context, ghlLocationID string) (models.Workspace, error) {
	var ws models.Workspace
	err := p.pool.QueryRow(ctx, `
		SELECT id, user_id, ghl_location_id
		FROM workspaces
		WHERE ghl_location_id=$1
	`, ghlLocationID).Scan(&ws.ID, &ws.UserID, &ws.GHLLocationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Workspace{}, ErrNotFound
	}
	return ws, err
}

// UpsertContact converges the synced contact row on ghl_contact_id.
//
// The unique constraint is the only concurrency-safety mechanism: concurrent
// deliveries of the same contact cannot produce duplicate rows, and replays
// converge to the latest payload (last-write-wins).
func (p *PostgresStore) UpsertContact(ctx context.Context, c models.Contact) error {
	if c.GHLContactID == "" {
		return errors.New("ghl_contact_id required")
	}
	if c.CustomFields == nil {
		c.CustomFields = map[string]string{}
	}
	fieldsJSON, err := json.Marshal(c.CustomFields)
	if err != nil {
		return err
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO contacts(workspace_id, ghl_contact_id, first_name, last_name,
		                     email, phone, source, tags, custom_fields)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (ghl_contact_id) DO UPDATE SET
			first_name    = EXCLUDED.first_name,
			last_name     = EXCLUDED.last_name,
			email         = EXCLUDED.email,
			phone         = EXCLUDED.phone,
			source        = EXCLUDED.source,
			tags          = EXCLUDED.tags,
			custom_fields = EXCLUDED.custom_fields,
			updated_at    = now()
	`, c.WorkspaceID, c.GHLContactID, c.FirstName, c.LastName,
		c.Email, c.Phone, c.Source, c.Tags, fieldsJSON)
	return err
}

// UpsertOpportunity converges the synced opportunity row on ghl_opportunity_id.
func (p *PostgresStore) UpsertOpportunity(ctx context.Context, o models.Opportunity) error {
	if o.GHLOpportunityID == "" {
		return errors.New("ghl_opportunity_id required")
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO opportunities(workspace_id, ghl_opportunity_id, title, value, stage, contact_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (ghl_opportunity_id) DO UPDATE SET
			title      = EXCLUDED.title,
			value      = EXCLUDED.value,
			stage      = EXCLUDED.stage,
			contact_id = EXCLUDED.contact_id
	`, o.WorkspaceID, o.GHLOpportunityID, o.Title, o.Value, o.Stage, o.ContactID)
	return err
}

func (p *PostgresStore) InsertNotification(ctx context.Context, n models.Notification) error {
	if n.UserID == "" || n.Type == "" {
		return errors.New("user_id/type required")
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO notifications(user_id, type, title, message, data)
		VALUES ($1,$2,$3,$4,$5)
	`, n.UserID, n.Type, n.Title, n.Message, dataJSON)
	return err
}

func (p *PostgresStore) InsertClientAccount(ctx context.Context, a models.ClientAccount) error {
	if a.WorkspaceID == "" || a.Plan == "" {
		return errors.New("workspace_id/plan required")
	}
	status := a.Status
	if status == "" {
		status = "active"
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO client_accounts(workspace_id, plan, ghl_location_id, status)
		VALUES ($1,$2,$3,$4)
	`, a.WorkspaceID, a.Plan, a.GHLLocationID, status)
	return err
}
