package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/saintvisionai/crm-bridge/internal/models"
)

// MemoryStore is the in-process Store used by unit tests and selected at
// bootstrap when DB_URL is unset. It mirrors the Postgres upsert semantics
// (unique external id, last-write-wins) without durability.
type MemoryStore struct {
	mu sync.Mutex

	Events        []models.WebhookEvent
	Workspaces    []models.Workspace
	Contacts      map[string]models.Contact     // keyed by ghl_contact_id
	Opportunities map[string]models.Opportunity // keyed by ghl_opportunity_id
	Notifications []models.Notification
	Accounts      []models.ClientAccount

	nextID int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Contacts:      map[string]models.Contact{},
		Opportunities: map[string]models.Opportunity{},
	}
}

// SeedWorkspace registers a location → workspace mapping for tests.
func (m *MemoryStore) SeedWorkspace(ws models.Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Workspaces = append(m.Workspaces, ws)
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
func (m *MemoryStore) Close()                     {}

func (m *MemoryStore) RecordWebhookEvent(_ context.Context, eventType, locationID string, payload json.RawMessage) error {
	if eventType == "" || locationID == "" {
		return errors.New("eventType/locationID required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.Events = append(m.Events, models.WebhookEvent{
		ID:          m.nextID,
		EventType:   eventType,
		LocationID:  locationID,
		Payload:     payload,
		ProcessedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MemoryStore) CountWebhookEvents(_ context.Context, eventType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.Events {
		if e.EventType == eventType {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) WorkspaceByLocation(_ context.Context, ghlLocationID string) (models.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ws := range m.Workspaces {
		if ws.GHLLocationID == ghlLocationID {
			return ws, nil
		}
	}
	return models.Workspace{}, ErrNotFound
}

func (m *MemoryStore) UpsertContact(_ context.Context, c models.Contact) error {
	if c.GHLContactID == "" {
		return errors.New("ghl_contact_id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := m.Contacts[c.GHLContactID]; ok {
		c.ID = prev.ID
		c.CreatedAt = prev.CreatedAt
	} else {
		m.nextID++
		c.ID = m.nextID
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.Contacts[c.GHLContactID] = c
	return nil
}

func (m *MemoryStore) UpsertOpportunity(_ context.Context, o models.Opportunity) error {
	if o.GHLOpportunityID == "" {
		return errors.New("ghl_opportunity_id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.Opportunities[o.GHLOpportunityID]; ok {
		o.ID = prev.ID
		o.CreatedAt = prev.CreatedAt
	} else {
		m.nextID++
		o.ID = m.nextID
		o.CreatedAt = time.Now().UTC()
	}
	m.Opportunities[o.GHLOpportunityID] = o
	return nil
}

func (m *MemoryStore) InsertNotification(_ context.Context, n models.Notification) error {
	if n.UserID == "" || n.Type == "" {
		return errors.New("user_id/type required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now().UTC()
	m.Notifications = append(m.Notifications, n)
	return nil
}

func (m *MemoryStore) InsertClientAccount(_ context.Context, a models.ClientAccount) error {
	if a.WorkspaceID == "" || a.Plan == "" {
		return errors.New("workspace_id/plan required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now().UTC()
	if a.Status == "" {
		a.Status = "active"
	}
	m.Accounts = append(m.Accounts, a)
	return nil
}
