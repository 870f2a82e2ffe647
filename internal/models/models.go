package models

import (
	"encoding/json"
	"time"
)

// WebhookEvent is one row of the append-only audit log. Rows are written once
// per accepted inbound event and never mutated.
type WebhookEvent struct {
	ID          int64           `json:"id"`
	EventType   string          `json:"event_type"`
	LocationID  string          `json:"location_id"`
	Payload     json.RawMessage `json:"payload"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// Workspace maps one GHL location to one owning user. At most one workspace
// exists per ghl_location_id; the mapping is established out-of-band.
type Workspace struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	GHLLocationID string `json:"ghl_location_id"`
}

// Contact is the synced copy of a GHL contact, upserted keyed on
// GHLContactID with last-write-wins semantics.
type Contact struct {
	ID           int64             `json:"id"`
	WorkspaceID  string            `json:"workspace_id"`
	GHLContactID string            `json:"ghl_contact_id"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Source       string            `json:"source"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"custom_fields"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Opportunity is the synced copy of a GHL opportunity. Upsert semantics are
// identical to Contact, keyed on GHLOpportunityID.
type Opportunity struct {
	ID               int64     `json:"id"`
	WorkspaceID      string    `json:"workspace_id"`
	GHLOpportunityID string    `json:"ghl_opportunity_id"`
	Title            string    `json:"title"`
	Value            float64   `json:"value"`
	Stage            string    `json:"stage"`
	ContactID        string    `json:"contact_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// Notification is an in-app notification addressed to a workspace owner.
// This service only creates them; read-state is mutated elsewhere.
type Notification struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ClientAccount is the local record of a provisioned GHL sub-account.
type ClientAccount struct {
	ID            int64     `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	Plan          string    `json:"plan"`
	GHLLocationID string    `json:"ghl_location_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notification type tags emitted by the sync processors.
const (
	NotificationContactCreated     = "contact_created"
	NotificationOpportunityCreated = "opportunity_created"
	NotificationAppointmentBooked  = "appointment_booked"
	NotificationNewMessage         = "new_message"
	NotificationWelcome            = "welcome"
)
