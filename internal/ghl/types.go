package ghl

import "fmt"

// APIError is returned for any non-2xx response from the GHL API. It carries
// the status code and raw body; callers decide whether to surface or swallow.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ghl: api error %d: %s", e.Status, e.Body)
}

// ErrDisabled is returned by the Disabled client for every operation.
var ErrDisabled = fmt.Errorf("ghl: client disabled (no API key configured)")

// Contact mirrors the GHL contact schema for both requests and responses.
type Contact struct {
	ID           string            `json:"id,omitempty"`
	LocationID   string            `json:"locationId,omitempty"`
	FirstName    string            `json:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Source       string            `json:"source,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// Opportunity mirrors the GHL opportunity schema.
type Opportunity struct {
	ID            string  `json:"id,omitempty"`
	LocationID    string  `json:"locationId,omitempty"`
	PipelineID    string  `json:"pipelineId,omitempty"`
	StageID       string  `json:"pipelineStageId,omitempty"`
	Name          string  `json:"name,omitempty"`
	MonetaryValue float64 `json:"monetaryValue,omitempty"`
	ContactID     string  `json:"contactId,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// Pipeline is one sales pipeline with its stages.
type Pipeline struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Stages []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"stages"`
}

// Task is a CRM task attached to a contact.
type Task struct {
	ID          string `json:"id,omitempty"`
	ContactID   string `json:"contactId,omitempty"`
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Completed   bool   `json:"completed"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Description string `json:"description,omitempty"`
}

// Message is an outbound conversation message (SMS, email, etc).
type Message struct {
	Type      string `json:"type"`
	ContactID string `json:"contactId"`
	Message   string `json:"message"`
}

// Appointment is a calendar booking.
type Appointment struct {
	ID         string `json:"id,omitempty"`
	CalendarID string `json:"calendarId"`
	LocationID string `json:"locationId,omitempty"`
	ContactID  string `json:"contactId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime,omitempty"`
	Title      string `json:"title,omitempty"`
}

// Location is a GHL location (sub-account).
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// SubAccountRequest creates a new location under the agency.
type SubAccountRequest struct {
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// APIKey is a location-scoped key minted during provisioning.
type APIKey struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}
