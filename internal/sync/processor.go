package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/saintvisionai/crm-bridge/internal/models"
	"github.com/saintvisionai/crm-bridge/internal/notify"
	"github.com/saintvisionai/crm-bridge/internal/store"
)

// Event type tags recognized by the processor.
const (
	EventContactCreated      = "contact.created"
	EventContactUpdated      = "contact.updated"
	EventOpportunityCreated  = "opportunity.created"
	EventAppointmentBooked   = "appointment.booked"
	EventConversationMessage = "conversation.message"
)

// Task is one raw inbound webhook body handed to the background worker. The
// HTTP acknowledgement was already sent; everything after that — schema
// validation, the audit row, dispatch — happens here, off the request path.
type Task struct {
	ID  string
	Raw json.RawMessage
}

// Event is a validated inbound webhook event ready for dispatch.
type Event struct {
	TaskID     string
	Type       string
	LocationID string
	Data       map[string]any
	Raw        json.RawMessage
}

// payload is the typed view of an inbound GHL event after schema validation.
type payload struct {
	Type       string         `json:"type"`
	LocationID string         `json:"locationId"`
	Timestamp  string         `json:"timestamp"`
	Data       map[string]any `json:"data"`
}

// Processor applies one event to the synced CRM state: workspace lookup,
// upsert keyed on the external id, notification row, best-effort fanout.
//
// Every failure is logged and swallowed. The webhook sender already received
// its acknowledgement, so nothing here may propagate; processing outcomes are
// observable only through logs and the audit table.
type Processor struct {
	store    store.Store
	notifier notify.Notifier
	schema   *jsonschema.Schema
	log      *slog.Logger
}

func NewProcessor(st store.Store, notifier notify.Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		store:    st,
		notifier: notifier,
		schema:   compilePayloadSchema(),
		log:      logger,
	}
}

// ProcessRaw ingests one raw webhook body: schema check, audit row, then
// dispatch. Invalid payloads are logged and dropped with no side effects —
// the sender already has its acknowledgement either way.
func (p *Processor) ProcessRaw(ctx context.Context, t Task) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(t.Raw))
	if err != nil {
		p.log.Warn("dropping webhook: invalid JSON",
			slog.String("task", t.ID), slog.String("error", err.Error()))
		return
	}
	if err := p.schema.Validate(value); err != nil {
		p.log.Warn("dropping webhook: schema violation",
			slog.String("task", t.ID), slog.String("error", err.Error()))
		return
	}

	var pl payload
	if err := json.Unmarshal(t.Raw, &pl); err != nil {
		p.log.Warn("dropping webhook: decode failed",
			slog.String("task", t.ID), slog.String("error", err.Error()))
		return
	}
	if pl.Data == nil {
		pl.Data = map[string]any{}
	}

	// Audit row is fire-and-forget: a write failure is logged, not retried,
	// and does not stop dispatch.
	if err := p.store.RecordWebhookEvent(ctx, pl.Type, pl.LocationID, t.Raw); err != nil {
		p.log.Error("webhook audit write failed",
			slog.String("task", t.ID),
			slog.String("type", pl.Type),
			slog.String("error", err.Error()))
	}

	p.Process(ctx, Event{
		TaskID:     t.ID,
		Type:       pl.Type,
		LocationID: pl.LocationID,
		Data:       pl.Data,
		Raw:        t.Raw,
	})
}

// Process dispatches on the event type. Unrecognized types are logged and
// ignored; they are not errors under the inbound contract.
func (p *Processor) Process(ctx context.Context, ev Event) {
	var err error
	switch ev.Type {
	case EventContactCreated, EventContactUpdated:
		err = p.handleContact(ctx, ev)
	case EventOpportunityCreated:
		err = p.handleOpportunity(ctx, ev)
	case EventAppointmentBooked:
		err = p.handleAppointment(ctx, ev)
	case EventConversationMessage:
		err = p.handleMessage(ctx, ev)
	default:
		p.log.Info("ignoring unrecognized event type",
			slog.String("task", ev.TaskID), slog.String("type", ev.Type))
		return
	}
	if err != nil {
		p.log.Error("event processing failed",
			slog.String("task", ev.TaskID),
			slog.String("type", ev.Type),
			slog.String("location", ev.LocationID),
			slog.String("error", err.Error()))
		return
	}
	p.log.Info("event processed",
		slog.String("task", ev.TaskID), slog.String("type", ev.Type))
}

// workspace resolves the tenant for an event. A missing mapping stops
// processing without error: the event belongs to a location this system
// does not manage.
func (p *Processor) workspace(ctx context.Context, ev Event) (models.Workspace, bool) {
	ws, err := p.store.WorkspaceByLocation(ctx, ev.LocationID)
	if errors.Is(err, store.ErrNotFound) {
		p.log.Warn("no workspace for location, dropping event",
			slog.String("task", ev.TaskID),
			slog.String("type", ev.Type),
			slog.String("location", ev.LocationID))
		return models.Workspace{}, false
	}
	if err != nil {
		p.log.Error("workspace lookup failed",
			slog.String("task", ev.TaskID), slog.String("error", err.Error()))
		return models.Workspace{}, false
	}
	return ws, true
}

func (p *Processor) handleContact(ctx context.Context, ev Event) error {
	ws, ok := p.workspace(ctx, ev)
	if !ok {
		return nil
	}
	contactID := str(ev.Data, "id")
	if contactID == "" {
		return errors.New("contact event missing data.id")
	}

	c := models.Contact{
		WorkspaceID:  ws.ID,
		GHLContactID: contactID,
		FirstName:    str(ev.Data, "firstName"),
		LastName:     str(ev.Data, "lastName"),
		Email:        str(ev.Data, "email"),
		Phone:        str(ev.Data, "phone"),
		Source:       str(ev.Data, "source"),
		Tags:         strSlice(ev.Data, "tags"),
		CustomFields: strMap(ev.Data, "customFields"),
	}
	if err := p.store.UpsertContact(ctx, c); err != nil {
		return fmt.Errorf("upsert contact %s: %w", contactID, err)
	}

	name := displayName(c.FirstName, c.LastName, c.Email)
	p.emit(ctx, models.Notification{
		UserID:  ws.UserID,
		Type:    models.NotificationContactCreated,
		Title:   "New contact",
		Message: fmt.Sprintf("%s was added to your CRM", name),
		Data:    map[string]any{"ghl_contact_id": contactID},
	})
	return nil
}

func (p *Processor) handleOpportunity(ctx context.Context, ev Event) error {
	ws, ok := p.workspace(ctx, ev)
	if !ok {
		return nil
	}
	oppID := str(ev.Data, "id")
	if oppID == "" {
		return errors.New("opportunity event missing data.id")
	}

	title := str(ev.Data, "title")
	if title == "" {
		title = str(ev.Data, "name")
	}
	o := models.Opportunity{
		WorkspaceID:      ws.ID,
		GHLOpportunityID: oppID,
		Title:            title,
		Value:            num(ev.Data, "monetaryValue"),
		Stage:            str(ev.Data, "stage"),
		ContactID:        str(ev.Data, "contactId"),
	}
	if err := p.store.UpsertOpportunity(ctx, o); err != nil {
		return fmt.Errorf("upsert opportunity %s: %w", oppID, err)
	}

	p.emit(ctx, models.Notification{
		UserID:  ws.UserID,
		Type:    models.NotificationOpportunityCreated,
		Title:   "New opportunity",
		Message: fmt.Sprintf("%q worth $%.2f entered your pipeline", o.Title, o.Value),
		Data:    map[string]any{"ghl_opportunity_id": oppID, "value": o.Value},
	})
	return nil
}

func (p *Processor) handleAppointment(ctx context.Context, ev Event) error {
	ws, ok := p.workspace(ctx, ev)
	if !ok {
		return nil
	}
	p.emit(ctx, models.Notification{
		UserID:  ws.UserID,
		Type:    models.NotificationAppointmentBooked,
		Title:   "Appointment booked",
		Message: fmt.Sprintf("An appointment was booked for %s", str(ev.Data, "startTime")),
		Data: map[string]any{
			"ghl_appointment_id": str(ev.Data, "id"),
			"contact_id":         str(ev.Data, "contactId"),
		},
	})
	return nil
}

func (p *Processor) handleMessage(ctx context.Context, ev Event) error {
	ws, ok := p.workspace(ctx, ev)
	if !ok {
		return nil
	}
	body := truncate(str(ev.Data, "body"), 120)
	p.emit(ctx, models.Notification{
		UserID:  ws.UserID,
		Type:    models.NotificationNewMessage,
		Title:   "New message",
		Message: body,
		Data: map[string]any{
			"ghl_contact_id": str(ev.Data, "contactId"),
			"channel":        str(ev.Data, "type"),
		},
	})
	return nil
}

// emit writes the notification row and fans it out. Both are best-effort:
// a failed insert must not block fanout and vice versa.
func (p *Processor) emit(ctx context.Context, n models.Notification) {
	if err := p.store.InsertNotification(ctx, n); err != nil {
		p.log.Error("notification insert failed",
			slog.String("type", n.Type), slog.String("error", err.Error()))
	}
	if err := p.notifier.Publish(ctx, "notification."+n.Type, n); err != nil {
		p.log.Error("notification publish failed",
			slog.String("type", n.Type), slog.String("error", err.Error()))
	}
}

// truncate shortens s to at most n runes, never splitting a multi-byte
// character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func displayName(first, last, fallback string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	case fallback != "":
		return fallback
	}
	return "A new contact"
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func strSlice(m map[string]any, key string) []string {
	raw, _ := m[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func strMap(m map[string]any, key string) map[string]string {
	raw, _ := m[key].(map[string]any)
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
