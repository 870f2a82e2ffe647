package notify

import (
	"context"

	"github.com/saintvisionai/crm-bridge/internal/models"
)

// Meta identifies one published notification message.
type Meta struct {
	ID            string `json:"id"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Source        string `json:"source"`
}

// Envelope is the wire format published to the fanout exchange.
type Envelope struct {
	Meta Meta                `json:"meta"`
	Data models.Notification `json:"data"`
}

// Notifier fans out notification records to downstream consumers (in-app
// feed, email digests). The store row is the source of truth; fanout is
// best-effort.
type Notifier interface {
	Publish(ctx context.Context, routingKey string, n models.Notification) error
	Close() error
}

// Disabled is the no-op Notifier selected when AMQP_URL is unset.
type Disabled struct{}

var _ Notifier = Disabled{}

func (Disabled) Publish(context.Context, string, models.Notification) error { return nil }
func (Disabled) Close() error                                               { return nil }
