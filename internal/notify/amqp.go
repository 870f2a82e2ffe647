package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/saintvisionai/crm-bridge/internal/models"
)

type amqpNotifier struct {
	conn     *amqp091.Connection
	exchange string
	log      *slog.Logger
}

// NewAMQP connects to RabbitMQ and declares a durable topic exchange for
// notification fanout.
func NewAMQP(url, exchange string, logger *slog.Logger) (Notifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &amqpNotifier{
		conn:     conn,
		exchange: exchange,
		log:      logger,
	}, nil
}

func (a *amqpNotifier) Publish(ctx context.Context, routingKey string, n models.Notification) error {
	ch, err := a.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	msgID := uuid.NewString()
	body, err := json.Marshal(Envelope{
		Meta: Meta{ID: msgID, Source: "crm-bridge"},
		Data: n,
	})
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx, a.exchange, routingKey, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msgID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err == nil {
		a.log.Info("notification published",
			slog.String("key", routingKey), slog.String("exchange", a.exchange))
	}
	return err
}

func (a *amqpNotifier) Close() error {
	return a.conn.Close()
}
