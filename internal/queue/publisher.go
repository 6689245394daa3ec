package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// Publisher sends notification events to the broker. Each publish opens
// its own connection, so a broker outage only fails the publishes made
// while it lasts.
type Publisher struct {
	url string
	now func() time.Time
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, now: func() time.Time { return time.Now().UTC() }}
}

func (p *Publisher) ReservationArchived(ctx context.Context, r model.Reservation) error {
	return p.publish(ctx, QueueReservationArchived, ReservationArchivedEvent{
		Reservation: r,
		ArchivedAt:  p.now(),
	})
}

func (p *Publisher) ReviewRequested(ctx context.Context, r model.Reservation, link string) error {
	return p.publish(ctx, QueueReviewRequested, ReviewRequestedEvent{
		Reservation: r,
		ReviewLink:  link,
		RequestedAt: p.now(),
	})
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", queue, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		applog.Error("rabbitmq dial failed", err, "queue", queue)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		applog.Error("rabbitmq channel open failed", err, "queue", queue)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, queue); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		applog.Error("rabbitmq publish failed", err, "queue", queue)
		return err
	}
	applog.Debug("event published", "queue", queue, "bytes", len(body))
	return nil
}

// declare makes sure queue exists. Durable, so messages survive broker
// restarts.
func declare(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	return nil
}
