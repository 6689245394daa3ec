package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// Consumer drains both notification queues into a Notifier that actually
// delivers them, normally the mail notifier.
type Consumer struct {
	url      string
	prefetch int
	sink     service.Notifier
}

func NewConsumer(url string, prefetch int, sink service.Notifier) *Consumer {
	if sink == nil {
		panic("queue: nil sink")
	}
	if prefetch <= 0 {
		prefetch = 50
	}
	return &Consumer{url: url, prefetch: prefetch, sink: sink}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			applog.Warn("notification consumer: dial failed", "err", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		applog.Warn("notification consumer: loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		applog.Warn("notification consumer: set QoS failed", "err", err)
	}

	archived, err := subscribe(ch, QueueReservationArchived)
	if err != nil {
		return err
	}
	reviews, err := subscribe(ch, QueueReviewRequested)
	if err != nil {
		return err
	}
	applog.Info("notification consumer started",
		"queues", QueueReservationArchived+","+QueueReviewRequested)

	for {
		var (
			d  amqp.Delivery
			ok bool
			q  string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-archived:
			q = QueueReservationArchived
		case d, ok = <-reviews:
			q = QueueReviewRequested
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.handle(ctx, q, d.Body); err != nil {
			applog.Error("notification consumer: handle failed", err, "queue", q)
			// Not requeued: a message that fails once would spin forever.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

func subscribe(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if err := declare(ch, queue); err != nil {
		return nil, err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

// handle decodes one message body from queue and hands it to the sink.
func (c *Consumer) handle(ctx context.Context, queue string, body []byte) error {
	switch queue {
	case QueueReservationArchived:
		var ev ReservationArchivedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		return c.sink.ReservationArchived(ctx, ev.Reservation)
	case QueueReviewRequested:
		var ev ReviewRequestedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if ev.ReviewLink == "" {
			return errors.New("review event without link")
		}
		return c.sink.ReviewRequested(ctx, ev.Reservation, ev.ReviewLink)
	}
	return fmt.Errorf("unknown queue %q", queue)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
