package redisclient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier fans out queue-change events so clients watching a doctor's queue
// re-fetch it. Booking and every status transition publish one event.
type Notifier interface {
	PublishQueueChange(ctx context.Context, doctorID uuid.UUID, day string) error
}

// Subscriber delivers a tick per change on a doctor's queue for a given day.
// Ticks carry no payload; subscribers re-query the queue on each one.
type Subscriber interface {
	SubscribeQueue(ctx context.Context, doctorID uuid.UUID, day string) (<-chan struct{}, func(), error)
}

type queueNotifier struct {
	client *redis.Client
}

func NewQueueNotifier(client *redis.Client) *queueNotifier {
	return &queueNotifier{client: client}
}

func queueChannel(doctorID uuid.UUID, day string) string {
	return fmt.Sprintf("queue:%s:%s", doctorID.String(), day)
}

func (n *queueNotifier) PublishQueueChange(ctx context.Context, doctorID uuid.UUID, day string) error {
	if err := n.client.Publish(ctx, queueChannel(doctorID, day), "changed").Err(); err != nil {
		return fmt.Errorf("publish queue change: %w", err)
	}
	return nil
}

func (n *queueNotifier) SubscribeQueue(ctx context.Context, doctorID uuid.UUID, day string) (<-chan struct{}, func(), error) {
	sub := n.client.Subscribe(ctx, queueChannel(doctorID, day))

	// Force the subscription onto the wire before returning, so a publish
	// racing with the subscribe is not silently dropped.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe queue channel: %w", err)
	}

	ticks := make(chan struct{}, 1)
	msgs := sub.Channel()

	go func() {
		defer close(ticks)
		for range msgs {
			select {
			case ticks <- struct{}{}:
			default:
				// A tick is already pending; coalesce.
			}
		}
	}()

	cancel := func() {
		_ = sub.Close()
	}

	return ticks, cancel, nil
}
