package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/classmood/moodboard/internal/logging"
)

// Publisher narrows the event bus surface the store needs for mutations.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisBus fans reaction change events out to every subscriber through a
// Redis pub/sub channel.
type RedisBus struct {
	client  *redis.Client
	channel string
}

func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	return &RedisBus{client: client, channel: channel}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe opens a long-lived listener on the event channel. The returned
// channel is closed when ctx is cancelled, which also tears down the
// underlying Redis subscription.
func (b *RedisBus) Subscribe(ctx context.Context) <-chan Event {
	sub := b.client.Subscribe(ctx, b.channel)
	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logging.Warn("Dropping malformed reaction event", map[string]interface{}{"error": err.Error()})
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events
}
