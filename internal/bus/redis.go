package bus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Topic is the single shared Redis pub/sub channel all change events go
// through. Partitioning is logical: the event payload is the org id and
// watchers filter per event, so behavior is identical to per-org topics.
const Topic = "channelhub.changed"

// RedisBus is the production Bus: Redis pub/sub fan-out so every server
// instance sees every change event regardless of which instance handled
// the mutation.
type RedisBus struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisBus(client *redis.Client, logger *slog.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger}
}

// Publish broadcasts a change event for the organization. Fire-and-forget:
// failures are logged and never surfaced to the triggering mutation.
func (b *RedisBus) Publish(ctx context.Context, orgID string) {
	if err := b.client.Publish(ctx, Topic, orgID).Err(); err != nil {
		b.logger.Error("change publish failed", "org_id", orgID, "error", err)
	}
}

func (b *RedisBus) Subscribe(ctx context.Context) (Watcher, error) {
	pubsub := b.client.Subscribe(ctx, Topic)

	// Force the subscription to be established before returning so a
	// publish immediately after Subscribe is not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	w := &redisWatcher{
		pubsub: pubsub,
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	go w.pump(pubsub.Channel())
	return w, nil
}

type redisWatcher struct {
	pubsub    *redis.PubSub
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func (w *redisWatcher) pump(msgs <-chan *redis.Message) {
	defer close(w.events)
	for msg := range msgs {
		select {
		case w.events <- Event{OrgID: msg.Payload}:
		case <-w.done:
			return
		}
	}
}

func (w *redisWatcher) Events() <-chan Event {
	return w.events
}

// Close deregisters the watcher immediately; no further deliveries occur.
func (w *redisWatcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.pubsub.Close()
	})
}
