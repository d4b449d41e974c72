package bus

import (
	"context"
	"log/slog"
	"sync"
)

// watcherBuffer bounds how far a slow watcher may lag before events are
// dropped. Delivery is best-effort; a watcher that misses events re-pulls
// current state when it next wakes.
const watcherBuffer = 64

// MemoryBus is an in-process Bus with an explicit watcher registry. It
// backs tests and single-instance deployments without Redis.
type MemoryBus struct {
	mu       sync.Mutex
	watchers map[*memoryWatcher]struct{}
	logger   *slog.Logger
}

func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		watchers: make(map[*memoryWatcher]struct{}),
		logger:   logger,
	}
}

func (b *MemoryBus) Publish(ctx context.Context, orgID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for w := range b.watchers {
		select {
		case w.events <- Event{OrgID: orgID}:
		default:
			b.logger.Warn("watcher buffer full, dropping change event", "org_id", orgID)
		}
	}
}

func (b *MemoryBus) Subscribe(ctx context.Context) (Watcher, error) {
	w := &memoryWatcher{
		bus:    b,
		events: make(chan Event, watcherBuffer),
	}
	b.mu.Lock()
	b.watchers[w] = struct{}{}
	b.mu.Unlock()
	return w, nil
}

// WatcherCount returns the number of registered watchers.
func (b *MemoryBus) WatcherCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers)
}

type memoryWatcher struct {
	bus       *MemoryBus
	events    chan Event
	closeOnce sync.Once
}

func (w *memoryWatcher) Events() <-chan Event {
	return w.events
}

// Close deregisters the watcher from the bus; no further deliveries occur
// and Events() is closed.
func (w *memoryWatcher) Close() {
	w.closeOnce.Do(func() {
		w.bus.mu.Lock()
		delete(w.bus.watchers, w)
		w.bus.mu.Unlock()
		close(w.events)
	})
}
