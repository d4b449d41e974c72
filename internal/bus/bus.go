// Package bus implements the organization-scoped change bus. Mutations
// publish a stateless "something changed" event keyed by organization id;
// long-lived watchers consume the shared stream and narrow it with a
// per-event filter. Delivery is at-most-once and best-effort: nothing is
// buffered for disconnected watchers and there is no replay.
package bus

import (
	"context"
)

// Event signals that subscription membership or channel content changed
// for one organization. It carries no state; receivers re-pull.
type Event struct {
	OrgID string `json:"org_id"`
}

// Signal is the payload delivered to streaming clients whose filter
// passed. It deliberately says nothing about what changed.
type Signal struct {
	HasUpdates bool `json:"has_updates"`
}

// Bus is the publish side plus watcher registration. Publish never fails
// the triggering mutation; implementations log and move on.
type Bus interface {
	Publish(ctx context.Context, orgID string)
	// Subscribe registers a watcher over the shared fan-in stream of all
	// organizations' events. The caller must Close the watcher when done.
	Subscribe(ctx context.Context) (Watcher, error)
}

// Watcher is one registered consumer. Events() is closed after Close or
// when the bus shuts down.
type Watcher interface {
	Events() <-chan Event
	Close()
}

// Filter decides, per delivered event, whether a watcher should receive
// a signal. Filters must be side-effect free; a false return drops the
// event silently and the watcher stays registered.
type Filter func(ctx context.Context, ev Event) bool
