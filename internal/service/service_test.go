package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/bus"
	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/engine"
	"github.com/fleetconfig/channelhub/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingBus captures published org ids so tests can assert exactly how
// many change events a mutation emitted.
type recordingBus struct {
	mu        sync.Mutex
	published []string
}

func (b *recordingBus) Publish(ctx context.Context, orgID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, orgID)
}

func (b *recordingBus) Subscribe(ctx context.Context) (bus.Watcher, error) {
	panic("not used in service tests")
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func (b *recordingBus) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.published) == 0 {
		return ""
	}
	return b.published[len(b.published)-1]
}

func setupService(t *testing.T) (*Service, *memory.Store, *recordingBus) {
	t.Helper()
	s := memory.New()
	s.AddOrganization(domain.Organization{
		ID:      "org-1",
		Name:    "Acme",
		OrgKeys: []string{"key-1"},
	})
	s.AddChannel(
		domain.Channel{UUID: "ch-1", OrgID: "org-1", Name: "configs"},
		domain.ChannelVersion{UUID: "ver-1", Name: "v1"},
		domain.ChannelVersion{UUID: "ver-2", Name: "v2"},
	)

	b := &recordingBus{}
	resolver := engine.NewResolver(s, "http://razee.example.com", testLogger())
	gate := auth.NewGate(s, testLogger())
	svc := New(s, gate, resolver, b, testLogger())
	return svc, s, b
}

func adminPrincipal() auth.Principal {
	return auth.Principal{User: &domain.User{Name: "alice", OrgID: "org-1", Role: domain.RoleAdmin}}
}

func readerPrincipal() auth.Principal {
	return auth.Principal{User: &domain.User{Name: "bob", OrgID: "org-1", Role: domain.RoleReader}}
}

func clusterPrincipal(orgKey string) auth.Principal {
	return auth.Principal{OrgKey: orgKey}
}
