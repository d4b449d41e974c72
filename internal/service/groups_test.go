package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fleetconfig/channelhub/internal/domain"
)

func TestAddGroup(t *testing.T) {
	svc, s, b := setupService(t)
	ctx := context.Background()

	res, err := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")
	if err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	if !res.Success || res.UUID == "" {
		t.Errorf("unexpected result: %+v", res)
	}

	group, _ := s.GetGroupByName(ctx, "org-1", "dev")
	if group == nil {
		t.Fatal("group not persisted")
	}
	if group.Owner != "alice" {
		t.Errorf("owner = %q, want alice", group.Owner)
	}

	if b.count() != 1 {
		t.Errorf("expected exactly 1 change event, got %d", b.count())
	}
}

func TestAddGroup_DuplicateName(t *testing.T) {
	svc, _, b := setupService(t)
	ctx := context.Background()

	if _, err := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev"); err != nil {
		t.Fatalf("first AddGroup failed: %v", err)
	}

	_, err := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}
	if b.count() != 1 {
		t.Errorf("duplicate must not publish, got %d events", b.count())
	}
}

func TestRemoveGroup(t *testing.T) {
	svc, s, b := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")

	res, err := svc.RemoveGroup(ctx, adminPrincipal(), "org-1", created.UUID)
	if err != nil {
		t.Fatalf("RemoveGroup failed: %v", err)
	}
	if res.UUID != created.UUID {
		t.Errorf("result uuid = %q, want %q", res.UUID, created.UUID)
	}

	group, _ := s.GetGroup(ctx, "org-1", created.UUID)
	if group != nil {
		t.Error("group still present after remove")
	}
	if b.count() != 2 {
		t.Errorf("expected 2 change events (add + remove), got %d", b.count())
	}
}

func TestRemoveGroup_BlockedByDependentSubscriptions(t *testing.T) {
	svc, s, b := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")

	// Two subscriptions reference the group name through their tags.
	for _, name := range []string{"sub-a", "sub-b"} {
		if _, err := svc.AddSubscription(ctx, adminPrincipal(), "org-1", domain.CreateSubscriptionRequest{
			Name:        name,
			Tags:        []string{"dev"},
			ChannelUUID: "ch-1",
			VersionUUID: "ver-1",
		}); err != nil {
			t.Fatalf("AddSubscription failed: %v", err)
		}
	}

	published := b.count()
	_, err := svc.RemoveGroup(ctx, adminPrincipal(), "org-1", created.UUID)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Dependents != 2 {
		t.Errorf("dependents = %d, want 2", verr.Dependents)
	}

	if group, _ := s.GetGroup(ctx, "org-1", created.UUID); group == nil {
		t.Error("blocked remove must leave the group in place")
	}
	if b.count() != published {
		t.Errorf("blocked remove must not publish, got %d new events", b.count()-published)
	}
}

func TestRemoveGroup_CascadesMemberships(t *testing.T) {
	svc, s, _ := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")
	if _, err := svc.GroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1", "c2", "c3"}); err != nil {
		t.Fatalf("GroupClusters failed: %v", err)
	}

	if _, err := svc.RemoveGroup(ctx, adminPrincipal(), "org-1", created.UUID); err != nil {
		t.Fatalf("RemoveGroup failed: %v", err)
	}

	ids, _ := s.ListGroupClusterIDs(ctx, "org-1", created.UUID)
	if len(ids) != 0 {
		t.Errorf("memberships survived the cascade: %v", ids)
	}
}

func TestRemoveGroupByName(t *testing.T) {
	svc, s, _ := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")

	res, err := svc.RemoveGroupByName(ctx, adminPrincipal(), "org-1", "dev")
	if err != nil {
		t.Fatalf("RemoveGroupByName failed: %v", err)
	}
	if res.UUID != created.UUID {
		t.Errorf("result uuid = %q, want %q", res.UUID, created.UUID)
	}
	if group, _ := s.GetGroupByName(ctx, "org-1", "dev"); group != nil {
		t.Error("group still present after remove")
	}
}

func TestRemoveGroup_NotFound(t *testing.T) {
	svc, _, b := setupService(t)
	ctx := context.Background()

	if _, err := svc.RemoveGroup(ctx, adminPrincipal(), "org-1", "g-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound by uuid, got %v", err)
	}
	if _, err := svc.RemoveGroupByName(ctx, adminPrincipal(), "org-1", "no-such-group"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound by name, got %v", err)
	}
	if b.count() != 0 {
		t.Errorf("no change event for a missing group, got %d", b.count())
	}
}

func TestGroupClusters_Idempotent(t *testing.T) {
	svc, _, b := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")

	res, err := svc.GroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("GroupClusters failed: %v", err)
	}
	if res.Modified != 2 {
		t.Errorf("modified = %d, want 2", res.Modified)
	}

	// Re-grouping an existing member only counts the new one.
	res, err = svc.GroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1", "c3"})
	if err != nil {
		t.Fatalf("GroupClusters failed: %v", err)
	}
	if res.Modified != 1 {
		t.Errorf("modified = %d, want 1", res.Modified)
	}

	// Both calls publish, even the partially-redundant one.
	if b.count() != 3 {
		t.Errorf("expected 3 change events (addGroup + 2 groupClusters), got %d", b.count())
	}
}

func TestUnGroupClusters_Idempotent(t *testing.T) {
	svc, _, b := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")
	svc.GroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1", "c2"})

	res, err := svc.UnGroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1", "c-never-grouped"})
	if err != nil {
		t.Fatalf("UnGroupClusters failed: %v", err)
	}
	if res.Modified != 1 {
		t.Errorf("modified = %d, want 1", res.Modified)
	}

	// Ungrouping a non-member is a no-op but still publishes.
	before := b.count()
	res, err = svc.UnGroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1"})
	if err != nil {
		t.Fatalf("UnGroupClusters failed: %v", err)
	}
	if res.Modified != 0 {
		t.Errorf("modified = %d, want 0", res.Modified)
	}
	if b.count() != before+1 {
		t.Errorf("no-op ungroup must still publish")
	}
}

func TestGroupClusters_NotFound(t *testing.T) {
	svc, _, b := setupService(t)
	ctx := context.Background()

	if _, err := svc.GroupClusters(ctx, adminPrincipal(), "org-1", "g-missing", []string{"c1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for group, got %v", err)
	}
	if _, err := svc.UnGroupClusters(ctx, adminPrincipal(), "org-1", "g-missing", []string{"c1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for ungroup, got %v", err)
	}
	if b.count() != 0 {
		t.Errorf("no change event for a missing group, got %d", b.count())
	}
}

func TestGroupClusters_ConcurrentConvergence(t *testing.T) {
	svc, s, _ := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GroupClusters(ctx, adminPrincipal(), "org-1", created.UUID, []string{"c1", "c2"}); err != nil {
				t.Errorf("GroupClusters failed: %v", err)
			}
		}()
	}
	wg.Wait()

	ids, _ := s.ListGroupClusterIDs(ctx, "org-1", created.UUID)
	if len(ids) != 2 {
		t.Errorf("expected exactly 2 memberships after concurrent grouping, got %d", len(ids))
	}
}

func TestGroupReads(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, _ := svc.AddGroup(ctx, adminPrincipal(), "org-1", "dev")

	groups, err := svc.Groups(ctx, readerPrincipal(), "org-1")
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("got %d groups, want 1", len(groups))
	}

	byUUID, err := svc.Group(ctx, readerPrincipal(), "org-1", created.UUID)
	if err != nil || byUUID.Name != "dev" {
		t.Errorf("Group by uuid: %+v, err %v", byUUID, err)
	}
	byName, err := svc.GroupByName(ctx, readerPrincipal(), "org-1", "dev")
	if err != nil || byName.UUID != created.UUID {
		t.Errorf("Group by name: %+v, err %v", byName, err)
	}
}
