// Package memory provides an in-memory Store implementation. It backs the
// unit tests and local development without Postgres; data is lost on
// restart.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/store"
)

type Store struct {
	mu sync.RWMutex

	organizations map[string]*domain.Organization          // org_id -> org
	users         map[string]*domain.User                  // api_key -> user
	subscriptions map[string]map[string]*domain.Subscription // org_id -> uuid -> sub
	channels      map[string]map[string]*domain.Channel      // org_id -> uuid -> channel
	versions      map[string][]*domain.ChannelVersion        // org_id -> versions
	groups        map[string]map[string]*domain.Group        // org_id -> uuid -> group
	memberships   map[string][]*domain.GroupMembership       // org_id -> memberships
}

func New() *Store {
	return &Store{
		organizations: make(map[string]*domain.Organization),
		users:         make(map[string]*domain.User),
		subscriptions: make(map[string]map[string]*domain.Subscription),
		channels:      make(map[string]map[string]*domain.Channel),
		versions:      make(map[string][]*domain.ChannelVersion),
		groups:        make(map[string]map[string]*domain.Group),
		memberships:   make(map[string][]*domain.GroupMembership),
	}
}

var _ store.Store = (*Store)(nil)

// Seed helpers. These bypass validation; they exist so tests and local
// setups can provision the externally-owned entities (orgs, users,
// channels, versions).

func (s *Store) AddOrganization(org domain.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := org
	clone.OrgKeys = slices.Clone(org.OrgKeys)
	s.organizations[org.ID] = &clone
}

func (s *Store) AddUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := user
	s.users[user.APIKey] = &clone
}

func (s *Store) AddChannel(ch domain.Channel, versions ...domain.ChannelVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channels[ch.OrgID] == nil {
		s.channels[ch.OrgID] = make(map[string]*domain.Channel)
	}
	chClone := ch
	s.channels[ch.OrgID][ch.UUID] = &chClone
	for _, v := range versions {
		vClone := v
		vClone.OrgID = ch.OrgID
		vClone.ChannelUUID = ch.UUID
		s.versions[ch.OrgID] = append(s.versions[ch.OrgID], &vClone)
	}
}

func (s *Store) GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.organizations[orgID]
	if !ok {
		return nil, nil
	}
	clone := *org
	clone.OrgKeys = slices.Clone(org.OrgKeys)
	return &clone, nil
}

func (s *Store) GetUserByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[apiKey]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, orgID string) ([]domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]domain.Subscription, 0, len(s.subscriptions[orgID]))
	for _, sub := range s.subscriptions[orgID] {
		subs = append(subs, cloneSubscription(sub))
	}
	return subs, nil
}

func (s *Store) GetSubscription(ctx context.Context, orgID, uuid string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[orgID][uuid]
	if !ok {
		return nil, nil
	}
	clone := cloneSubscription(sub)
	return &clone, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriptions[sub.OrgID] == nil {
		s.subscriptions[sub.OrgID] = make(map[string]*domain.Subscription)
	}
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	clone := cloneSubscription(sub)
	s.subscriptions[sub.OrgID][sub.UUID] = &clone
	return nil
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subscriptions[sub.OrgID][sub.UUID]
	if !ok {
		return &domain.NotFoundError{Resource: "subscription", ID: sub.UUID}
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now()
	clone := cloneSubscription(sub)
	s.subscriptions[sub.OrgID][sub.UUID] = &clone
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, orgID, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[orgID][uuid]; !ok {
		return &domain.NotFoundError{Resource: "subscription", ID: uuid}
	}
	delete(s.subscriptions[orgID], uuid)
	return nil
}

func (s *Store) CountSubscriptionsWithTag(ctx context.Context, orgID, tag string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sub := range s.subscriptions[orgID] {
		if slices.Contains(sub.Tags, tag) {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetChannel(ctx context.Context, orgID, uuid string) (*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[orgID][uuid]
	if !ok {
		return nil, nil
	}
	clone := *ch
	return &clone, nil
}

func (s *Store) GetChannelVersion(ctx context.Context, orgID, channelUUID, versionUUID string) (*domain.ChannelVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.versions[orgID] {
		if v.ChannelUUID == channelUUID && v.UUID == versionUUID {
			clone := *v
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *Store) ListGroups(ctx context.Context, orgID string) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]domain.Group, 0, len(s.groups[orgID]))
	for _, g := range s.groups[orgID] {
		groups = append(groups, *g)
	}
	return groups, nil
}

func (s *Store) GetGroup(ctx context.Context, orgID, uuid string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[orgID][uuid]
	if !ok {
		return nil, nil
	}
	clone := *g
	return &clone, nil
}

func (s *Store) GetGroupByName(ctx context.Context, orgID, name string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups[orgID] {
		if g.Name == name {
			clone := *g
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groups[group.OrgID] == nil {
		s.groups[group.OrgID] = make(map[string]*domain.Group)
	}
	group.CreatedAt = time.Now()
	clone := *group
	s.groups[group.OrgID][group.UUID] = &clone
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, orgID, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[orgID][uuid]; !ok {
		return &domain.NotFoundError{Resource: "group", ID: uuid}
	}
	delete(s.groups[orgID], uuid)
	return nil
}

func (s *Store) AddClustersToGroup(ctx context.Context, orgID string, group *domain.Group, clusterIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	modified := 0
	for _, clusterID := range clusterIDs {
		if s.isMember(orgID, clusterID, group.UUID) {
			continue
		}
		s.memberships[orgID] = append(s.memberships[orgID], &domain.GroupMembership{
			OrgID:     orgID,
			ClusterID: clusterID,
			GroupUUID: group.UUID,
			GroupName: group.Name,
			CreatedAt: time.Now(),
		})
		modified++
	}
	return modified, nil
}

func (s *Store) RemoveClustersFromGroup(ctx context.Context, orgID, groupUUID string, clusterIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	modified := 0
	kept := s.memberships[orgID][:0]
	for _, m := range s.memberships[orgID] {
		if m.GroupUUID == groupUUID && slices.Contains(clusterIDs, m.ClusterID) {
			modified++
			continue
		}
		kept = append(kept, m)
	}
	s.memberships[orgID] = kept
	return modified, nil
}

func (s *Store) ListGroupClusterIDs(ctx context.Context, orgID, groupUUID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for _, m := range s.memberships[orgID] {
		if m.GroupUUID == groupUUID {
			ids = append(ids, m.ClusterID)
		}
	}
	return ids, nil
}

func (s *Store) isMember(orgID, clusterID, groupUUID string) bool {
	for _, m := range s.memberships[orgID] {
		if m.ClusterID == clusterID && m.GroupUUID == groupUUID {
			return true
		}
	}
	return false
}

func cloneSubscription(sub *domain.Subscription) domain.Subscription {
	clone := *sub
	clone.Tags = slices.Clone(sub.Tags)
	return clone
}
