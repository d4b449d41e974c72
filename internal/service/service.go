// Package service orchestrates the control plane operations: the pull
// path (tag resolution to configuration URLs), the mutations that change
// subscription membership, and the change-publish that follows every
// successful mutation.
package service

import (
	"context"
	"log/slog"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/bus"
	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/engine"
	"github.com/fleetconfig/channelhub/internal/store"
)

type Service struct {
	store    store.Store
	gate     *auth.Gate
	resolver *engine.Resolver
	bus      bus.Bus
	logger   *slog.Logger
}

func New(s store.Store, gate *auth.Gate, resolver *engine.Resolver, b bus.Bus, logger *slog.Logger) *Service {
	return &Service{
		store:    s,
		gate:     gate,
		resolver: resolver,
		bus:      b,
		logger:   logger,
	}
}

// publishChange broadcasts a change event for the organization. It runs
// only after the triggering write committed, and its failure never fails
// the mutation.
func (s *Service) publishChange(ctx context.Context, orgID string) {
	s.bus.Publish(ctx, orgID)
}

// Subscriptions lists an organization's subscriptions.
func (s *Service) Subscriptions(ctx context.Context, p auth.Principal, orgID string) ([]domain.Subscription, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionRead, auth.ResourceSubscription, "subscriptions"); err != nil {
		return nil, err
	}
	return s.store.ListSubscriptions(ctx, orgID)
}

// Subscription fetches one subscription by uuid.
func (s *Service) Subscription(ctx context.Context, p auth.Principal, orgID, uuid string) (*domain.Subscription, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionRead, auth.ResourceSubscription, "subscription"); err != nil {
		return nil, err
	}
	sub, err := s.store.GetSubscription(ctx, orgID, uuid)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &domain.NotFoundError{Resource: "subscription", ID: uuid}
	}
	return sub, nil
}

// Groups lists an organization's groups.
func (s *Service) Groups(ctx context.Context, p auth.Principal, orgID string) ([]domain.Group, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionRead, auth.ResourceGroup, "groups"); err != nil {
		return nil, err
	}
	return s.store.ListGroups(ctx, orgID)
}

// Group fetches one group by uuid.
func (s *Service) Group(ctx context.Context, p auth.Principal, orgID, uuid string) (*domain.Group, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionRead, auth.ResourceGroup, "group"); err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, orgID, uuid)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: uuid}
	}
	return group, nil
}

// GroupByName fetches one group by its per-org unique name.
func (s *Service) GroupByName(ctx context.Context, p auth.Principal, orgID, name string) (*domain.Group, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionRead, auth.ResourceGroup, "groupByName"); err != nil {
		return nil, err
	}
	group, err := s.store.GetGroupByName(ctx, orgID, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: name}
	}
	return group, nil
}
