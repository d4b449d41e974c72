package service

import (
	"context"
	"fmt"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/google/uuid"
)

// AddGroup creates a group. Group names are unique per organization; a
// collision is a validation conflict, not an error from the store.
func (s *Service) AddGroup(ctx context.Context, p auth.Principal, orgID, name string) (*domain.MutationResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceGroup, "addGroup"); err != nil {
		return nil, err
	}

	existing, err := s.store.GetGroupByName(ctx, orgID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("the group name %s already exists", name)}
	}

	group := &domain.Group{
		UUID:  uuid.NewString(),
		OrgID: orgID,
		Name:  name,
		Owner: p.String(),
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("addGroup failed", "org_id", orgID, "name", name, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.MutationResult{UUID: group.UUID, Success: true}, nil
}

// RemoveGroup deletes a group by uuid after ungrouping every cluster that
// still references it. The cascade and the delete are two separate steps,
// not a transaction: a crash in between leaves clusters ungrouped and the
// group present, which a retried delete resolves.
func (s *Service) RemoveGroup(ctx context.Context, p auth.Principal, orgID, groupUUID string) (*domain.MutationResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceGroup, "removeGroup"); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, orgID, groupUUID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: groupUUID}
	}

	return s.removeGroup(ctx, orgID, group)
}

// RemoveGroupByName deletes a group by its per-org unique name.
func (s *Service) RemoveGroupByName(ctx context.Context, p auth.Principal, orgID, name string) (*domain.MutationResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceGroup, "removeGroupByName"); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroupByName(ctx, orgID, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: name}
	}

	return s.removeGroup(ctx, orgID, group)
}

func (s *Service) removeGroup(ctx context.Context, orgID string, group *domain.Group) (*domain.MutationResult, error) {
	subCount, err := s.store.CountSubscriptionsWithTag(ctx, orgID, group.Name)
	if err != nil {
		return nil, err
	}
	if subCount > 0 {
		return nil, &domain.ValidationError{
			Message:    fmt.Sprintf("%d subscriptions depend on this cluster group; update or remove them before removing this group", subCount),
			Dependents: subCount,
		}
	}

	clusterIDs, err := s.store.ListGroupClusterIDs(ctx, orgID, group.UUID)
	if err != nil {
		return nil, err
	}
	if len(clusterIDs) > 0 {
		if _, err := s.store.RemoveClustersFromGroup(ctx, orgID, group.UUID, clusterIDs); err != nil {
			s.logger.Error("removeGroup cascade failed", "org_id", orgID, "group", group.UUID, "error", err)
			return nil, err
		}
	}

	if err := s.store.DeleteGroup(ctx, orgID, group.UUID); err != nil {
		s.logger.Error("removeGroup failed", "org_id", orgID, "group", group.UUID, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.MutationResult{UUID: group.UUID, Success: true}, nil
}

// GroupClusters adds clusters to a group. Idempotent: clusters already in
// the group are untouched. A change event is published even when nothing
// was modified, matching the behavior agents depend on.
func (s *Service) GroupClusters(ctx context.Context, p auth.Principal, orgID, groupUUID string, clusterIDs []string) (*domain.GroupClustersResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceGroup, "groupClusters"); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, orgID, groupUUID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: groupUUID}
	}

	modified, err := s.store.AddClustersToGroup(ctx, orgID, group, clusterIDs)
	if err != nil {
		s.logger.Error("groupClusters failed", "org_id", orgID, "group", groupUUID, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.GroupClustersResult{Modified: modified}, nil
}

// UnGroupClusters removes clusters from a group. Idempotent: clusters not
// in the group are ignored. Still publishes a change event.
func (s *Service) UnGroupClusters(ctx context.Context, p auth.Principal, orgID, groupUUID string, clusterIDs []string) (*domain.GroupClustersResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceGroup, "unGroupClusters"); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroup(ctx, orgID, groupUUID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, &domain.NotFoundError{Resource: "group", ID: groupUUID}
	}

	modified, err := s.store.RemoveClustersFromGroup(ctx, orgID, group.UUID, clusterIDs)
	if err != nil {
		s.logger.Error("unGroupClusters failed", "org_id", orgID, "group", groupUUID, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.GroupClustersResult{Modified: modified}, nil
}
