package service

import (
	"context"
	"fmt"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/google/uuid"
)

// AddSubscription creates a subscription after verifying the referenced
// channel and version exist in the same organization. Publishes exactly
// one change event after the write commits.
func (s *Service) AddSubscription(ctx context.Context, p auth.Principal, orgID string, req domain.CreateSubscriptionRequest) (*domain.MutationResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceSubscription, "addSubscription"); err != nil {
		return nil, err
	}

	channel, version, err := s.lookupChannelVersion(ctx, orgID, req.ChannelUUID, req.VersionUUID)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		UUID:        uuid.NewString(),
		OrgID:       orgID,
		Name:        req.Name,
		Tags:        req.Tags,
		Owner:       p.String(),
		Channel:     channel.Name,
		ChannelUUID: channel.UUID,
		Version:     version.Name,
		VersionUUID: version.UUID,
	}
	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		s.logger.Error("addSubscription failed", "org_id", orgID, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.MutationResult{UUID: sub.UUID, Success: true}, nil
}

// EditSubscription rebinds an existing subscription's name, tags, channel
// and version. Publishes exactly one change event after the write commits.
func (s *Service) EditSubscription(ctx context.Context, p auth.Principal, orgID, subUUID string, req domain.UpdateSubscriptionRequest) (*domain.MutationResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceSubscription, "editSubscription"); err != nil {
		return nil, err
	}

	sub, err := s.store.GetSubscription(ctx, orgID, subUUID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &domain.NotFoundError{Resource: "subscription", ID: subUUID}
	}

	channel, version, err := s.lookupChannelVersion(ctx, orgID, req.ChannelUUID, req.VersionUUID)
	if err != nil {
		return nil, err
	}

	sub.Name = req.Name
	sub.Tags = req.Tags
	sub.Channel = channel.Name
	sub.ChannelUUID = channel.UUID
	sub.Version = version.Name
	sub.VersionUUID = version.UUID

	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		s.logger.Error("editSubscription failed", "org_id", orgID, "uuid", subUUID, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.MutationResult{UUID: sub.UUID, Success: true}, nil
}

// RemoveSubscription deletes a subscription. Publishes exactly one change
// event after the delete commits.
func (s *Service) RemoveSubscription(ctx context.Context, p auth.Principal, orgID, subUUID string) (*domain.MutationResult, error) {
	if err := s.gate.Authorize(ctx, p, orgID, auth.ActionManage, auth.ResourceSubscription, "removeSubscription"); err != nil {
		return nil, err
	}

	sub, err := s.store.GetSubscription(ctx, orgID, subUUID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &domain.NotFoundError{Resource: "subscription", ID: subUUID}
	}

	if err := s.store.DeleteSubscription(ctx, orgID, subUUID); err != nil {
		s.logger.Error("removeSubscription failed", "org_id", orgID, "uuid", subUUID, "error", err)
		return nil, err
	}

	s.publishChange(ctx, orgID)

	return &domain.MutationResult{UUID: subUUID, Success: true}, nil
}

// lookupChannelVersion validates the channel/version reference at
// create/edit time. There is no foreign key; existence is checked here.
func (s *Service) lookupChannelVersion(ctx context.Context, orgID, channelUUID, versionUUID string) (*domain.Channel, *domain.ChannelVersion, error) {
	channel, err := s.store.GetChannel(ctx, orgID, channelUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading channel: %w", err)
	}
	if channel == nil {
		return nil, nil, &domain.NotFoundError{Resource: "channel", ID: channelUUID}
	}

	version, err := s.store.GetChannelVersion(ctx, orgID, channelUUID, versionUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading channel version: %w", err)
	}
	if version == nil {
		return nil, nil, &domain.NotFoundError{Resource: "version", ID: versionUUID}
	}

	return channel, version, nil
}
