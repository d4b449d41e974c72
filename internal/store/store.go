package store

import (
	"context"

	"github.com/fleetconfig/channelhub/internal/domain"
)

// Store is the persistence contract for the control plane. Lookup methods
// return (nil, nil) when the entity does not exist; callers decide whether
// that is a typed not-found condition or a silent miss.
//
// Implemented by PostgresStore and by memory.Store for tests.
type Store interface {
	// Organizations and users are provisioned externally; read-only here.
	GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error)
	GetUserByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)

	ListSubscriptions(ctx context.Context, orgID string) ([]domain.Subscription, error)
	GetSubscription(ctx context.Context, orgID, uuid string) (*domain.Subscription, error)
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	UpdateSubscription(ctx context.Context, sub *domain.Subscription) error
	DeleteSubscription(ctx context.Context, orgID, uuid string) error
	// CountSubscriptionsWithTag counts subscriptions whose tag set contains
	// the given group name. Used by the group delete dependency check.
	CountSubscriptionsWithTag(ctx context.Context, orgID, tag string) (int, error)

	GetChannel(ctx context.Context, orgID, uuid string) (*domain.Channel, error)
	GetChannelVersion(ctx context.Context, orgID, channelUUID, versionUUID string) (*domain.ChannelVersion, error)

	ListGroups(ctx context.Context, orgID string) ([]domain.Group, error)
	GetGroup(ctx context.Context, orgID, uuid string) (*domain.Group, error)
	GetGroupByName(ctx context.Context, orgID, name string) (*domain.Group, error)
	CreateGroup(ctx context.Context, group *domain.Group) error
	DeleteGroup(ctx context.Context, orgID, uuid string) error

	// Membership mutations are idempotent and report how many rows changed.
	AddClustersToGroup(ctx context.Context, orgID string, group *domain.Group, clusterIDs []string) (int, error)
	RemoveClustersFromGroup(ctx context.Context, orgID, groupUUID string, clusterIDs []string) (int, error)
	ListGroupClusterIDs(ctx context.Context, orgID, groupUUID string) ([]string, error)
}

var _ Store = (*PostgresStore)(nil)
