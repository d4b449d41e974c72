package domain

import (
	"time"
)

// Group is a named set of clusters within an organization. Subscriptions
// reference groups by name through their tags; clusters reference groups
// through membership records.
type Group struct {
	UUID      string    `json:"uuid"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupMembership links one cluster to one group. Membership is idempotent:
// grouping an already-grouped cluster or ungrouping a non-member is a no-op.
type GroupMembership struct {
	OrgID     string    `json:"org_id"`
	ClusterID string    `json:"cluster_id"`
	GroupUUID string    `json:"group_uuid"`
	GroupName string    `json:"group_name"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupClustersResult reports how many cluster memberships a group/ungroup
// mutation actually changed.
type GroupClustersResult struct {
	Modified int `json:"modified"`
}
