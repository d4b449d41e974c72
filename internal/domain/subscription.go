package domain

import (
	"strings"
	"time"
)

// Subscription pins a cohort of clusters (selected by tags) to one version
// of one channel. Tags are group names and are compared as an unordered,
// case-sensitive string set.
type Subscription struct {
	UUID        string    `json:"uuid"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Tags        []string  `json:"tags"`
	Owner       string    `json:"owner"`
	Channel     string    `json:"channel"`
	ChannelUUID string    `json:"channel_uuid"`
	Version     string    `json:"version"`
	VersionUUID string    `json:"version_uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateSubscriptionRequest struct {
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	ChannelUUID string   `json:"channel_uuid"`
	VersionUUID string   `json:"version_uuid"`
}

type UpdateSubscriptionRequest struct {
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	ChannelUUID string   `json:"channel_uuid"`
	VersionUUID string   `json:"version_uuid"`
}

// MutationResult is the common response shape for mutations.
type MutationResult struct {
	UUID    string `json:"uuid"`
	Success bool   `json:"success"`
}

// ParseTags splits a comma-separated tag string into a trimmed list,
// dropping empty entries. "a, b," becomes ["a", "b"].
func ParseTags(csv string) []string {
	parts := strings.Split(csv, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
