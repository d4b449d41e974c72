package domain

import (
	"time"
)

// Channel is a named configuration stream. Versions are immutable payload
// revisions; a subscription pins exactly one of them.
type Channel struct {
	UUID      string    `json:"uuid"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ChannelVersion struct {
	UUID        string    `json:"uuid"`
	ChannelUUID string    `json:"channel_uuid"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
