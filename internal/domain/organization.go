package domain

import (
	"time"
)

// Organization is read-only to this service; orgs and their keys are
// provisioned externally.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OrgKeys   []string  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveOrgKey returns the key used for caller validation. Only the first
// key in the list is canonical; older keys are kept for bookkeeping but
// never accepted.
func (o *Organization) ActiveOrgKey() string {
	if len(o.OrgKeys) == 0 {
		return ""
	}
	return o.OrgKeys[0]
}
