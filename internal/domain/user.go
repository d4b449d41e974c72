package domain

import (
	"time"
)

// User roles. Admins may manage resources; readers may only list them.
const (
	RoleAdmin  = "admin"
	RoleReader = "reader"
)

// User is an identity principal bound to one organization via an API key.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"-"`
	OrgID     string    `json:"org_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
