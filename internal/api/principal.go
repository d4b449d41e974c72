package api

import (
	"context"
	"net/http"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/store"
)

// Credential headers. Cluster agents present the org secret; dashboard
// users present their personal API key.
const (
	HeaderOrgKey = "X-Org-Key"
	HeaderAPIKey = "X-API-Key"
)

// principal builds the caller's principal from the request headers. An
// API key that resolves to a user wins over an org key; an unknown API
// key yields an anonymous principal, which the access gate denies.
func principal(ctx context.Context, s store.Store, r *http.Request) auth.Principal {
	if apiKey := r.Header.Get(HeaderAPIKey); apiKey != "" {
		user, err := s.GetUserByAPIKey(ctx, apiKey)
		if err == nil && user != nil {
			return auth.Principal{User: user}
		}
	}
	return auth.Principal{OrgKey: r.Header.Get(HeaderOrgKey)}
}
