package bus

import (
	"context"
	"log/slog"

	"github.com/fleetconfig/channelhub/internal/auth"
)

// NewOrgFilter builds the filter a streaming watcher applies to each
// event before delivery:
//
//  1. the connection must have presented a non-empty org key,
//  2. the watched organization must exist and its active key must equal
//     the presented key (re-validated per event so key rotation takes
//     effect on live connections),
//  3. the event's org id must equal the watched org id.
//
// Any failure drops the event silently; the connection stays open.
func NewOrgFilter(gate *auth.Gate, orgID, orgKey string, logger *slog.Logger) Filter {
	return func(ctx context.Context, ev Event) bool {
		if orgKey == "" {
			logger.Error("no org key supplied for watcher", "org_id", orgID)
			return false
		}

		ok, err := gate.ValidateOrgKey(ctx, orgID, orgKey)
		if err != nil {
			logger.Error("org key re-validation failed", "org_id", orgID, "error", err)
			return false
		}
		if !ok {
			logger.Error("invalid org key for watcher", "org_id", orgID)
			return false
		}

		if ev.OrgID != orgID {
			return false
		}

		return true
	}
}
