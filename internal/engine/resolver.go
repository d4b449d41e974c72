package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/store"
)

// Resolver maps matched subscriptions to fetchable configuration URLs.
type Resolver struct {
	store   store.Store
	baseURL string
	logger  *slog.Logger
}

func NewResolver(s store.Store, baseURL string, logger *slog.Logger) *Resolver {
	return &Resolver{store: s, baseURL: baseURL, logger: logger}
}

// Resolve derives one configuration URL per matched subscription. A
// subscription whose channel or version has disappeared since it was
// matched is skipped silently; channel state may legitimately have
// changed underneath it.
func (r *Resolver) Resolve(ctx context.Context, orgID string, matched []domain.Subscription) ([]string, error) {
	urls := make([]string, 0, len(matched))
	for _, sub := range matched {
		version, err := r.store.GetChannelVersion(ctx, orgID, sub.ChannelUUID, sub.VersionUUID)
		if err != nil {
			return nil, fmt.Errorf("resolving subscription %s: %w", sub.UUID, err)
		}
		if version == nil {
			r.logger.Warn("skipping subscription with missing channel version",
				"org_id", orgID,
				"subscription", sub.UUID,
				"channel_uuid", sub.ChannelUUID,
				"version_uuid", sub.VersionUUID,
			)
			continue
		}
		urls = append(urls, fmt.Sprintf("%s/api/v1/orgs/%s/channels/%s/versions/%s",
			r.baseURL, orgID, sub.ChannelUUID, version.UUID))
	}
	return urls, nil
}
