package store

import (
	"context"
	"fmt"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) GetChannel(ctx context.Context, orgID, uuid string) (*domain.Channel, error) {
	var ch domain.Channel
	err := s.pool.QueryRow(ctx, `
		SELECT uuid, org_id, name, created_at
		FROM channels
		WHERE org_id = $1 AND uuid = $2
	`, orgID, uuid).Scan(&ch.UUID, &ch.OrgID, &ch.Name, &ch.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying channel: %w", err)
	}
	return &ch, nil
}

func (s *PostgresStore) GetChannelVersion(ctx context.Context, orgID, channelUUID, versionUUID string) (*domain.ChannelVersion, error) {
	var v domain.ChannelVersion
	err := s.pool.QueryRow(ctx, `
		SELECT uuid, channel_uuid, org_id, name, COALESCE(description, ''), created_at
		FROM channel_versions
		WHERE org_id = $1 AND channel_uuid = $2 AND uuid = $3
	`, orgID, channelUUID, versionUUID).Scan(
		&v.UUID, &v.ChannelUUID, &v.OrgID, &v.Name, &v.Description, &v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying channel version: %w", err)
	}
	return &v, nil
}
