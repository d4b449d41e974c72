package store

import (
	"context"
	"fmt"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) ListSubscriptions(ctx context.Context, orgID string) ([]domain.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT uuid, org_id, name, tags, owner, channel, channel_uuid, version, version_uuid, created_at, updated_at
		FROM subscriptions
		WHERE org_id = $1
		ORDER BY created_at
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		err := rows.Scan(
			&sub.UUID, &sub.OrgID, &sub.Name, &sub.Tags, &sub.Owner,
			&sub.Channel, &sub.ChannelUUID, &sub.Version, &sub.VersionUUID,
			&sub.CreatedAt, &sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if subs == nil {
		subs = []domain.Subscription{}
	}

	return subs, nil
}

func (s *PostgresStore) GetSubscription(ctx context.Context, orgID, uuid string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := s.pool.QueryRow(ctx, `
		SELECT uuid, org_id, name, tags, owner, channel, channel_uuid, version, version_uuid, created_at, updated_at
		FROM subscriptions
		WHERE org_id = $1 AND uuid = $2
	`, orgID, uuid).Scan(
		&sub.UUID, &sub.OrgID, &sub.Name, &sub.Tags, &sub.Owner,
		&sub.Channel, &sub.ChannelUUID, &sub.Version, &sub.VersionUUID,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying subscription: %w", err)
	}
	return &sub, nil
}

func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (uuid, org_id, name, tags, owner, channel, channel_uuid, version, version_uuid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, sub.UUID, sub.OrgID, sub.Name, sub.Tags, sub.Owner,
		sub.Channel, sub.ChannelUUID, sub.Version, sub.VersionUUID,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions
		SET name = $3, tags = $4, channel = $5, channel_uuid = $6, version = $7, version_uuid = $8, updated_at = NOW()
		WHERE org_id = $1 AND uuid = $2
	`, sub.OrgID, sub.UUID, sub.Name, sub.Tags,
		sub.Channel, sub.ChannelUUID, sub.Version, sub.VersionUUID)
	if err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "subscription", ID: sub.UUID}
	}
	return nil
}

func (s *PostgresStore) DeleteSubscription(ctx context.Context, orgID, uuid string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE org_id = $1 AND uuid = $2
	`, orgID, uuid)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "subscription", ID: uuid}
	}
	return nil
}

func (s *PostgresStore) CountSubscriptionsWithTag(ctx context.Context, orgID, tag string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM subscriptions WHERE org_id = $1 AND $2 = ANY(tags)
	`, orgID, tag).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting subscriptions by tag: %w", err)
	}
	return count, nil
}
