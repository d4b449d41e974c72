package store

import (
	"context"
	"fmt"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error) {
	var org domain.Organization
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, org_keys, created_at
		FROM organizations WHERE id = $1
	`, orgID).Scan(&org.ID, &org.Name, &org.OrgKeys, &org.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying organization: %w", err)
	}
	return &org, nil
}

func (s *PostgresStore) GetUserByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, api_key, org_id, role, created_at
		FROM users WHERE api_key = $1
	`, apiKey).Scan(&user.ID, &user.Name, &user.APIKey, &user.OrgID, &user.Role, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by api key: %w", err)
	}
	return &user, nil
}
