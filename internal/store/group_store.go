package store

import (
	"context"
	"fmt"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) ListGroups(ctx context.Context, orgID string) ([]domain.Group, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT uuid, org_id, name, owner, created_at
		FROM groups
		WHERE org_id = $1
		ORDER BY created_at
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.UUID, &g.OrgID, &g.Name, &g.Owner, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, g)
	}

	if groups == nil {
		groups = []domain.Group{}
	}

	return groups, nil
}

func (s *PostgresStore) GetGroup(ctx context.Context, orgID, uuid string) (*domain.Group, error) {
	return s.getGroup(ctx, `
		SELECT uuid, org_id, name, owner, created_at
		FROM groups WHERE org_id = $1 AND uuid = $2
	`, orgID, uuid)
}

func (s *PostgresStore) GetGroupByName(ctx context.Context, orgID, name string) (*domain.Group, error) {
	return s.getGroup(ctx, `
		SELECT uuid, org_id, name, owner, created_at
		FROM groups WHERE org_id = $1 AND name = $2
	`, orgID, name)
}

func (s *PostgresStore) getGroup(ctx context.Context, query string, args ...any) (*domain.Group, error) {
	var g domain.Group
	err := s.pool.QueryRow(ctx, query, args...).Scan(&g.UUID, &g.OrgID, &g.Name, &g.Owner, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying group: %w", err)
	}
	return &g, nil
}

func (s *PostgresStore) CreateGroup(ctx context.Context, group *domain.Group) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO groups (uuid, org_id, name, owner)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, group.UUID, group.OrgID, group.Name, group.Owner).Scan(&group.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting group: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteGroup(ctx context.Context, orgID, uuid string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM groups WHERE org_id = $1 AND uuid = $2
	`, orgID, uuid)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "group", ID: uuid}
	}
	return nil
}

// AddClustersToGroup inserts membership rows for each cluster, skipping
// clusters already in the group. The primary key on (org_id, cluster_id,
// group_uuid) makes duplicates impossible.
func (s *PostgresStore) AddClustersToGroup(ctx context.Context, orgID string, group *domain.Group, clusterIDs []string) (int, error) {
	modified := 0
	for _, clusterID := range clusterIDs {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO cluster_groups (org_id, cluster_id, group_uuid, group_name)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (org_id, cluster_id, group_uuid) DO NOTHING
		`, orgID, clusterID, group.UUID, group.Name)
		if err != nil {
			return modified, fmt.Errorf("grouping cluster %s: %w", clusterID, err)
		}
		modified += int(tag.RowsAffected())
	}
	return modified, nil
}

// RemoveClustersFromGroup deletes membership rows; clusters not in the
// group are ignored.
func (s *PostgresStore) RemoveClustersFromGroup(ctx context.Context, orgID, groupUUID string, clusterIDs []string) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM cluster_groups
		WHERE org_id = $1 AND group_uuid = $2 AND cluster_id = ANY($3)
	`, orgID, groupUUID, clusterIDs)
	if err != nil {
		return 0, fmt.Errorf("ungrouping clusters: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListGroupClusterIDs(ctx context.Context, orgID, groupUUID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cluster_id FROM cluster_groups
		WHERE org_id = $1 AND group_uuid = $2
		ORDER BY cluster_id
	`, orgID, groupUUID)
	if err != nil {
		return nil, fmt.Errorf("querying group clusters: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning cluster id: %w", err)
		}
		ids = append(ids, id)
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}
