package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/promosphere-api/infrastructure/database/postgres"
	"github.com/vfg2006/promosphere-api/internal/domain"
)

const audienceGroupsTable = "audience_groups"

type AudienceGroupRepository interface {
	GetByID(ctx context.Context, groupID string) (*domain.AudienceGroup, error)
	List(ctx context.Context) ([]*domain.AudienceGroup, error)
}

type audienceGroupRepository struct {
	conn *postgres.Connection
}

func NewAudienceGroupRepository(conn *postgres.Connection) AudienceGroupRepository {
	return &audienceGroupRepository{
		conn: conn,
	}
}

func (r *audienceGroupRepository) GetByID(ctx context.Context, groupID string) (*domain.AudienceGroup, error) {
	query, args, err := squirrel.
		Select("id", "name", "criteria", "size_estimate", "created_at", "updated_at").
		From(audienceGroupsTable).
		Where(squirrel.Eq{"id": groupID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(ctx, query, args...)

	group, err := r.scanAudienceGroup(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("grupo de audiência %s: %w", groupID, ErrNotFound)
		}
		return nil, storeErr("audience_groups.get", err)
	}

	return group, nil
}

func (r *audienceGroupRepository) List(ctx context.Context) ([]*domain.AudienceGroup, error) {
	query, args, err := squirrel.
		Select("id", "name", "criteria", "size_estimate", "created_at", "updated_at").
		From(audienceGroupsTable).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("audience_groups.list", err)
	}
	defer rows.Close()

	groups := make([]*domain.AudienceGroup, 0)

	for rows.Next() {
		group, err := r.scanAudienceGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear grupo de audiência: %w", err)
		}
		groups = append(groups, group)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("audience_groups.list", err)
	}

	return groups, nil
}

func (r *audienceGroupRepository) scanAudienceGroup(row squirrel.RowScanner) (*domain.AudienceGroup, error) {
	group := &domain.AudienceGroup{}

	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.Criteria,
		&group.SizeEstimate,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return group, nil
}
