package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/promosphere-api/infrastructure/database/postgres"
	"github.com/vfg2006/promosphere-api/internal/domain"
)

// Coleções onde campanhas e promoções são persistidas; ambas com o mesmo formato
var entityCollections = map[string]string{
	domain.EntityKindCampaign:  "campaigns",
	domain.EntityKindPromotion: "promotions",
}

const entityColumns = "id, name, linked_budget_id, audience_group_id, channel, status, performance, version, created_at, updated_at"

type EntityRepository interface {
	GetByID(ctx context.Context, entityID string) (*domain.Entity, error)
	ListActive(ctx context.Context) ([]*domain.Entity, error)
	ListByBudgetID(ctx context.Context, budgetID string) ([]*domain.Entity, error)
	ListByKind(ctx context.Context, kind string, status string) ([]*domain.Entity, error)
	Update(ctx context.Context, entity *domain.Entity) error
}

type entityRepository struct {
	conn *postgres.Connection
}

func NewEntityRepository(conn *postgres.Connection) EntityRepository {
	return &entityRepository{
		conn: conn,
	}
}

// GetByID procura a entidade nas duas coleções; campanhas primeiro por serem maioria
func (r *entityRepository) GetByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	for _, kind := range []string{domain.EntityKindCampaign, domain.EntityKindPromotion} {
		entity, err := r.getFromCollection(ctx, kind, entityID)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			return entity, nil
		}
	}

	return nil, fmt.Errorf("entidade %s: %w", entityID, ErrNotFound)
}

func (r *entityRepository) getFromCollection(ctx context.Context, kind, entityID string) (*domain.Entity, error) {
	query, args, err := squirrel.
		Select(entityColumns).
		From(entityCollections[kind]).
		Where(squirrel.Eq{"id": entityID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(ctx, query, args...)

	entity, err := r.scanEntity(row, kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("entities.get", err)
	}

	return entity, nil
}

// ListActive tira um snapshot das campanhas e promoções ativas nas duas coleções.
// Entidades criadas ou removidas durante o ciclo ficam para o próximo.
func (r *entityRepository) ListActive(ctx context.Context) ([]*domain.Entity, error) {
	entities := make([]*domain.Entity, 0)

	for _, kind := range []string{domain.EntityKindCampaign, domain.EntityKindPromotion} {
		fromCollection, err := r.listCollection(ctx, kind, squirrel.Eq{"status": domain.EntityStatusActive})
		if err != nil {
			return nil, err
		}
		entities = append(entities, fromCollection...)
	}

	return entities, nil
}

func (r *entityRepository) ListByBudgetID(ctx context.Context, budgetID string) ([]*domain.Entity, error) {
	entities := make([]*domain.Entity, 0)

	for _, kind := range []string{domain.EntityKindCampaign, domain.EntityKindPromotion} {
		fromCollection, err := r.listCollection(ctx, kind, squirrel.Eq{"linked_budget_id": budgetID})
		if err != nil {
			return nil, err
		}
		entities = append(entities, fromCollection...)
	}

	return entities, nil
}

// ListByKind lista uma coleção, opcionalmente filtrada por status (vazio lista todas)
func (r *entityRepository) ListByKind(ctx context.Context, kind string, status string) ([]*domain.Entity, error) {
	if _, ok := entityCollections[kind]; !ok {
		return nil, fmt.Errorf("tipo de entidade desconhecido: %s", kind)
	}

	var where squirrel.Eq
	if status != "" {
		where = squirrel.Eq{"status": status}
	}

	return r.listCollection(ctx, kind, where)
}

func (r *entityRepository) listCollection(ctx context.Context, kind string, where squirrel.Eq) ([]*domain.Entity, error) {
	queryBuilder := squirrel.
		Select(entityColumns).
		From(entityCollections[kind]).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if where != nil {
		queryBuilder = queryBuilder.Where(where)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("entities.list", err)
	}
	defer rows.Close()

	entities := make([]*domain.Entity, 0)

	for rows.Next() {
		entity, err := r.scanEntity(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear entidade: %w", err)
		}
		entities = append(entities, entity)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("entities.list", err)
	}

	return entities, nil
}

// Update grava status e desempenho da entidade com verificação otimista de
// versão. O motor não altera nome, canal nem vínculos; esses campos são
// editados externamente.
func (r *entityRepository) Update(ctx context.Context, entity *domain.Entity) error {
	collection, ok := entityCollections[entity.Kind]
	if !ok {
		return fmt.Errorf("tipo de entidade desconhecido: %s", entity.Kind)
	}

	performanceJSON, err := json.Marshal(entity.Performance)
	if err != nil {
		return fmt.Errorf("erro ao serializar performance para JSON: %w", err)
	}

	query, args, err := squirrel.
		Update(collection).
		Set("status", entity.Status).
		Set("performance", performanceJSON).
		Set("version", entity.Version+1).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entity.ID, "version": entity.Version}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return storeErr("entities.update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	if rowsAffected == 0 {
		current, err := r.getFromCollection(ctx, entity.Kind, entity.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("entidade %s: %w", entity.ID, ErrNotFound)
		}
		return fmt.Errorf("entidade %s na versão %d: %w", entity.ID, entity.Version, ErrVersionConflict)
	}

	entity.Version++

	return nil
}

func (r *entityRepository) scanEntity(row squirrel.RowScanner, kind string) (*domain.Entity, error) {
	entity := &domain.Entity{Kind: kind}
	var performanceJSON []byte

	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.LinkedBudgetID,
		&entity.AudienceGroupID,
		&entity.Channel,
		&entity.Status,
		&performanceJSON,
		&entity.Version,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if performanceJSON != nil {
		if err := json.Unmarshal(performanceJSON, &entity.Performance); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de performance: %w", err)
		}
	}

	return entity, nil
}
