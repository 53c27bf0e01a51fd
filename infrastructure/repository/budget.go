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

const budgetsTable = "budgets b"

type BudgetRepository interface {
	GetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	List(ctx context.Context) ([]*domain.Budget, error)
	Update(ctx context.Context, budget *domain.Budget) error
}

type budgetRepository struct {
	conn *postgres.Connection
}

func NewBudgetRepository(conn *postgres.Connection) BudgetRepository {
	return &budgetRepository{
		conn: conn,
	}
}

func (r *budgetRepository) GetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query, args, err := squirrel.
		Select("b.id, b.name, b.total_amount, b.amount_spent, b.amount_left, b.daily_cost_defaults, b.linked_entity_ids, b.status, b.last_reconciled_at, b.version, b.created_at, b.updated_at").
		From(budgetsTable).
		Where(squirrel.Eq{"b.id": budgetID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(ctx, query, args...)

	budget, err := r.scanBudget(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("orçamento %s: %w", budgetID, ErrNotFound)
		}
		return nil, storeErr("budgets.get", err)
	}

	return budget, nil
}

func (r *budgetRepository) List(ctx context.Context) ([]*domain.Budget, error) {
	query, args, err := squirrel.
		Select("b.id, b.name, b.total_amount, b.amount_spent, b.amount_left, b.daily_cost_defaults, b.linked_entity_ids, b.status, b.last_reconciled_at, b.version, b.created_at, b.updated_at").
		From(budgetsTable).
		OrderBy("b.name ASC").
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
		return nil, storeErr("budgets.list", err)
	}
	defer rows.Close()

	budgets := make([]*domain.Budget, 0)

	for rows.Next() {
		budget, err := r.scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear orçamento: %w", err)
		}
		budgets = append(budgets, budget)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("budgets.list", err)
	}

	return budgets, nil
}

// Update grava o orçamento com verificação otimista de versão: a escrita só é
// aplicada se a versão armazenada for a mesma lida pelo chamador. Em caso de
// sucesso a versão em memória é avançada junto com a do banco.
func (r *budgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	costsJSON, err := json.Marshal(budget.DailyCostDefaults)
	if err != nil {
		return fmt.Errorf("erro ao serializar daily_cost_defaults para JSON: %w", err)
	}

	linkedJSON, err := json.Marshal(budget.LinkedEntityIDs)
	if err != nil {
		return fmt.Errorf("erro ao serializar linked_entity_ids para JSON: %w", err)
	}

	query, args, err := squirrel.
		Update("budgets").
		Set("total_amount", budget.TotalAmount).
		Set("amount_spent", budget.AmountSpent).
		Set("amount_left", budget.AmountLeft).
		Set("daily_cost_defaults", costsJSON).
		Set("linked_entity_ids", linkedJSON).
		Set("status", budget.Status).
		Set("last_reconciled_at", budget.LastReconciledAt).
		Set("version", budget.Version+1).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": budget.ID, "version": budget.Version}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return storeErr("budgets.update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	if rowsAffected == 0 {
		// Nenhuma linha atualizada: ou a versão mudou ou o registro sumiu;
		// a releitura distingue os dois casos
		if _, err := r.GetByID(ctx, budget.ID); err != nil {
			return err
		}
		return fmt.Errorf("orçamento %s na versão %d: %w", budget.ID, budget.Version, ErrVersionConflict)
	}

	budget.Version++

	return nil
}

func (r *budgetRepository) scanBudget(row squirrel.RowScanner) (*domain.Budget, error) {
	budget := &domain.Budget{}
	var costsJSON, linkedJSON []byte

	err := row.Scan(
		&budget.ID,
		&budget.Name,
		&budget.TotalAmount,
		&budget.AmountSpent,
		&budget.AmountLeft,
		&costsJSON,
		&linkedJSON,
		&budget.Status,
		&budget.LastReconciledAt,
		&budget.Version,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if costsJSON != nil {
		if err := json.Unmarshal(costsJSON, &budget.DailyCostDefaults); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de daily_cost_defaults: %w", err)
		}
	}

	if linkedJSON != nil {
		if err := json.Unmarshal(linkedJSON, &budget.LinkedEntityIDs); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de linked_entity_ids: %w", err)
		}
	}

	return budget, nil
}
