package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/promosphere-api/infrastructure/database/postgres"
	"github.com/vfg2006/promosphere-api/internal/domain"
)

const runsTable = "reconciliation_runs"

type RunLedgerRepository interface {
	Create(ctx context.Context, entry *domain.RunLedgerEntry) error
	Finalize(ctx context.Context, entry *domain.RunLedgerEntry) error
	ListRecent(ctx context.Context, limit uint64, since *time.Time) ([]*domain.RunLedgerEntry, error)
}

type runLedgerRepository struct {
	conn *postgres.Connection
}

func NewRunLedgerRepository(conn *postgres.Connection) RunLedgerRepository {
	return &runLedgerRepository{
		conn: conn,
	}
}

// Create registra o início do ciclo antes de qualquer escrita de negócio,
// para que ciclos interrompidos fiquem visíveis no ledger
func (r *runLedgerRepository) Create(ctx context.Context, entry *domain.RunLedgerEntry) error {
	failedJSON, actionsJSON, err := marshalLedgerFields(entry)
	if err != nil {
		return err
	}

	query, args, err := squirrel.
		Insert(runsTable).
		Columns("run_id", "started_at", "entities_processed", "entities_failed", "guardrail_actions", "status").
		Values(entry.RunID, entry.StartedAt, entry.EntitiesProcessed, failedJSON, actionsJSON, entry.Status).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return storeErr("runs.create", err)
	}

	return nil
}

// Finalize fecha o registro do ciclo. A cláusula de status garante que um
// ciclo só é finalizado uma vez, mesmo que o orquestrador tente de novo.
func (r *runLedgerRepository) Finalize(ctx context.Context, entry *domain.RunLedgerEntry) error {
	failedJSON, actionsJSON, err := marshalLedgerFields(entry)
	if err != nil {
		return err
	}

	query, args, err := squirrel.
		Update(runsTable).
		Set("finished_at", entry.FinishedAt).
		Set("entities_processed", entry.EntitiesProcessed).
		Set("entities_failed", failedJSON).
		Set("guardrail_actions", actionsJSON).
		Set("status", entry.Status).
		Where(squirrel.Eq{"run_id": entry.RunID, "status": domain.RunStatusStarted}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return storeErr("runs.finalize", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("ciclo %s não está mais em andamento: %w", entry.RunID, ErrNotFound)
	}

	return nil
}

// ListRecent lista os ciclos mais recentes primeiro; since filtra pela data de início
func (r *runLedgerRepository) ListRecent(ctx context.Context, limit uint64, since *time.Time) ([]*domain.RunLedgerEntry, error) {
	queryBuilder := squirrel.
		Select("run_id", "started_at", "finished_at", "entities_processed", "entities_failed", "guardrail_actions", "status").
		From(runsTable).
		OrderBy("started_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	if since != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"started_at": *since})
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
		return nil, storeErr("runs.list", err)
	}
	defer rows.Close()

	entries := make([]*domain.RunLedgerEntry, 0)

	for rows.Next() {
		entry, err := r.scanRunLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear registro do ledger: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("runs.list", err)
	}

	return entries, nil
}

func (r *runLedgerRepository) scanRunLedgerEntry(row squirrel.RowScanner) (*domain.RunLedgerEntry, error) {
	entry := &domain.RunLedgerEntry{}
	var failedJSON, actionsJSON []byte

	err := row.Scan(
		&entry.RunID,
		&entry.StartedAt,
		&entry.FinishedAt,
		&entry.EntitiesProcessed,
		&failedJSON,
		&actionsJSON,
		&entry.Status,
	)
	if err != nil {
		return nil, err
	}

	if failedJSON != nil {
		if err := json.Unmarshal(failedJSON, &entry.EntitiesFailed); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de falhas: %w", err)
		}
	}

	if actionsJSON != nil {
		if err := json.Unmarshal(actionsJSON, &entry.GuardrailActions); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de ações: %w", err)
		}
	}

	return entry, nil
}

func marshalLedgerFields(entry *domain.RunLedgerEntry) ([]byte, []byte, error) {
	failed := entry.EntitiesFailed
	if failed == nil {
		failed = map[string]string{}
	}

	actions := entry.GuardrailActions
	if actions == nil {
		actions = []domain.GuardrailAction{}
	}

	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao serializar falhas para JSON: %w", err)
	}

	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao serializar ações para JSON: %w", err)
	}

	return failedJSON, actionsJSON, nil
}
