package postgres

import (
	"context"
	"database/sql"
)

// Queryer é o contrato mínimo de consulta usado pelos repositórios. Todas as
// operações recebem o contexto da chamada para que o timeout por acesso ao
// banco configurado no ciclo de reconciliação seja respeitado.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, sql string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) *sql.Row
}
