package aggregating

import "fmt"

// PartialCommitError indica que o gasto foi somado ao orçamento mas a escrita
// da entidade falhou em seguida. A janela inconsistente se resolve no próximo
// ciclo, quando o delta da entidade é recalculado a partir do registro antigo.
type PartialCommitError struct {
	BudgetID string
	EntityID string
	Err      error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("commit parcial: orçamento %s atualizado mas entidade %s não: %v", e.BudgetID, e.EntityID, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}
