package reconciling

import "fmt"

// ValidationError marca uma entidade malformada (canal desconhecido, registro
// fora da forma esperada). Falha na hora e nunca é retentada: o dado precisa
// ser corrigido por quem o criou.
type ValidationError struct {
	EntityID string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entidade %s inválida: %s", e.EntityID, e.Reason)
}
