package domain

import "time"

// Status possíveis de um ciclo de reconciliação
const (
	RunStatusStarted = "STARTED"
	RunStatusSuccess = "SUCCESS"
	RunStatusPartial = "PARTIAL"
	RunStatusFailed  = "FAILED"
)

// Tipos e motivos das ações de guardrail
const (
	GuardrailActionPause = "PAUSE"
	GuardrailActionWarn  = "WARN"

	GuardrailReasonBudgetExhausted = "budget_exhausted"
	GuardrailReasonLowBudget       = "low_budget"
)

// GuardrailAction registra uma intervenção automática decidida durante o ciclo
type GuardrailAction struct {
	Type      string    `json:"type"`
	BudgetID  string    `json:"budget_id"`
	EntityID  string    `json:"entity_id,omitempty"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// RunLedgerEntry é o registro de auditoria de um ciclo de reconciliação.
// Criado no início do ciclo e finalizado uma única vez; nunca alterado depois.
type RunLedgerEntry struct {
	RunID             string            `json:"run_id"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        *time.Time        `json:"finished_at"`
	EntitiesProcessed int               `json:"entities_processed"`
	EntitiesFailed    map[string]string `json:"entities_failed"` // id da entidade -> causa do erro
	GuardrailActions  []GuardrailAction `json:"guardrail_actions"`
	Status            string            `json:"status"`
}
