package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status possíveis de um orçamento
const (
	BudgetStatusActive    = "ACTIVE"
	BudgetStatusPaused    = "PAUSED"
	BudgetStatusExhausted = "EXHAUSTED"
)

// Budget representa um orçamento compartilhado por campanhas e promoções vinculadas
type Budget struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	TotalAmount       decimal.Decimal            `json:"total_amount"`
	AmountSpent       decimal.Decimal            `json:"amount_spent"`
	AmountLeft        decimal.Decimal            `json:"amount_left"` // Derivado: total_amount - amount_spent
	DailyCostDefaults map[string]decimal.Decimal `json:"daily_cost_defaults"`
	LinkedEntityIDs   []string                   `json:"linked_entity_ids"`
	Status            string                     `json:"status"`
	LastReconciledAt  *time.Time                 `json:"last_reconciled_at"`
	Version           int64                      `json:"version"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// RecalculateAmountLeft refaz o campo derivado a partir do total e do gasto acumulado
func (b *Budget) RecalculateAmountLeft() {
	b.AmountLeft = b.TotalAmount.Sub(b.AmountSpent)
}

// IsExhausted informa se o orçamento está estourado (saldo negativo)
func (b *Budget) IsExhausted() bool {
	return b.AmountLeft.IsNegative()
}
