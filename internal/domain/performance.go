package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceRecord acumula os contadores e as métricas derivadas de uma campanha ou promoção
type PerformanceRecord struct {
	Impressions   int64           `json:"impressions"`
	Clicks        int64           `json:"clicks"`
	Conversions   int64           `json:"conversions"`
	ROI           decimal.Decimal `json:"roi"`
	SpendToDate   decimal.Decimal `json:"spend_to_date"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
}

// PerformanceDelta é o incremento de desempenho produzido pelo sampler em um ciclo
type PerformanceDelta struct {
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
	Spend       decimal.Decimal `json:"spend"`
}

// IsZero informa se o delta não altera contadores nem gasto
func (d PerformanceDelta) IsZero() bool {
	return d.Impressions == 0 && d.Clicks == 0 && d.Conversions == 0 && d.Spend.IsZero()
}
