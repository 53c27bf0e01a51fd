package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BusinessConfig é a configuração de negócio carregada do blob store no início
// de cada ciclo. O valor é imutável durante o ciclo; nenhum componente consulta
// configuração global de forma ambiente.
type BusinessConfig struct {
	Channels          []string                   `json:"channels"`
	DailyCostDefaults map[string]decimal.Decimal `json:"daily_cost_defaults"`
	ConversionValues  map[string]decimal.Decimal `json:"conversion_values"`
	Thresholds        Thresholds                 `json:"thresholds"`
}

type Thresholds struct {
	LowBudgetRatio decimal.Decimal `json:"low_budget_ratio"`
}

// Validate garante a forma mínima da configuração de negócio
func (c *BusinessConfig) Validate() error {
	if len(c.DailyCostDefaults) == 0 {
		return fmt.Errorf("configuração de negócio sem custos diários por canal")
	}

	for channel, cost := range c.DailyCostDefaults {
		if cost.IsNegative() {
			return fmt.Errorf("custo diário negativo para o canal %s", channel)
		}
	}

	return nil
}

// DailyCostFor resolve o custo diário de um canal, priorizando os overrides do orçamento
func (c *BusinessConfig) DailyCostFor(channel string, overrides map[string]decimal.Decimal) (decimal.Decimal, bool) {
	if cost, ok := overrides[channel]; ok {
		return cost, true
	}

	cost, ok := c.DailyCostDefaults[channel]
	return cost, ok
}

// ConversionValueFor devolve a receita estimada por conversão do canal (zero quando desconhecida)
func (c *BusinessConfig) ConversionValueFor(channel string) decimal.Decimal {
	return c.ConversionValues[channel]
}

// LowBudgetRatio devolve o limiar de alerta de orçamento baixo (padrão 0.1)
func (c *BusinessConfig) LowBudgetRatio() decimal.Decimal {
	if c.Thresholds.LowBudgetRatio.IsPositive() {
		return c.Thresholds.LowBudgetRatio
	}

	return decimal.NewFromFloat(0.1)
}

// Strategy descreve uma estratégia de marketing armazenada em strategies.json
type Strategy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Channels    []string  `json:"channels"`
	CreatedAt   time.Time `json:"created_at"`
}
