package utils

import "github.com/shopspring/decimal"

// RoundMoney arredonda valores monetários para duas casas decimais
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundRatio arredonda métricas derivadas (ROI, burn rate) para duas casas decimais
func RoundRatio(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
