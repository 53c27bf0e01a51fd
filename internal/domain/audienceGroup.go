package domain

import (
	"encoding/json"
	"time"
)

// AudienceGroup representa um grupo de público-alvo; somente leitura para o motor
type AudienceGroup struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Criteria     json.RawMessage `json:"criteria"` // Filtro opaco definido externamente
	SizeEstimate int64           `json:"size_estimate"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
