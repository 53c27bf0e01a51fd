package domain

import (
	"fmt"
	"time"
)

// Tipos de entidade reconciliáveis
const (
	EntityKindCampaign  = "CAMPAIGN"
	EntityKindPromotion = "PROMOTION"
)

// Status possíveis de campanhas e promoções
const (
	EntityStatusDraft     = "DRAFT"
	EntityStatusActive    = "ACTIVE"
	EntityStatusPaused    = "PAUSED"
	EntityStatusCompleted = "COMPLETED"
)

// Entity representa uma campanha ou promoção sob o mesmo formato de
// desempenho e vínculo de orçamento, diferenciada pelo campo Kind
type Entity struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	Name            string            `json:"name"`
	LinkedBudgetID  string            `json:"linked_budget_id"`
	AudienceGroupID *string           `json:"audience_group_id"`
	Channel         string            `json:"channel"`
	Status          string            `json:"status"`
	Performance     PerformanceRecord `json:"performance"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Collection devolve o nome da coleção onde a entidade é persistida
func (e *Entity) Collection() string {
	if e.Kind == EntityKindPromotion {
		return "promotions"
	}
	return "campaigns"
}

// Validate garante a forma mínima exigida de uma entidade lida do banco
func (e *Entity) Validate() error {
	if e.Kind != EntityKindCampaign && e.Kind != EntityKindPromotion {
		return fmt.Errorf("entidade %s com tipo desconhecido: %s", e.ID, e.Kind)
	}

	if e.LinkedBudgetID == "" {
		return fmt.Errorf("entidade %s sem orçamento vinculado", e.ID)
	}

	if e.Channel == "" {
		return fmt.Errorf("entidade %s sem canal definido", e.ID)
	}

	return nil
}
