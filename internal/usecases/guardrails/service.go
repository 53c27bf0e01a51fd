package guardrails

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/pkg/log"
)

type GuardrailService interface {
	Evaluate(ctx context.Context, budget *domain.Budget, lowBudgetRatio decimal.Decimal, now time.Time) ([]domain.GuardrailAction, error)
}

type BudgetGuardrailService struct {
	BudgetRepository repository.BudgetRepository
	EntityRepository repository.EntityRepository
	RetryLimit       int
}

func NewBudgetGuardrailService(
	budgetRepository repository.BudgetRepository,
	entityRepository repository.EntityRepository,
	retryLimit int,
) GuardrailService {
	return &BudgetGuardrailService{
		BudgetRepository: budgetRepository,
		EntityRepository: entityRepository,
		RetryLimit:       retryLimit,
	}
}

// Evaluate aplica as regras de proteção sobre o orçamento recém-agregado, na
// ordem: esgotado, saldo baixo, nada. As ações emitidas vão para o ledger do
// ciclo; nenhuma notificação externa é disparada daqui.
func (s *BudgetGuardrailService) Evaluate(ctx context.Context, budget *domain.Budget, lowBudgetRatio decimal.Decimal, now time.Time) ([]domain.GuardrailAction, error) {
	return s.evaluate(ctx, budget, lowBudgetRatio, now, s.RetryLimit)
}

func (s *BudgetGuardrailService) evaluate(ctx context.Context, budget *domain.Budget, lowBudgetRatio decimal.Decimal, now time.Time, retriesLeft int) ([]domain.GuardrailAction, error) {
	actions := make([]domain.GuardrailAction, 0)

	if !budget.IsExhausted() {
		threshold := budget.TotalAmount.Mul(lowBudgetRatio)

		if budget.AmountLeft.LessThan(threshold) && budget.Status == domain.BudgetStatusActive {
			actions = append(actions, domain.GuardrailAction{
				Type:      domain.GuardrailActionWarn,
				BudgetID:  budget.ID,
				Reason:    domain.GuardrailReasonLowBudget,
				CreatedAt: now,
			})

			log.ForContext(ctx).
				WithField("budget_id", budget.ID).
				Warn("guardrails: budget below low-budget threshold")
		}

		return actions, nil
	}

	if budget.Status != domain.BudgetStatusExhausted {
		budget.Status = domain.BudgetStatusExhausted

		if err := s.BudgetRepository.Update(ctx, budget); err != nil {
			// Alguém mexeu no orçamento entre a agregação e a marcação; as
			// regras são reavaliadas sobre o estado novo, pois uma realocação
			// externa pode ter devolvido saldo
			if errors.Is(err, repository.ErrVersionConflict) && retriesLeft > 0 {
				fresh, readErr := s.BudgetRepository.GetByID(ctx, budget.ID)
				if readErr != nil {
					return actions, readErr
				}
				*budget = *fresh

				return s.evaluate(ctx, budget, lowBudgetRatio, now, retriesLeft-1)
			}

			return actions, err
		}

		log.ForContext(ctx).
			WithField("budget_id", budget.ID).
			Warn("guardrails: budget exhausted")
	}

	pauseActions, err := s.pauseLinkedEntities(ctx, budget, now)
	actions = append(actions, pauseActions...)

	return actions, err
}

// pauseLinkedEntities pausa toda entidade ACTIVE vinculada ao orçamento
// esgotado, emitindo uma ação por entidade pausada
func (s *BudgetGuardrailService) pauseLinkedEntities(ctx context.Context, budget *domain.Budget, now time.Time) ([]domain.GuardrailAction, error) {
	actions := make([]domain.GuardrailAction, 0)

	linked, err := s.EntityRepository.ListByBudgetID(ctx, budget.ID)
	if err != nil {
		return actions, err
	}

	for _, entity := range linked {
		if entity.Status != domain.EntityStatusActive {
			continue
		}

		if err := s.pauseEntity(ctx, entity); err != nil {
			return actions, err
		}

		actions = append(actions, domain.GuardrailAction{
			Type:      domain.GuardrailActionPause,
			BudgetID:  budget.ID,
			EntityID:  entity.ID,
			Reason:    domain.GuardrailReasonBudgetExhausted,
			CreatedAt: now,
		})

		log.ForContext(ctx).
			WithFields(log.Fields{"budget_id": budget.ID, "entity_id": entity.ID}).
			Warn("guardrails: entity paused, budget exhausted")
	}

	return actions, nil
}

func (s *BudgetGuardrailService) pauseEntity(ctx context.Context, entity *domain.Entity) error {
	entity.Status = domain.EntityStatusPaused

	err := s.EntityRepository.Update(ctx, entity)
	if err == nil || !errors.Is(err, repository.ErrVersionConflict) {
		return err
	}

	// A entidade mudou por baixo de nós; uma releitura decide se ainda há o
	// que pausar
	fresh, readErr := s.EntityRepository.GetByID(ctx, entity.ID)
	if readErr != nil {
		return readErr
	}

	if fresh.Status != domain.EntityStatusActive {
		return nil
	}

	fresh.Status = domain.EntityStatusPaused

	return s.EntityRepository.Update(ctx, fresh)
}
