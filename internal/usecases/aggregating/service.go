package aggregating

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/pkg/log"
	"github.com/vfg2006/promosphere-api/pkg/utils"
)

type ApplyParams struct {
	Entity          *domain.Entity
	Budget          *domain.Budget
	Delta           domain.PerformanceDelta
	ConversionValue decimal.Decimal
	Now             time.Time
}

type AggregatingService interface {
	Apply(ctx context.Context, params ApplyParams) error
}

type SpendAggregatingService struct {
	BudgetRepository repository.BudgetRepository
	EntityRepository repository.EntityRepository
}

func NewSpendAggregatingService(
	budgetRepository repository.BudgetRepository,
	entityRepository repository.EntityRepository,
) AggregatingService {
	return &SpendAggregatingService{
		BudgetRepository: budgetRepository,
		EntityRepository: entityRepository,
	}
}

// Apply soma o delta amostrado ao orçamento e ao registro de desempenho da
// entidade. As duas escritas não são atômicas entre coleções: o orçamento é
// gravado primeiro e um conflito de versão nele aborta a tentativa inteira,
// para que a entidade nunca registre gasto que o orçamento não recebeu. Se a
// escrita da entidade falhar depois do orçamento, o gasto extra não é
// desfeito e o erro volta como PartialCommitError.
func (s *SpendAggregatingService) Apply(ctx context.Context, params ApplyParams) error {
	if params.Delta.IsZero() {
		return nil
	}

	budget := params.Budget
	entity := params.Entity

	budget.AmountSpent = budget.AmountSpent.Add(params.Delta.Spend)
	budget.RecalculateAmountLeft()
	budget.LastReconciledAt = &params.Now

	if err := s.BudgetRepository.Update(ctx, budget); err != nil {
		return err
	}

	entity.Performance.Impressions += params.Delta.Impressions
	entity.Performance.Clicks += params.Delta.Clicks
	entity.Performance.Conversions += params.Delta.Conversions
	entity.Performance.SpendToDate = entity.Performance.SpendToDate.Add(params.Delta.Spend)
	entity.Performance.ROI = computeROI(entity.Performance, params.ConversionValue)
	entity.Performance.LastUpdatedAt = params.Now

	if err := s.EntityRepository.Update(ctx, entity); err != nil {
		log.ForContext(ctx).
			WithFields(log.Fields{"budget_id": budget.ID, "entity_id": entity.ID}).
			WithError(err).
			Error("aggregator: partial commit, budget updated but entity write failed")

		return &PartialCommitError{
			BudgetID: budget.ID,
			EntityID: entity.ID,
			Err:      err,
		}
	}

	return nil
}

// computeROI deriva o retorno sobre o gasto acumulado: receita estimada das
// conversões menos o gasto, sobre o gasto. Zero enquanto não houver gasto.
func computeROI(record domain.PerformanceRecord, conversionValue decimal.Decimal) decimal.Decimal {
	if !record.SpendToDate.IsPositive() {
		return decimal.Zero
	}

	revenue := decimal.NewFromInt(record.Conversions).Mul(conversionValue)

	return utils.RoundRatio(revenue.Sub(record.SpendToDate).Div(record.SpendToDate))
}
