package reconciling

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	blobmocks "github.com/vfg2006/promosphere-api/infrastructure/integrator/blobstore/mocks"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/infrastructure/repository/mocks"
	"github.com/vfg2006/promosphere-api/internal/config"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/internal/usecases/aggregating"
	"github.com/vfg2006/promosphere-api/internal/usecases/guardrails"
	"github.com/vfg2006/promosphere-api/internal/usecases/sampling"
	"go.uber.org/mock/gomock"
)

type cycleMocks struct {
	budgetRepo *mocks.MockBudgetRepository
	entityRepo *mocks.MockEntityRepository
	ledgerRepo *mocks.MockRunLedgerRepository
	blobStore  *blobmocks.MockBlobStoreIntegrator
}

// newCycleService monta o orquestrador com repositórios mockados e os serviços
// de amostragem, agregação e guardrail reais por cima deles
func newCycleService(ctrl *gomock.Controller, maxJobs int) (*Service, cycleMocks) {
	m := cycleMocks{
		budgetRepo: mocks.NewMockBudgetRepository(ctrl),
		entityRepo: mocks.NewMockEntityRepository(ctrl),
		ledgerRepo: mocks.NewMockRunLedgerRepository(ctrl),
		blobStore:  blobmocks.NewMockBlobStoreIntegrator(ctrl),
	}

	cfg := &config.Config{
		ReconciliationSync: config.ReconciliationSync{
			MaxConcurrentJobs: maxJobs,
			RetryLimit:        2,
			RetryBackoff:      time.Millisecond,
			StoreTimeout:      5 * time.Second,
		},
	}

	service := &Service{
		cfg:                 cfg,
		BudgetRepository:    m.budgetRepo,
		EntityRepository:    m.entityRepo,
		RunLedgerRepository: m.ledgerRepo,
		BlobStore:           m.blobStore,
		Sampler:             sampling.NewPerformanceSamplingService(),
		Aggregator:          aggregating.NewSpendAggregatingService(m.budgetRepo, m.entityRepo),
		Guardrails:          guardrails.NewBudgetGuardrailService(m.budgetRepo, m.entityRepo, cfg.ReconciliationSync.RetryLimit),
	}

	return service, m
}

func cycleBusinessConfig() *domain.BusinessConfig {
	return &domain.BusinessConfig{
		Channels: []string{"facebook", "tiktok"},
		DailyCostDefaults: map[string]decimal.Decimal{
			"facebook": decimal.RequireFromString("10"),
			"tiktok":   decimal.RequireFromString("18"),
		},
		ConversionValues: map[string]decimal.Decimal{
			"facebook": decimal.RequireFromString("30"),
		},
		Thresholds: domain.Thresholds{LowBudgetRatio: decimal.RequireFromString("0.1")},
	}
}

func cycleEntity(id, budgetID string, lastUpdatedAt time.Time) *domain.Entity {
	return &domain.Entity{
		ID:             id,
		Kind:           domain.EntityKindCampaign,
		Name:           "Campanha " + id,
		LinkedBudgetID: budgetID,
		Channel:        "facebook",
		Status:         domain.EntityStatusActive,
		Performance: domain.PerformanceRecord{
			SpendToDate:   decimal.Zero,
			LastUpdatedAt: lastUpdatedAt,
		},
		Version: 1,
	}
}

func cycleBudget(id, total, spent, status string) *domain.Budget {
	totalAmount := decimal.RequireFromString(total)
	amountSpent := decimal.RequireFromString(spent)

	return &domain.Budget{
		ID:          id,
		Name:        "Orçamento " + id,
		TotalAmount: totalAmount,
		AmountSpent: amountSpent,
		AmountLeft:  totalAmount.Sub(amountSpent),
		Status:      status,
		Version:     1,
	}
}

// expectLedger arma o Create e captura a entrada finalizada do ledger
func expectLedger(m cycleMocks, finalized *domain.RunLedgerEntry) {
	m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	m.ledgerRepo.EXPECT().Finalize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *domain.RunLedgerEntry) error {
			*finalized = *entry
			return nil
		})
}

func TestService_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Ciclo com uma entidade saudável fecha em SUCCESS e conserva o gasto nos dois lados", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)
		budget := cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive)

		var finalized domain.RunLedgerEntry

		m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *domain.RunLedgerEntry) error {
				assert.Equal(t, domain.RunStatusStarted, entry.Status)
				assert.True(t, strings.HasPrefix(entry.RunID, "run_"))
				assert.Nil(t, entry.FinishedAt)
				return nil
			})
		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(budget, nil)
		m.budgetRepo.EXPECT().Update(gomock.Any(), budget).Return(nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), entity).Return(nil)
		m.ledgerRepo.EXPECT().Finalize(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *domain.RunLedgerEntry) error {
				finalized = *entry
				return nil
			})

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Empty(t, entry.EntitiesFailed)
		assert.NotNil(t, entry.FinishedAt)
		assert.Equal(t, entry.RunID, finalized.RunID)
		assert.Equal(t, domain.RunStatusSuccess, finalized.Status)

		// Um dia de facebook a 10 por dia: 10 no orçamento e 10 na entidade
		assert.True(t, budget.AmountSpent.Equal(decimal.RequireFromString("1210")),
			"gasto do orçamento: %s", budget.AmountSpent)
		assert.True(t, budget.AmountLeft.Equal(decimal.RequireFromString("3790")))
		assert.NotNil(t, budget.LastReconciledAt)
		assert.True(t, entity.Performance.SpendToDate.Equal(decimal.RequireFromString("10")))

		// Contadores simulados respeitam o funil
		assert.Positive(t, entity.Performance.Impressions)
		assert.GreaterOrEqual(t, entity.Performance.Impressions, entity.Performance.Clicks)
		assert.GreaterOrEqual(t, entity.Performance.Clicks, entity.Performance.Conversions)
	})

	t.Run("Canal desconhecido falha isolado e o restante do ciclo segue como PARTIAL", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		broken := cycleEntity("CMP-BAD", "BGT001", lastUpdate)
		broken.Channel = "snapchat"
		healthy := cycleEntity("CMP002", "BGT002", lastUpdate)

		brokenBudget := cycleBudget("BGT001", "5000", "100", domain.BudgetStatusActive)
		healthyBudget := cycleBudget("BGT002", "5000", "100", domain.BudgetStatusActive)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{broken, healthy}, nil)

		// O orçamento da entidade quebrada é lido uma única vez e nunca escrito
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(brokenBudget, nil)

		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT002").Return(healthyBudget, nil)
		m.budgetRepo.EXPECT().Update(gomock.Any(), healthyBudget).Return(nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), healthy).Return(nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusPartial, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Len(t, entry.EntitiesFailed, 1)
		assert.Contains(t, entry.EntitiesFailed["CMP-BAD"], "canal desconhecido: snapchat")
		assert.Equal(t, domain.RunStatusPartial, finalized.Status)
	})

	t.Run("Conflito de versão é retentado a partir de uma releitura e fecha em SUCCESS", func(t *testing.T) {
		service, m := newCycleService(ctrl, 1)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)

		// Cada leitura devolve uma cópia nova, como o banco faria
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").
			DoAndReturn(func(_ context.Context, _ string) (*domain.Budget, error) {
				return cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive), nil
			}).Times(2)

		gomock.InOrder(
			m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(repository.ErrVersionConflict),
			m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
		)

		fresh := cycleEntity("CMP001", "BGT001", lastUpdate)
		fresh.Version = 8
		m.entityRepo.EXPECT().GetByID(gomock.Any(), "CMP001").Return(fresh, nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), fresh).Return(nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Empty(t, entry.EntitiesFailed)
		assert.True(t, fresh.Performance.SpendToDate.Equal(decimal.RequireFromString("10")))
	})

	t.Run("Guardrail interrompido depois do gasto gravado é concluído na nova tentativa", func(t *testing.T) {
		service, m := newCycleService(ctrl, 1)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)

		// A primeira leitura vê o orçamento quase esgotado; as seguintes (as
		// releituras do guardrail e a da nova tentativa) já veem o gasto
		// agregado com o status ainda atrasado em ACTIVE
		budgetReads := 0
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").
			DoAndReturn(func(_ context.Context, _ string) (*domain.Budget, error) {
				budgetReads++
				if budgetReads == 1 {
					return cycleBudget("BGT001", "100", "95", domain.BudgetStatusActive), nil
				}
				return cycleBudget("BGT001", "100", "105", domain.BudgetStatusActive), nil
			}).Times(4)

		// A agregação grava o gasto, a marcação de esgotamento perde todas as
		// corridas e só a avaliação refeita na nova tentativa consegue escrever
		var exhausted *domain.Budget
		gomock.InOrder(
			m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
			m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
				Return(repository.ErrVersionConflict).Times(3),
			m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, budget *domain.Budget) error {
					exhausted = budget
					return nil
				}),
		)

		// A releitura da entidade devolve o registro recém-gravado: ainda
		// ativa, com a janela zerada pela tentativa anterior
		fresh := cycleEntity("CMP001", "BGT001", time.Now().UTC())
		m.entityRepo.EXPECT().GetByID(gomock.Any(), "CMP001").Return(fresh, nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), entity).Return(nil)
		m.entityRepo.EXPECT().ListByBudgetID(gomock.Any(), "BGT001").
			Return([]*domain.Entity{fresh}, nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), fresh).Return(nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Empty(t, entry.EntitiesFailed)

		// O orçamento estourado não pode fechar o ciclo como ACTIVE
		assert.NotNil(t, exhausted)
		assert.Equal(t, domain.BudgetStatusExhausted, exhausted.Status)
		assert.True(t, exhausted.AmountLeft.Equal(decimal.RequireFromString("-5")))
		assert.Equal(t, domain.EntityStatusPaused, fresh.Status)

		assert.Len(t, entry.GuardrailActions, 1)
		assert.Equal(t, domain.GuardrailActionPause, entry.GuardrailActions[0].Type)
		assert.Equal(t, domain.GuardrailReasonBudgetExhausted, entry.GuardrailActions[0].Reason)
		assert.Equal(t, "CMP001", entry.GuardrailActions[0].EntityID)
	})

	t.Run("Conflito persistente esgota as tentativas e falha só aquela entidade", func(t *testing.T) {
		service, m := newCycleService(ctrl, 1)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		contended := cycleEntity("CMP001", "BGT001", lastUpdate)
		healthy := cycleEntity("CMP002", "BGT002", lastUpdate)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).
			Return([]*domain.Entity{contended, healthy}, nil)

		// O orçamento disputado devolve uma cópia nova em cada leitura e a
		// escrita perde a corrida em todas as tentativas
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").
			DoAndReturn(func(_ context.Context, _ string) (*domain.Budget, error) {
				return cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive), nil
			}).Times(3)
		m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
			Return(repository.ErrVersionConflict).Times(3)
		m.entityRepo.EXPECT().GetByID(gomock.Any(), "CMP001").
			DoAndReturn(func(_ context.Context, _ string) (*domain.Entity, error) {
				return cycleEntity("CMP001", "BGT001", lastUpdate), nil
			}).Times(2)

		healthyBudget := cycleBudget("BGT002", "5000", "100", domain.BudgetStatusActive)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT002").Return(healthyBudget, nil)
		m.budgetRepo.EXPECT().Update(gomock.Any(), healthyBudget).Return(nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), healthy).Return(nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusPartial, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Len(t, entry.EntitiesFailed, 1)
		assert.Contains(t, entry.EntitiesFailed["CMP001"], "conflito de versão")
		assert.True(t, healthy.Performance.SpendToDate.Equal(decimal.RequireFromString("10")))
	})

	t.Run("Entidade desativada entre as tentativas sai de cena sem erro", func(t *testing.T) {
		service, m := newCycleService(ctrl, 1)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)

		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").
			Return(cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive), nil)
		m.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(repository.ErrVersionConflict)

		paused := cycleEntity("CMP001", "BGT001", lastUpdate)
		paused.Status = domain.EntityStatusPaused
		m.entityRepo.EXPECT().GetByID(gomock.Any(), "CMP001").Return(paused, nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Empty(t, entry.EntitiesFailed)
	})

	t.Run("Commit parcial não é retentado e marca a entidade como falha", func(t *testing.T) {
		service, m := newCycleService(ctrl, 1)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)
		budget := cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(budget, nil)
		m.budgetRepo.EXPECT().Update(gomock.Any(), budget).Return(nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), entity).Return(errors.New("write timeout"))

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusPartial, entry.Status)
		assert.Equal(t, 0, entry.EntitiesProcessed)
		assert.Contains(t, entry.EntitiesFailed["CMP001"], "commit parcial")
	})

	t.Run("Reexecução imediata não escreve nada e ainda fecha em SUCCESS", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		entity := cycleEntity("CMP001", "BGT001", time.Now().UTC())
		budget := cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(budget, nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.True(t, budget.AmountSpent.Equal(decimal.RequireFromString("1200")))
		assert.True(t, entity.Performance.SpendToDate.Equal(decimal.Zero))
	})

	t.Run("Orçamento pausado não acumula gasto e a entidade fica para o próximo ciclo", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)
		budget := cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusPaused)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(budget, nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Equal(t, domain.EntityStatusActive, entity.Status)
	})

	t.Run("Orçamento já esgotado pausa a entidade antes de qualquer gasto novo", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)
		budget := cycleBudget("BGT001", "100", "105", domain.BudgetStatusExhausted)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(budget, nil)
		m.entityRepo.EXPECT().Update(gomock.Any(), entity).Return(nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Equal(t, domain.EntityStatusPaused, entity.Status)
		assert.True(t, budget.AmountSpent.Equal(decimal.RequireFromString("105")))

		assert.Len(t, entry.GuardrailActions, 1)
		assert.Equal(t, domain.GuardrailActionPause, entry.GuardrailActions[0].Type)
		assert.Equal(t, domain.GuardrailReasonBudgetExhausted, entry.GuardrailActions[0].Reason)
		assert.Equal(t, "CMP001", entry.GuardrailActions[0].EntityID)
	})

	t.Run("Gasto do ciclo esgota o orçamento e o guardrail pausa a entidade no mesmo ciclo", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		lastUpdate := time.Now().UTC().Add(-24 * time.Hour)
		entity := cycleEntity("CMP001", "BGT001", lastUpdate)
		budget := cycleBudget("BGT001", "100", "95", domain.BudgetStatusActive)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Entity{entity}, nil)
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").Return(budget, nil)

		// Primeira escrita agrega o gasto, a segunda marca o esgotamento
		m.budgetRepo.EXPECT().Update(gomock.Any(), budget).Return(nil).Times(2)
		// Primeira escrita acumula o desempenho, a segunda pausa a entidade
		m.entityRepo.EXPECT().Update(gomock.Any(), entity).Return(nil).Times(2)
		m.entityRepo.EXPECT().ListByBudgetID(gomock.Any(), "BGT001").
			Return([]*domain.Entity{entity}, nil)

		entry, err := service.Run(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusSuccess, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)

		assert.Equal(t, domain.BudgetStatusExhausted, budget.Status)
		assert.True(t, budget.AmountSpent.Equal(decimal.RequireFromString("105")))
		assert.True(t, budget.AmountLeft.Equal(decimal.RequireFromString("-5")))
		assert.Equal(t, domain.EntityStatusPaused, entity.Status)

		assert.Len(t, entry.GuardrailActions, 1)
		assert.Equal(t, domain.GuardrailActionPause, entry.GuardrailActions[0].Type)
		assert.Equal(t, domain.GuardrailReasonBudgetExhausted, entry.GuardrailActions[0].Reason)
	})
}

func TestService_Run_FatalStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Falha ao abrir o ledger derruba o ciclo antes de qualquer leitura de negócio", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(repository.ErrStoreUnavailable)

		entry, err := service.Run(context.Background())

		assert.ErrorContains(t, err, "erro ao abrir o ledger")
		assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
		assert.Equal(t, domain.RunStatusStarted, entry.Status)
	})

	t.Run("Configuração de negócio indisponível fecha o ciclo como FAILED", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).
			Return(nil, errors.New("blob store fora do ar"))

		entry, err := service.Run(context.Background())

		assert.ErrorContains(t, err, "erro ao carregar a configuração de negócio")
		assert.Equal(t, domain.RunStatusFailed, entry.Status)
		assert.NotNil(t, entry.FinishedAt)
		assert.Equal(t, domain.RunStatusFailed, finalized.Status)
	})

	t.Run("Indisponibilidade persistente na enumeração esgota as tentativas e fecha como FAILED", func(t *testing.T) {
		service, m := newCycleService(ctrl, 5)

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).
			Return(nil, repository.ErrStoreUnavailable).Times(3)

		entry, err := service.Run(context.Background())

		assert.ErrorContains(t, err, "erro ao enumerar as entidades ativas")
		assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
		assert.Equal(t, domain.RunStatusFailed, entry.Status)
		assert.Equal(t, 0, entry.EntitiesProcessed)
	})
}

func TestService_Run_Cancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Cancelamento no meio do despacho fecha o ciclo como PARTIAL com o que já foi feito", func(t *testing.T) {
		service, m := newCycleService(ctrl, 1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// A primeira entidade está em janela vazia: só leitura, nenhuma escrita
		first := cycleEntity("CMP001", "BGT001", time.Now().UTC())
		second := cycleEntity("CMP002", "BGT002", time.Now().UTC().Add(-24*time.Hour))

		var finalized domain.RunLedgerEntry
		expectLedger(m, &finalized)

		m.blobStore.EXPECT().GetBusinessConfig(gomock.Any()).Return(cycleBusinessConfig(), nil)
		m.entityRepo.EXPECT().ListActive(gomock.Any()).
			Return([]*domain.Entity{first, second}, nil)

		// O cancelamento chega enquanto o único worker ainda segura a vaga;
		// a segunda entidade nunca é despachada e o orçamento dela nunca é lido
		m.budgetRepo.EXPECT().GetByID(gomock.Any(), "BGT001").
			DoAndReturn(func(_ context.Context, _ string) (*domain.Budget, error) {
				cancel()
				time.Sleep(50 * time.Millisecond)
				return cycleBudget("BGT001", "5000", "1200", domain.BudgetStatusActive), nil
			})

		entry, err := service.Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, domain.RunStatusPartial, entry.Status)
		assert.Equal(t, 1, entry.EntitiesProcessed)
		assert.Empty(t, entry.EntitiesFailed)
		assert.NotNil(t, entry.FinishedAt)
		assert.Equal(t, domain.RunStatusPartial, finalized.Status)
	})
}
