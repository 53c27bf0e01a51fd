package reconciling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/promosphere-api/infrastructure/integrator/blobstore"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/config"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/internal/usecases/aggregating"
	"github.com/vfg2006/promosphere-api/internal/usecases/guardrails"
	"github.com/vfg2006/promosphere-api/internal/usecases/sampling"
	"github.com/vfg2006/promosphere-api/pkg/log"
	"github.com/vfg2006/promosphere-api/pkg/utils"
)

type ReconciliationService interface {
	Run(ctx context.Context) (domain.RunLedgerEntry, error)
}

type Service struct {
	cfg                 *config.Config
	BudgetRepository    repository.BudgetRepository
	EntityRepository    repository.EntityRepository
	RunLedgerRepository repository.RunLedgerRepository
	BlobStore           blobstore.BlobStoreIntegrator
	Sampler             sampling.SamplingService
	Aggregator          aggregating.AggregatingService
	Guardrails          guardrails.GuardrailService
}

func NewService(
	cfg *config.Config,
	budgetRepository repository.BudgetRepository,
	entityRepository repository.EntityRepository,
	runLedgerRepository repository.RunLedgerRepository,
	blobStore blobstore.BlobStoreIntegrator,
	sampler sampling.SamplingService,
	aggregator aggregating.AggregatingService,
	guardrailService guardrails.GuardrailService,
) ReconciliationService {
	return &Service{
		cfg:                 cfg,
		BudgetRepository:    budgetRepository,
		EntityRepository:    entityRepository,
		RunLedgerRepository: runLedgerRepository,
		BlobStore:           blobStore,
		Sampler:             sampler,
		Aggregator:          aggregator,
		Guardrails:          guardrailService,
	}
}

// Run executa um ciclo de reconciliação: STARTED → ENUMERATING → PROCESSING →
// FINALIZED. Falhas por entidade são isoladas e atribuídas no ledger; apenas
// erros de abertura, enumeração e finalização derrubam o ciclo inteiro.
func (s *Service) Run(ctx context.Context) (domain.RunLedgerEntry, error) {
	runID, err := utils.GenerateRunID()
	if err != nil {
		return domain.RunLedgerEntry{}, fmt.Errorf("erro ao gerar o id do ciclo: %w", err)
	}

	entry := domain.RunLedgerEntry{
		RunID:            runID,
		StartedAt:        time.Now().UTC(),
		EntitiesFailed:   map[string]string{},
		GuardrailActions: []domain.GuardrailAction{},
		Status:           domain.RunStatusStarted,
	}

	logger := log.ForContext(ctx).WithField("run_id", runID)
	logger.Info("reconciliation: cycle started")

	// O ciclo entra no ledger antes de qualquer escrita de negócio
	if err := s.createLedger(ctx, &entry); err != nil {
		return entry, fmt.Errorf("erro ao abrir o ledger do ciclo: %w", err)
	}

	businessConfig, err := s.BlobStore.GetBusinessConfig(ctx)
	if err != nil {
		return s.finalizeAs(ctx, &entry, domain.RunStatusFailed,
			fmt.Errorf("erro ao carregar a configuração de negócio: %w", err))
	}

	entities, err := s.enumerateActive(ctx)
	if err != nil {
		return s.finalizeAs(ctx, &entry, domain.RunStatusFailed,
			fmt.Errorf("erro ao enumerar as entidades ativas: %w", err))
	}

	logger.WithField("entity_count", len(entities)).Info("reconciliation: active entities enumerated")

	cancelled := s.processAll(ctx, &entry, businessConfig, entities)

	status := domain.RunStatusSuccess
	if cancelled || len(entry.EntitiesFailed) > 0 {
		status = domain.RunStatusPartial
	}

	return s.finalizeAs(ctx, &entry, status, nil)
}

func (s *Service) createLedger(ctx context.Context, entry *domain.RunLedgerEntry) error {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.RunLedgerRepository.Create(storeCtx, entry)
}

// finalizeAs fecha o ledger com o status dado mesmo quando o contexto do ciclo
// já foi cancelado: resultados parciais precisam ficar visíveis.
func (s *Service) finalizeAs(ctx context.Context, entry *domain.RunLedgerEntry, status string, cause error) (domain.RunLedgerEntry, error) {
	now := time.Now().UTC()
	entry.FinishedAt = &now
	entry.Status = status

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ReconciliationSync.StoreTimeout)
	defer cancel()

	if err := s.RunLedgerRepository.Finalize(storeCtx, entry); err != nil {
		log.ForContext(ctx).
			WithField("run_id", entry.RunID).
			WithError(err).
			Error("reconciliation: ledger finalization failed")

		if cause != nil {
			return *entry, cause
		}
		return *entry, fmt.Errorf("erro ao finalizar o ledger do ciclo: %w", err)
	}

	log.ForContext(ctx).
		WithFields(log.Fields{
			"run_id":     entry.RunID,
			"run_status": entry.Status,
		}).
		Infof("reconciliation: cycle finalized, %d processed, %d failed", entry.EntitiesProcessed, len(entry.EntitiesFailed))

	return *entry, cause
}

// enumerateActive tira o snapshot das entidades ativas, retentando com backoff
// indisponibilidades transitórias do banco. Se não houver snapshot o ciclo
// inteiro falha.
func (s *Service) enumerateActive(ctx context.Context) ([]*domain.Entity, error) {
	var entities []*domain.Entity
	var err error

	for attempt := 0; attempt <= s.cfg.ReconciliationSync.RetryLimit; attempt++ {
		if attempt > 0 {
			if waitErr := s.waitBackoff(ctx, attempt); waitErr != nil {
				return nil, err
			}
		}

		storeCtx, cancel := s.storeContext(ctx)
		entities, err = s.EntityRepository.ListActive(storeCtx)
		cancel()

		if err == nil {
			return entities, nil
		}

		if !errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, err
		}
	}

	return nil, err
}

// processAll distribui as entidades em um pool limitado de workers. Devolve
// verdadeiro se o ciclo foi cancelado antes de despachar todas.
func (s *Service) processAll(ctx context.Context, entry *domain.RunLedgerEntry, businessConfig *domain.BusinessConfig, entities []*domain.Entity) bool {
	var wg sync.WaitGroup
	var mu sync.Mutex

	maxJobs := s.cfg.ReconciliationSync.MaxConcurrentJobs
	if maxJobs < 1 {
		maxJobs = 1
	}
	workers := make(chan struct{}, maxJobs)

	cancelled := false

	for _, entity := range entities {
		select {
		case workers <- struct{}{}:
		case <-ctx.Done():
			cancelled = true
		}

		if cancelled {
			log.ForContext(ctx).
				WithField("run_id", entry.RunID).
				Warn("reconciliation: cycle cancelled, dispatch stopped")
			break
		}

		wg.Add(1)
		go func(entity *domain.Entity) {
			defer wg.Done()
			defer func() { <-workers }()

			actions, err := s.processEntity(ctx, entry.RunID, businessConfig, entity)

			mu.Lock()
			defer mu.Unlock()

			entry.GuardrailActions = append(entry.GuardrailActions, actions...)

			if err != nil {
				entry.EntitiesFailed[entity.ID] = err.Error()
				return
			}
			entry.EntitiesProcessed++
		}(entity)
	}

	// Workers em voo terminam mesmo com o ciclo cancelado; entidades já
	// gravadas permanecem gravadas
	wg.Wait()

	return cancelled
}

// processEntity reconcilia uma entidade, retentando conflitos de versão e
// indisponibilidade a partir de uma releitura, até o limite configurado
func (s *Service) processEntity(ctx context.Context, runID string, businessConfig *domain.BusinessConfig, entity *domain.Entity) ([]domain.GuardrailAction, error) {
	logger := log.ForContext(ctx).WithFields(log.Fields{"run_id": runID, "entity_id": entity.ID})

	actions := make([]domain.GuardrailAction, 0)
	var lastErr error

	for attempt := 0; attempt <= s.cfg.ReconciliationSync.RetryLimit; attempt++ {
		if attempt > 0 {
			if waitErr := s.waitBackoff(ctx, attempt); waitErr != nil {
				break
			}

			fresh, err := s.getEntity(ctx, entity.ID)
			if err != nil {
				lastErr = err
				break
			}

			if fresh.Status != domain.EntityStatusActive {
				// Outro escritor tirou a entidade de cena; nada mais a fazer
				return actions, nil
			}
			entity = fresh

			logger.Infof("reconciliation: retrying entity, attempt %d", attempt)
		}

		attemptActions, err := s.attemptEntity(ctx, businessConfig, entity)
		actions = append(actions, attemptActions...)

		if err == nil {
			return actions, nil
		}
		lastErr = err

		if !isRetryable(err) {
			var partialErr *aggregating.PartialCommitError
			if errors.As(err, &partialErr) {
				logger.WithError(err).WithField("budget_id", partialErr.BudgetID).
					Error("reconciliation: partial commit, budget updated without the entity")
			} else {
				logger.WithError(err).Error("reconciliation: entity failed")
			}

			return actions, err
		}

		logger.WithError(err).Warn("reconciliation: entity attempt failed, will retry")
	}

	logger.WithError(lastErr).Error("reconciliation: entity failed after retries")

	return actions, lastErr
}

// attemptEntity é uma tentativa completa sobre uma entidade: valida, lê o
// orçamento, amostra o delta, agrega e avalia os guardrails
func (s *Service) attemptEntity(ctx context.Context, businessConfig *domain.BusinessConfig, entity *domain.Entity) ([]domain.GuardrailAction, error) {
	if err := entity.Validate(); err != nil {
		return nil, &ValidationError{EntityID: entity.ID, Reason: err.Error()}
	}

	budget, err := s.getBudget(ctx, entity.LinkedBudgetID)
	if err != nil {
		return nil, err
	}

	dailyCost, ok := businessConfig.DailyCostFor(entity.Channel, budget.DailyCostDefaults)
	if !ok {
		return nil, &ValidationError{EntityID: entity.ID, Reason: fmt.Sprintf("canal desconhecido: %s", entity.Channel)}
	}

	// Orçamento pausado não acumula gasto; a entidade fica para o próximo ciclo
	if budget.Status == domain.BudgetStatusPaused {
		return nil, nil
	}

	now := time.Now().UTC()

	// Orçamento já esgotado força a entidade a PAUSED antes de qualquer gasto novo
	if budget.Status == domain.BudgetStatusExhausted {
		return s.pauseForExhaustedBudget(ctx, entity, budget, now)
	}

	delta := s.Sampler.Sample(entity, dailyCost, now)
	if delta.IsZero() {
		// Orçamento com saldo negativo e status atrasado: uma tentativa
		// anterior agregou o gasto mas não concluiu os guardrails, então a
		// avaliação roda de novo mesmo sem delta
		if budget.IsExhausted() {
			storeCtx, cancel := s.storeContext(ctx)
			actions, err := s.Guardrails.Evaluate(storeCtx, budget, businessConfig.LowBudgetRatio(), now)
			cancel()

			return actions, err
		}

		// Janela sem um centavo acumulado: reexecução idempotente, nada a escrever
		return nil, nil
	}

	storeCtx, cancel := s.storeContext(ctx)
	err = s.Aggregator.Apply(storeCtx, aggregating.ApplyParams{
		Entity:          entity,
		Budget:          budget,
		Delta:           delta,
		ConversionValue: businessConfig.ConversionValueFor(entity.Channel),
		Now:             now,
	})
	cancel()
	if err != nil {
		return nil, err
	}

	storeCtx, cancel = s.storeContext(ctx)
	actions, err := s.Guardrails.Evaluate(storeCtx, budget, businessConfig.LowBudgetRatio(), now)
	cancel()

	return actions, err
}

func (s *Service) pauseForExhaustedBudget(ctx context.Context, entity *domain.Entity, budget *domain.Budget, now time.Time) ([]domain.GuardrailAction, error) {
	entity.Status = domain.EntityStatusPaused

	storeCtx, cancel := s.storeContext(ctx)
	err := s.EntityRepository.Update(storeCtx, entity)
	cancel()
	if err != nil {
		return nil, err
	}

	log.ForContext(ctx).
		WithFields(log.Fields{"entity_id": entity.ID, "budget_id": budget.ID}).
		Warn("reconciliation: entity paused, linked budget already exhausted")

	return []domain.GuardrailAction{{
		Type:      domain.GuardrailActionPause,
		BudgetID:  budget.ID,
		EntityID:  entity.ID,
		Reason:    domain.GuardrailReasonBudgetExhausted,
		CreatedAt: now,
	}}, nil
}

func (s *Service) getBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.BudgetRepository.GetByID(storeCtx, budgetID)
}

func (s *Service) getEntity(ctx context.Context, entityID string) (*domain.Entity, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.EntityRepository.GetByID(storeCtx, entityID)
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.ReconciliationSync.StoreTimeout)
}

// waitBackoff espera o backoff linear da tentativa, abortando se o ciclo for cancelado
func (s *Service) waitBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt) * s.cfg.ReconciliationSync.RetryBackoff)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetryable separa o que vale nova tentativa a partir de uma releitura
// (conflito de versão, indisponibilidade transitória) do que falha na hora.
// Commit parcial nunca é retentado: retentar dobraria o gasto no orçamento.
func isRetryable(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return false
	}

	var partialErr *aggregating.PartialCommitError
	if errors.As(err, &partialErr) {
		return false
	}

	return errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrStoreUnavailable)
}
