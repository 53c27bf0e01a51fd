package cataloging

import (
	"context"
	"time"

	"github.com/vfg2006/promosphere-api/infrastructure/integrator/blobstore"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/domain"
)

// Limites da listagem de ciclos no ledger
const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// CatalogService expõe as leituras servidas pela API: orçamentos, campanhas,
// promoções, grupos de audiência, estratégias e o ledger de ciclos. Toda
// mutação desses registros acontece fora daqui (motor de reconciliação ou
// edição externa).
type CatalogService interface {
	GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context) ([]*domain.Budget, error)
	ListEntities(ctx context.Context, kind string, status string) ([]*domain.Entity, error)
	ListAudienceGroups(ctx context.Context) ([]*domain.AudienceGroup, error)
	ListStrategies(ctx context.Context) ([]domain.Strategy, error)
	ListRuns(ctx context.Context, limit int, since *time.Time) ([]*domain.RunLedgerEntry, error)
}

type Service struct {
	BudgetRepository        repository.BudgetRepository
	EntityRepository        repository.EntityRepository
	AudienceGroupRepository repository.AudienceGroupRepository
	RunLedgerRepository     repository.RunLedgerRepository
	BlobStore               blobstore.BlobStoreIntegrator
}

func NewService(
	budgetRepository repository.BudgetRepository,
	entityRepository repository.EntityRepository,
	audienceGroupRepository repository.AudienceGroupRepository,
	runLedgerRepository repository.RunLedgerRepository,
	blobStore blobstore.BlobStoreIntegrator,
) CatalogService {
	return &Service{
		BudgetRepository:        budgetRepository,
		EntityRepository:        entityRepository,
		AudienceGroupRepository: audienceGroupRepository,
		RunLedgerRepository:     runLedgerRepository,
		BlobStore:               blobStore,
	}
}

func (s *Service) GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return s.BudgetRepository.GetByID(ctx, budgetID)
}

func (s *Service) ListBudgets(ctx context.Context) ([]*domain.Budget, error) {
	return s.BudgetRepository.List(ctx)
}

func (s *Service) ListEntities(ctx context.Context, kind string, status string) ([]*domain.Entity, error) {
	return s.EntityRepository.ListByKind(ctx, kind, status)
}

func (s *Service) ListAudienceGroups(ctx context.Context) ([]*domain.AudienceGroup, error) {
	return s.AudienceGroupRepository.List(ctx)
}

func (s *Service) ListStrategies(ctx context.Context) ([]domain.Strategy, error) {
	return s.BlobStore.ListStrategies(ctx)
}

// ListRuns lista os ciclos mais recentes do ledger, com limite saneado
func (s *Service) ListRuns(ctx context.Context, limit int, since *time.Time) ([]*domain.RunLedgerEntry, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	return s.RunLedgerRepository.ListRecent(ctx, uint64(limit), since)
}
