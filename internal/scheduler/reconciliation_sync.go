package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/internal/config"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/internal/usecases/reconciling"
	"github.com/vfg2006/promosphere-api/pkg/log"
)

// ErrSyncInProgress indica que um ciclo de reconciliação já está em andamento neste processo
var ErrSyncInProgress = errors.New("ciclo de reconciliação já em andamento")

// ReconciliationSyncConfig representa a configuração do agendador de reconciliação
type ReconciliationSyncConfig struct {
	CronSchedule      string
	MaxConcurrentJobs int
	RetryLimit        int
	SyncEnabled       bool
}

// ReconciliationSyncService gerencia o agendamento e execução dos ciclos de reconciliação.
// A trava de sobreposição vale apenas dentro deste processo; entre processos a
// segurança vem da concorrência otimista das escritas.
type ReconciliationSyncService struct {
	scheduler             *gocron.Scheduler
	job                   *gocron.Job
	config                ReconciliationSyncConfig
	appConfig             *config.Config
	reconciliationService reconciling.ReconciliationService
	syncRunning           bool
	syncMutex             sync.Mutex
	lastRunID             string
	lastRunStatus         string
	lastSyncStartedAt     time.Time
	lastSyncCompletedAt   time.Time
}

// NewReconciliationSyncService cria uma nova instância do serviço de sincronização de reconciliação
func NewReconciliationSyncService(
	reconciliationService reconciling.ReconciliationService,
	appConfig *config.Config,
) *ReconciliationSyncService {
	// Criar a configuração com base na config global
	syncConfig := ReconciliationSyncConfig{
		CronSchedule:      appConfig.ReconciliationSync.CronSchedule,
		MaxConcurrentJobs: appConfig.ReconciliationSync.MaxConcurrentJobs,
		RetryLimit:        appConfig.ReconciliationSync.RetryLimit,
		SyncEnabled:       appConfig.ReconciliationSync.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"retry_limit":         syncConfig.RetryLimit,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de reconciliação carregada")

	return &ReconciliationSyncService{
		scheduler:             scheduler,
		config:                syncConfig,
		appConfig:             appConfig,
		reconciliationService: reconciliationService,
		syncRunning:           false,
	}
}

// Start inicia o agendador
func (s *ReconciliationSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Ciclo de reconciliação desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reconciliação")

	// Agendar os ciclos de reconciliação
	job, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncReconciliation()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar ciclos de reconciliação: %w", err)
	}
	s.job = job

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reconciliação")
		s.scheduler.Stop()
	}()

	return nil
}

// syncReconciliation executa um ciclo disparado pelo agendador
func (s *ReconciliationSyncService) syncReconciliation() {
	if !s.tryAcquire() {
		logrus.Info("Ciclo de reconciliação já em andamento, ignorando tick do agendador")
		return
	}
	defer s.release()

	// Cada ciclo agendado ganha seu próprio id de correlação nos logs
	ctx, _ := log.WithCorrelationID(context.Background())

	if _, err := s.runCycle(ctx); err != nil {
		logrus.WithError(err).Error("Ciclo de reconciliação agendado falhou")
	}
}

// TriggerManualSync executa um ciclo sob demanda e devolve o registro
// finalizado do ledger. Falha com ErrSyncInProgress se outro ciclo deste
// processo ainda estiver rodando.
func (s *ReconciliationSyncService) TriggerManualSync(ctx context.Context) (domain.RunLedgerEntry, error) {
	if !s.tryAcquire() {
		logrus.Info("Ciclo de reconciliação já em andamento, ignorando solicitação manual")
		return domain.RunLedgerEntry{}, ErrSyncInProgress
	}
	defer s.release()

	logrus.Info("Iniciando ciclo de reconciliação manual")

	return s.runCycle(ctx)
}

func (s *ReconciliationSyncService) runCycle(ctx context.Context) (domain.RunLedgerEntry, error) {
	startTime := time.Now()

	entry, err := s.reconciliationService.Run(ctx)

	duration := time.Since(startTime)

	s.syncMutex.Lock()
	s.lastRunID = entry.RunID
	s.lastRunStatus = entry.Status
	s.lastSyncCompletedAt = time.Now()
	s.syncMutex.Unlock()

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"run_id":   entry.RunID,
			"duration": duration.String(),
		}).WithError(err).Error("Ciclo de reconciliação falhou")

		return entry, err
	}

	logrus.WithFields(logrus.Fields{
		"run_id":    entry.RunID,
		"status":    entry.Status,
		"processed": entry.EntitiesProcessed,
		"failed":    len(entry.EntitiesFailed),
		"duration":  duration.String(),
	}).Info("Ciclo de reconciliação concluído")

	return entry, nil
}

func (s *ReconciliationSyncService) tryAcquire() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}

	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()

	return true
}

func (s *ReconciliationSyncService) release() {
	s.syncMutex.Lock()
	s.syncRunning = false
	s.syncMutex.Unlock()
}

// GetStatus retorna o status atual do agendador
func (s *ReconciliationSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"sync_retry_limit":       s.config.RetryLimit,
		"sync_running":           s.syncRunning,
		"last_run_id":            s.lastRunID,
		"last_run_status":        s.lastRunStatus,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}

	if s.job != nil {
		status["next_run_at"] = s.job.NextRun()
	}

	return status
}
