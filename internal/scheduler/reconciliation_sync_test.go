package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/promosphere-api/internal/config"
	"github.com/vfg2006/promosphere-api/internal/domain"
	reconcilingmocks "github.com/vfg2006/promosphere-api/internal/usecases/reconciling/mocks"
	"go.uber.org/mock/gomock"
)

func syncAppConfig(enabled bool) *config.Config {
	return &config.Config{
		ReconciliationSync: config.ReconciliationSync{
			CronSchedule:      "0 */12 * * *",
			MaxConcurrentJobs: 5,
			RetryLimit:        2,
			RetryBackoff:      500 * time.Millisecond,
			StoreTimeout:      5 * time.Second,
			Enabled:           enabled,
		},
	}
}

func TestReconciliationSyncService_TriggerManualSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name     string
		setup    func(service *ReconciliationSyncService, mockService *reconcilingmocks.MockReconciliationService)
		validate func(t *testing.T, service *ReconciliationSyncService, entry domain.RunLedgerEntry, err error)
	}{
		{
			name: "Ciclo manual executa e publica o resultado no status",
			setup: func(_ *ReconciliationSyncService, mockService *reconcilingmocks.MockReconciliationService) {
				mockService.EXPECT().
					Run(gomock.Any()).
					Return(domain.RunLedgerEntry{
						RunID:             "run_abc123def456",
						Status:            domain.RunStatusSuccess,
						EntitiesProcessed: 3,
						EntitiesFailed:    map[string]string{},
					}, nil)
			},
			validate: func(t *testing.T, service *ReconciliationSyncService, entry domain.RunLedgerEntry, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "run_abc123def456", entry.RunID)
				assert.Equal(t, domain.RunStatusSuccess, entry.Status)
				assert.Equal(t, 3, entry.EntitiesProcessed)

				status := service.GetStatus()
				assert.Equal(t, "run_abc123def456", status["last_run_id"])
				assert.Equal(t, domain.RunStatusSuccess, status["last_run_status"])
				assert.Equal(t, false, status["sync_running"])
				assert.False(t, status["last_sync_started_at"].(time.Time).IsZero())
				assert.False(t, status["last_sync_completed_at"].(time.Time).IsZero())
			},
		},
		{
			name: "Ciclo em andamento rejeita a solicitação manual",
			setup: func(service *ReconciliationSyncService, _ *reconcilingmocks.MockReconciliationService) {
				// Simula um ciclo agendado segurando a trava deste processo
				service.syncMutex.Lock()
				service.syncRunning = true
				service.syncMutex.Unlock()
			},
			validate: func(t *testing.T, service *ReconciliationSyncService, entry domain.RunLedgerEntry, err error) {
				assert.ErrorIs(t, err, ErrSyncInProgress)
				assert.Empty(t, entry.RunID)

				status := service.GetStatus()
				assert.Equal(t, true, status["sync_running"])
			},
		},
		{
			name: "Falha do ciclo propaga o erro e ainda registra o resultado",
			setup: func(_ *ReconciliationSyncService, mockService *reconcilingmocks.MockReconciliationService) {
				mockService.EXPECT().
					Run(gomock.Any()).
					Return(domain.RunLedgerEntry{
						RunID:  "run_failed000001",
						Status: domain.RunStatusFailed,
					}, errors.New("erro ao enumerar as entidades ativas"))
			},
			validate: func(t *testing.T, service *ReconciliationSyncService, entry domain.RunLedgerEntry, err error) {
				assert.Error(t, err)
				assert.Equal(t, "run_failed000001", entry.RunID)

				status := service.GetStatus()
				assert.Equal(t, "run_failed000001", status["last_run_id"])
				assert.Equal(t, domain.RunStatusFailed, status["last_run_status"])
				assert.Equal(t, false, status["sync_running"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := reconcilingmocks.NewMockReconciliationService(ctrl)
			service := NewReconciliationSyncService(mockService, syncAppConfig(true))

			tt.setup(service, mockService)

			entry, err := service.TriggerManualSync(context.Background())

			tt.validate(t, service, entry, err)
		})
	}
}

func TestReconciliationSyncService_SyncReconciliation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Tick do agendador com a trava ocupada é ignorado sem executar o ciclo", func(t *testing.T) {
		mockService := reconcilingmocks.NewMockReconciliationService(ctrl)
		service := NewReconciliationSyncService(mockService, syncAppConfig(true))

		service.syncMutex.Lock()
		service.syncRunning = true
		service.syncMutex.Unlock()

		// Nenhum EXPECT armado: qualquer chamada ao ciclo falharia o teste
		service.syncReconciliation()
	})

	t.Run("Tick do agendador executa o ciclo e publica o resultado", func(t *testing.T) {
		mockService := reconcilingmocks.NewMockReconciliationService(ctrl)
		service := NewReconciliationSyncService(mockService, syncAppConfig(true))

		mockService.EXPECT().
			Run(gomock.Any()).
			Return(domain.RunLedgerEntry{
				RunID:             "run_scheduled001",
				Status:            domain.RunStatusPartial,
				EntitiesProcessed: 2,
				EntitiesFailed:    map[string]string{"CMP001": "commit parcial"},
			}, nil)

		service.syncReconciliation()

		status := service.GetStatus()
		assert.Equal(t, "run_scheduled001", status["last_run_id"])
		assert.Equal(t, domain.RunStatusPartial, status["last_run_status"])
		assert.Equal(t, false, status["sync_running"])
	})
}

func TestReconciliationSyncService_Start(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Agendador desabilitado por configuração não agenda nada", func(t *testing.T) {
		mockService := reconcilingmocks.NewMockReconciliationService(ctrl)
		service := NewReconciliationSyncService(mockService, syncAppConfig(false))

		err := service.Start(context.Background())

		assert.NoError(t, err)

		status := service.GetStatus()
		assert.Equal(t, false, status["sync_enabled"])
		assert.NotContains(t, status, "next_run_at")
	})

	t.Run("Agendador habilitado agenda o ciclo e expõe a próxima execução", func(t *testing.T) {
		mockService := reconcilingmocks.NewMockReconciliationService(ctrl)
		service := NewReconciliationSyncService(mockService, syncAppConfig(true))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		err := service.Start(ctx)

		assert.NoError(t, err)

		status := service.GetStatus()
		assert.Equal(t, true, status["sync_enabled"])
		assert.Equal(t, "0 */12 * * *", status["sync_cron"])
		assert.Equal(t, 5, status["sync_max_concurrent"])
		assert.Contains(t, status, "next_run_at")
	})

	t.Run("Expressão cron inválida devolve erro na inicialização", func(t *testing.T) {
		mockService := reconcilingmocks.NewMockReconciliationService(ctrl)

		appConfig := syncAppConfig(true)
		appConfig.ReconciliationSync.CronSchedule = "não é cron"
		service := NewReconciliationSyncService(mockService, appConfig)

		err := service.Start(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "erro ao agendar ciclos de reconciliação")
	})
}
