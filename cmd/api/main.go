package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/infrastructure/database/postgres"
	"github.com/vfg2006/promosphere-api/infrastructure/integrator/blobstore"
	"github.com/vfg2006/promosphere-api/infrastructure/integrator/blobstore/blobclient"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/api"
	"github.com/vfg2006/promosphere-api/internal/config"
	"github.com/vfg2006/promosphere-api/internal/scheduler"
	"github.com/vfg2006/promosphere-api/internal/usecases/aggregating"
	"github.com/vfg2006/promosphere-api/internal/usecases/authenticating"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/internal/usecases/guardrails"
	"github.com/vfg2006/promosphere-api/internal/usecases/reconciling"
	"github.com/vfg2006/promosphere-api/internal/usecases/sampling"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	budgetRepo := repository.NewBudgetRepository(pgConn)
	entityRepo := repository.NewEntityRepository(pgConn)
	audienceGroupRepo := repository.NewAudienceGroupRepository(pgConn)
	runLedgerRepo := repository.NewRunLedgerRepository(pgConn)

	authenticator := authenticating.NewService(cfg)

	blobClient := blobclient.NewClient(cfg)
	blobIntegrator := blobstore.New(cfg, blobClient)

	samplingService := sampling.NewPerformanceSamplingService()
	aggregatingService := aggregating.NewSpendAggregatingService(budgetRepo, entityRepo)
	guardrailService := guardrails.NewBudgetGuardrailService(
		budgetRepo,
		entityRepo,
		cfg.ReconciliationSync.RetryLimit,
	)

	reconciliationService := reconciling.NewService(
		cfg,
		budgetRepo,
		entityRepo,
		runLedgerRepo,
		blobIntegrator,
		samplingService,
		aggregatingService,
		guardrailService,
	)

	// Inicializa o agendador de ciclos de reconciliação
	reconciliationSyncService := scheduler.NewReconciliationSyncService(reconciliationService, cfg)

	// Inicia o agendador em background
	if err := reconciliationSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação")
	} else {
		logrus.Info("Agendador de reconciliação iniciado com sucesso")
	}

	catalogService := cataloging.NewService(
		budgetRepo,
		entityRepo,
		audienceGroupRepo,
		runLedgerRepo,
		blobIntegrator,
	)

	server, err := api.New(
		cfg,
		catalogService,
		authenticator,
		reconciliationSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
