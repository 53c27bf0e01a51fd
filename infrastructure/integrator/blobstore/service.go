package blobstore

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/infrastructure/integrator/blobstore/blobclient"
	"github.com/vfg2006/promosphere-api/internal/config"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/pkg/log"
	"github.com/vfg2006/promosphere-api/pkg/utils"
)

// BlobStoreIntegrator baixa os documentos de configuração mantidos pelo time
// de negócio no object storage. Os arquivos são somente leitura para a API.
type BlobStoreIntegrator interface {
	GetBusinessConfig(ctx context.Context) (*domain.BusinessConfig, error)
	ListStrategies(ctx context.Context) ([]domain.Strategy, error)
}

type BlobStoreService struct {
	cfg    *config.Config
	Client blobclient.Client
}

func New(cfg *config.Config, client blobclient.Client) BlobStoreIntegrator {
	return &BlobStoreService{
		cfg:    cfg,
		Client: client,
	}
}

// GetBusinessConfig baixa e valida o business_config.json. Uma configuração
// inválida interrompe o ciclo de reconciliação antes de qualquer escrita.
func (s *BlobStoreService) GetBusinessConfig(ctx context.Context) (*domain.BusinessConfig, error) {
	businessConfig := &domain.BusinessConfig{}

	if err := s.Client.DownloadJSON(ctx, s.cfg.Blob.BusinessConfigPath, businessConfig); err != nil {
		return nil, fmt.Errorf("erro ao baixar a configuração de negócio: %w", err)
	}

	if err := businessConfig.Validate(); err != nil {
		return nil, fmt.Errorf("configuração de negócio inválida: %w", err)
	}

	if log.IsDevelopment() {
		logrus.Debugf("blobstore: business config loaded\n%s", utils.PrettyJson(businessConfig))
	}

	logrus.WithField("channels", len(businessConfig.Channels)).Info("blobstore: business config successfully loaded")

	return businessConfig, nil
}

func (s *BlobStoreService) ListStrategies(ctx context.Context) ([]domain.Strategy, error) {
	strategies := make([]domain.Strategy, 0)

	if err := s.Client.DownloadJSON(ctx, s.cfg.Blob.StrategiesPath, &strategies); err != nil {
		return nil, fmt.Errorf("erro ao baixar o catálogo de estratégias: %w", err)
	}

	return strategies, nil
}
