package blobclient

import (
	"context"
	"net/http"

	"github.com/vfg2006/promosphere-api/internal/config"
)

type Client interface {
	DownloadJSON(ctx context.Context, objectPath string, out any) error
}

type BlobStoreClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NovoClienteAPI cria uma nova instância de clienteAPI.
func NewClient(cfg *config.Config) Client {
	return &BlobStoreClient{
		httpClient: &http.Client{
			Timeout: cfg.Blob.RequestTimeout,
		},
		config: cfg,
	}
}
