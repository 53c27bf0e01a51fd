package blobclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"

	"github.com/vfg2006/promosphere-api/pkg/utils"
)

func (c *BlobStoreClient) DownloadJSON(ctx context.Context, objectPath string, out any) error {
	// Construir a URL da requisição.
	endpoint, err := url.Parse(c.config.Blob.BaseURL)
	if err != nil {
		return fmt.Errorf("erro ao analisar a URL base: %w", err)
	}
	endpoint.Path = path.Join(endpoint.Path, objectPath)

	// Adicionar cabeçalhos necessários.
	headers := map[string]string{
		"Authorization": "Bearer " + c.config.Blob.AccessToken,
		"Accept":        "application/json",
	}

	// Executar a requisição.
	data, err := utils.MakeRequest(ctx, c.httpClient, endpoint.String(), headers)
	if err != nil {
		return err
	}

	// Decodificar a resposta JSON.
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("erro ao decodificar a resposta: %w", err)
	}

	return nil
}
