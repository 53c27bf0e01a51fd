package handler

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/pkg/apiErrors"
)

// CampaignList lista as campanhas cadastradas, com filtro opcional por status
func CampaignList(service cataloging.CatalogService) http.Handler {
	return listEntities(service, domain.EntityKindCampaign, "Erro ao consultar campanhas no banco de dados")
}

// PromotionList lista as promoções cadastradas, com filtro opcional por status
func PromotionList(service cataloging.CatalogService) http.Handler {
	return listEntities(service, domain.EntityKindPromotion, "Erro ao consultar promoções no banco de dados")
}

func listEntities(service cataloging.CatalogService, kind string, failureMessage string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := strings.ToUpper(r.URL.Query().Get("status"))

		entities, err := service.ListEntities(r.Context(), kind, status)
		if err != nil {
			logrus.Error("Erro ao listar entidades:", err)
			handleStoreError(w, err, failureMessage)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(entities); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}
