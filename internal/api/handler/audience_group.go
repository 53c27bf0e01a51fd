package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/pkg/apiErrors"
)

func AudienceGroupList(service cataloging.CatalogService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		groups, err := service.ListAudienceGroups(r.Context())
		if err != nil {
			logrus.Error("Erro ao listar grupos de audiência:", err)
			handleStoreError(w, err, "Erro ao consultar grupos de audiência no banco de dados")
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(groups); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}
