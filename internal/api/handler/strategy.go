package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/pkg/apiErrors"
)

// StrategyList lista as estratégias de marketing publicadas no blob store
func StrategyList(service cataloging.CatalogService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		strategies, err := service.ListStrategies(r.Context())
		if err != nil {
			logrus.Error("Erro ao listar estratégias:", err)
			apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro ao obter estratégias do blob store", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(strategies); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}
