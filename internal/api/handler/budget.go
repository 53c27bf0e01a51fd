package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/pkg/apiErrors"
)

func BudgetList(service cataloging.CatalogService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		budgets, err := service.ListBudgets(r.Context())
		if err != nil {
			logrus.Error("Erro ao listar orçamentos:", err)
			handleStoreError(w, err, "Erro ao consultar orçamentos no banco de dados")
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(budgets); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

func GetBudget(service cataloging.CatalogService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do orçamento é obrigatório", nil)
			return
		}

		budget, err := service.GetBudget(r.Context(), id)
		if err != nil {
			logrus.Error("Erro ao buscar orçamento:", err)

			if errors.Is(err, repository.ErrNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Orçamento não encontrado", map[string]interface{}{
					"budget_id": id,
				})
				return
			}

			handleStoreError(w, err, "Erro ao consultar orçamento no banco de dados")
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(budget); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// handleStoreError traduz os erros sentinela do repositório para o corpo de
// erro padrão da API
func handleStoreError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Recurso não encontrado", nil)

	case errors.Is(err, repository.ErrStoreUnavailable):
		apiErrors.WriteError(w, apiErrors.ErrCommunication, "Banco de dados indisponível", nil)

	default:
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, message, nil)
	}
}
