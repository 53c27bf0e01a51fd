package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/infrastructure/repository"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/internal/scheduler"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/pkg/apiErrors"
	"github.com/vfg2006/promosphere-api/pkg/middleware"
	"github.com/vfg2006/promosphere-api/pkg/utils"
)

// RunReconciliation dispara um ciclo de reconciliação fora do agendamento e
// responde com a entrada do ledger já finalizada
func RunReconciliation(syncService *scheduler.ReconciliationSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunReconciliation")

		// Verificar novamente o papel do usuário antes de disparar o ciclo
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.Role != domain.RoleOperator {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas operadores podem disparar a reconciliação", nil)
			return
		}

		entry, err := syncService.TriggerManualSync(r.Context())
		if err != nil {
			logrus.Error("Erro ao executar ciclo de reconciliação:", err)

			switch {
			case errors.Is(err, scheduler.ErrSyncInProgress):
				apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Já existe um ciclo de reconciliação em andamento", nil)

			case errors.Is(err, repository.ErrStoreUnavailable):
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Banco de dados indisponível durante o ciclo", runDetails(entry, err))

			default:
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Ciclo de reconciliação falhou", runDetails(entry, err))
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(entry); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// runDetails monta o bloco de detalhes do erro com o que o ciclo chegou a registrar
func runDetails(entry domain.RunLedgerEntry, err error) map[string]interface{} {
	if entry.RunID == "" {
		return nil
	}

	return map[string]interface{}{
		"run_id":     entry.RunID,
		"run_status": entry.Status,
		"error_type": err.Error(),
	}
}

// GetReconciliationStatus responde com o estado atual do agendador de reconciliação
func GetReconciliationStatus(syncService *scheduler.ReconciliationSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(syncService.GetStatus()); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

// ListReconciliationRuns responde com as entradas mais recentes do ledger de ciclos
func ListReconciliationRuns(service cataloging.CatalogService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var limit int
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro limit inválido: "+rawLimit, nil)
				return
			}

			limit = parsed
		}

		var since *time.Time
		if rawSince := r.URL.Query().Get("since"); rawSince != "" {
			parsed, err := utils.ParseDate(rawSince)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro since inválido, use o formato YYYY-MM-DD", nil)
				return
			}

			since = parsed
		}

		runs, err := service.ListRuns(r.Context(), limit, since)
		if err != nil {
			logrus.Error("Erro ao listar ciclos de reconciliação:", err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar o histórico de ciclos", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(runs); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}
