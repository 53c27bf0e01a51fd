package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/promosphere-api/internal/api/handler/router"
	"github.com/vfg2006/promosphere-api/internal/scheduler"
	"github.com/vfg2006/promosphere-api/internal/usecases/cataloging"
	"github.com/vfg2006/promosphere-api/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Reconciliation(syncService *scheduler.ReconciliationSyncService, catalog cataloging.CatalogService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/reconciliation/run",
			Method:      http.MethodPost,
			Handler:     RunReconciliation(syncService),
			Middlewares: []func(http.Handler) http.Handler{middleware.OperatorOnly()},
		},
		{
			Path:        "/v1/reconciliation/status",
			Method:      http.MethodGet,
			Handler:     GetReconciliationStatus(syncService),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/reconciliation/runs",
			Method:      http.MethodGet,
			Handler:     ListReconciliationRuns(catalog),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Budgets(service cataloging.CatalogService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/budgets",
			Method:      http.MethodGet,
			Handler:     BudgetList(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/budgets/:id",
			Method:      http.MethodGet,
			Handler:     GetBudget(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Entities(service cataloging.CatalogService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/campaigns",
			Method:      http.MethodGet,
			Handler:     CampaignList(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/promotions",
			Method:      http.MethodGet,
			Handler:     PromotionList(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func AudienceGroups(service cataloging.CatalogService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/audience-groups",
			Method:      http.MethodGet,
			Handler:     AudienceGroupList(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Strategies(service cataloging.CatalogService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/strategies",
			Method:      http.MethodGet,
			Handler:     StrategyList(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}
