package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("GET /v1/teams/{team}/record", handler.TeamRecord)
	mux.HandleFunc("GET /v1/teams/{team}/home", handler.HomeRecord)
	mux.HandleFunc("GET /v1/teams/{team}/away", handler.AwayRecord)
	mux.HandleFunc("GET /v1/teams/{team}/form", handler.RecentForm)
	mux.HandleFunc("GET /v1/teams/{team}/games", handler.LastGames)
	mux.HandleFunc("GET /v1/head-to-head", handler.HeadToHead)
	mux.HandleFunc("GET /v1/standings", handler.SeasonStandings)
	mux.HandleFunc("GET /v1/leaders/{metric}", handler.Leaders)
	mux.HandleFunc("GET /v1/briefing", handler.Briefing)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/predictions", handler.PredictMatch)
	mux.HandleFunc("GET /v1/predictions/head-to-head", handler.PredictionHeadToHead)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("GET /v1/cache/stats", RequireAdminToken(adminToken, http.HandlerFunc(handler.CacheStats)))
	mux.Handle("POST /v1/cache/sweep", RequireAdminToken(adminToken, http.HandlerFunc(handler.SweepCache)))
	mux.Handle("DELETE /v1/cache", RequireAdminToken(adminToken, http.HandlerFunc(handler.ClearCache)))
}
