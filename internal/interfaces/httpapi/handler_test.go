package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/platform/cache"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

const testAdminToken = "admin-secret"

type staticNames map[string]string

func (n staticNames) DisplayName(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func testLog() *match.Log {
	teams := []string{"Avangard", "Barys", "CSKA", "Dinamo"}
	start := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	var matches []match.Match
	day := 0
	for round := 0; round < 6; round++ {
		season := match.Season(2021)
		if round >= 3 {
			season = 2122
		}
		for i, home := range teams {
			for j, away := range teams {
				if i == j {
					continue
				}
				winner, hg, ag := home, 4, 2
				if j < i {
					winner, hg, ag = away, 1, 3
				}
				matches = append(matches, match.Match{
					HomeTeam:  home,
					AwayTeam:  away,
					Winner:    winner,
					HomeGoals: &hg,
					AwayGoals: &ag,
					Season:    season,
					Date:      start.AddDate(0, 0, day),
				})
				day++
			}
		}
	}
	return match.NewLog(matches)
}

func newTestRouter(t *testing.T) (http.Handler, *cache.Store) {
	t.Helper()

	log := testLog()
	logger := logging.NewNop()
	store := cache.NewStore()
	stats := usecase.NewStatsService(log, store, logger)

	cfg := usecase.DefaultPredictionConfig()
	cfg.Trees = 20
	predictions, err := usecase.NewPredictionService(context.Background(), log, cfg, logger)
	require.NoError(t, err)

	briefings := usecase.NewBriefingService(stats, predictions, usecase.NewQueryParser(log, nil), logger)
	handler := NewHandler(stats, predictions, briefings, store, staticNames{"CSKA": "ЦСКА"}, logger)
	router := NewRouter(handler, logger, RouterConfig{
		SwaggerEnabled:     true,
		CORSAllowedOrigins: []string{"*"},
		AdminToken:         testAdminToken,
	})
	return router, store
}

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       any            `json:"data"`
	Error      map[string]any `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, target string, headers map[string]string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestHandler_ListTeamsAndSeasons(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/teams", nil)
	require.Equal(t, http.StatusOK, status)
	teams, ok := body.Data.([]any)
	require.True(t, ok)
	require.Len(t, teams, 4)
	cska := teams[2].(map[string]any)
	assert.Equal(t, "CSKA", cska["id"])
	assert.Equal(t, "ЦСКА", cska["display_name"])

	status, body = doRequest(t, router, http.MethodGet, "/v1/seasons", nil)
	require.Equal(t, http.StatusOK, status)
	seasons := body.Data.([]any)
	require.Len(t, seasons, 2)
	assert.Equal(t, "2122", seasons[1].(map[string]any)["id"])
	assert.Equal(t, "2021/22", seasons[1].(map[string]any)["label"])
}

func TestHandler_TeamRecord(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/teams/avangard/record?season=2122", nil)
	require.Equal(t, http.StatusOK, status)
	record := body.Data.(map[string]any)
	assert.Equal(t, "Avangard", record["team"])
	assert.EqualValues(t, 18, record["games"])

	status, body = doRequest(t, router, http.MethodGet, "/v1/teams/Nobody/record", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Error["status"])

	status, _ = doRequest(t, router, http.MethodGet, "/v1/teams/Avangard/home?season=21", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_FormAndGames(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/teams/Barys/form?games=5", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, body.Data.(map[string]any)["games"])

	status, body = doRequest(t, router, http.MethodGet, "/v1/teams/Barys/games?limit=3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Data.([]any), 3)

	status, _ = doRequest(t, router, http.MethodGet, "/v1/teams/Barys/games?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_HeadToHead(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/head-to-head?team1=Avangard&team2=cska", nil)
	require.Equal(t, http.StatusOK, status)
	h2h := body.Data.(map[string]any)
	assert.EqualValues(t, 12, h2h["total_games"])
	assert.Equal(t, "CSKA", h2h["team2"])

	status, _ = doRequest(t, router, http.MethodGet, "/v1/head-to-head?team1=Avangard&team2=AVANGARD", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, router, http.MethodGet, "/v1/head-to-head?team1=Avangard", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_StandingsAndLeaders(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/standings?season=2021", nil)
	require.Equal(t, http.StatusOK, status)
	table := body.Data.(map[string]any)["standings"].([]any)
	require.Len(t, table, 4)
	assert.Equal(t, "Avangard", table[0].(map[string]any)["team"])

	status, _ = doRequest(t, router, http.MethodGet, "/v1/standings?season=1920", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doRequest(t, router, http.MethodGet, "/v1/leaders/points?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Data.(map[string]any)["leaders"], 2)

	status, _ = doRequest(t, router, http.MethodGet, "/v1/leaders/assists", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, router, http.MethodGet, "/v1/leaders/winrate?min_games=1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Data.(map[string]any)["leaders"], 4)

	status, _ = doRequest(t, router, http.MethodGet, "/v1/leaders/winrate?min_games=0", nil)
	assert.Equal(t, http.StatusBadRequest, status, "a zero minimum is rejected rather than replaced")
}

func TestHandler_Predictions(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/predictions?home=Avangard&away=Dinamo", nil)
	require.Equal(t, http.StatusOK, status)
	forecast := body.Data.(map[string]any)
	assert.Equal(t, "Avangard", forecast["home_team"])
	assert.Contains(t, forecast, "probabilities")

	status, _ = doRequest(t, router, http.MethodGet, "/v1/predictions?home=Avangard&away=Nobody", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, router, http.MethodGet, "/v1/predictions?home=Barys&away=barys", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, router, http.MethodGet, "/v1/predictions/head-to-head?team1=Barys&team2=CSKA", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Data.(map[string]any)["last_games"], 5)
}

func TestHandler_Briefing(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/v1/briefing?q=Barys+vs+CSKA", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Barys", "CSKA"}, body.Data.(map[string]any)["teams_found"])

	status, _ = doRequest(t, router, http.MethodGet, "/v1/briefing", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_CacheAdmin(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t)
	status, _ := doRequest(t, router, http.MethodGet, "/v1/standings", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, router, http.MethodGet, "/v1/cache/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	auth := map[string]string{adminTokenHeader: testAdminToken}
	status, body := doRequest(t, router, http.MethodGet, "/v1/cache/stats", auth)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body.Data.(map[string]any)["active_entries"])

	status, body = doRequest(t, router, http.MethodDelete, "/v1/cache", auth)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body.Data.(map[string]any)["removed"])
	assert.Zero(t, store.Stats(context.Background()).Total)
}

func TestHandler_SystemRoutes(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Data.(map[string]any)["status"])

	status, _ = doRequest(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, router, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireAdminToken_Unconfigured(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdminToken("", next)

	req := httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil)
	req.Header.Set(adminTokenHeader, "anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
