package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/domain/teamstats"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

type teamDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type seasonDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type standingsDTO struct {
	Season    seasonDTO                `json:"season"`
	Standings []teamstats.StandingsRow `json:"standings"`
}

type leadersDTO struct {
	Metric  teamstats.Metric             `json:"metric"`
	Season  seasonDTO                    `json:"season"`
	Leaders []teamstats.LeaderboardEntry `json:"leaders"`
}

func newSeasonDTO(season match.Season) seasonDTO {
	return seasonDTO{ID: season.String(), Label: season.Label()}
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams := h.statsService.Teams()
	items := make([]teamDTO, 0, len(teams))
	for _, team := range teams {
		items = append(items, teamDTO{ID: team, DisplayName: h.displayName(team)})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	seasons := h.statsService.Seasons()
	items := make([]seasonDTO, 0, len(seasons))
	for _, season := range seasons {
		items = append(items, newSeasonDTO(season))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) TeamRecord(w http.ResponseWriter, r *http.Request) {
	h.teamRecord(w, r, "httpapi.Handler.TeamRecord", h.statsService.TeamRecord)
}

func (h *Handler) HomeRecord(w http.ResponseWriter, r *http.Request) {
	h.teamRecord(w, r, "httpapi.Handler.HomeRecord", h.statsService.HomeRecord)
}

func (h *Handler) AwayRecord(w http.ResponseWriter, r *http.Request) {
	h.teamRecord(w, r, "httpapi.Handler.AwayRecord", h.statsService.AwayRecord)
}

type recordQuery func(ctx context.Context, team string, season match.Season) teamstats.Result[teamstats.TeamRecord]

func (h *Handler) teamRecord(w http.ResponseWriter, r *http.Request, spanName string, query recordQuery) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	req := teamPathRequest{
		Team:   strings.TrimSpace(r.PathValue("team")),
		Season: queryString(r, "season"),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := parseSeasonScope(req.Season)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result := query(ctx, req.Team, season)
	if !result.Found {
		writeError(ctx, w, teamNotFound(req.Team))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result.Value)
}

func (h *Handler) RecentForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecentForm")
	defer span.End()

	games, err := queryInt(r, "games", usecase.DefaultFormGames)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := gamesRequest{Team: strings.TrimSpace(r.PathValue("team")), Games: games}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result := h.statsService.RecentForm(ctx, req.Team, req.Games)
	if !result.Found {
		writeError(ctx, w, teamNotFound(req.Team))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result.Value)
}

func (h *Handler) LastGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LastGames")
	defer span.End()

	limit, err := queryInt(r, "limit", usecase.DefaultFormGames)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := gamesRequest{Team: strings.TrimSpace(r.PathValue("team")), Games: limit}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result := h.statsService.LastGames(ctx, req.Team, req.Games)
	if !result.Found {
		writeError(ctx, w, teamNotFound(req.Team))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result.Value)
}

func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.HeadToHead")
	defer span.End()

	req := pairRequest{
		Team1:  queryString(r, "team1"),
		Team2:  queryString(r, "team2"),
		Season: queryString(r, "season"),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := parseSeasonScope(req.Season)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.checkPair(req.Team1, req.Team2); err != nil {
		writeError(ctx, w, err)
		return
	}

	result := h.statsService.HeadToHead(ctx, req.Team1, req.Team2, season)
	if !result.Found {
		writeError(ctx, w, fmt.Errorf("%w: no meetings between %q and %q", usecase.ErrNotFound, req.Team1, req.Team2))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result.Value)
}

func (h *Handler) SeasonStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeasonStandings")
	defer span.End()

	season, err := parseSeasonScope(queryString(r, "season"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result := h.statsService.SeasonStandings(ctx, season)
	if !result.Found {
		writeError(ctx, w, fmt.Errorf("%w: no matches in season %s", usecase.ErrNotFound, season))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsDTO{
		Season:    newSeasonDTO(season),
		Standings: result.Value,
	})
}

func (h *Handler) Leaders(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaders")
	defer span.End()

	limit, err := queryInt(r, "limit", usecase.DefaultLeaderboardLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	minGames, err := queryInt(r, "min_games", usecase.DefaultMinGames)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := leadersRequest{
		Metric:   strings.ToLower(strings.TrimSpace(r.PathValue("metric"))),
		Season:   queryString(r, "season"),
		Limit:    limit,
		MinGames: minGames,
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := parseSeasonScope(req.Season)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	metric := teamstats.Metric(req.Metric)
	result, err := h.statsService.Leaders(ctx, metric, season, req.MinGames, req.Limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !result.Found {
		writeError(ctx, w, fmt.Errorf("%w: no matches in season %s", usecase.ErrNotFound, season))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leadersDTO{
		Metric:  metric,
		Season:  newSeasonDTO(season),
		Leaders: result.Value,
	})
}

// checkPair resolves both names and rejects a team paired with itself.
func (h *Handler) checkPair(team1, team2 string) error {
	id1, ok := h.statsService.ResolveTeam(team1)
	if !ok {
		return teamNotFound(team1)
	}
	id2, ok := h.statsService.ResolveTeam(team2)
	if !ok {
		return teamNotFound(team2)
	}
	if id1 == id2 {
		return fmt.Errorf("%w: a team cannot be paired with itself", usecase.ErrInvalidInput)
	}
	return nil
}
