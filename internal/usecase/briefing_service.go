package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/league-stats/internal/domain/prediction"
	"github.com/riskibarqy/league-stats/internal/domain/teamstats"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
)

// Briefing is everything the stats and prediction engines know about a free
// text question, ready for a presentation layer to render.
type Briefing struct {
	Query           string                  `json:"query"`
	Teams           []string                `json:"teams_found"`
	Season          string                  `json:"season"`
	SeasonLabel     string                  `json:"season_label"`
	ShowTable       bool                    `json:"show_table_directly"`
	TeamStats       map[string]TeamBriefing `json:"team_stats"`
	HeadToHead      *teamstats.HeadToHead   `json:"h2h_stats,omitempty"`
	Prediction      *prediction.Forecast    `json:"prediction,omitempty"`
	PredictionError string                  `json:"prediction_error,omitempty"`
	SeasonStats     *SeasonBriefing         `json:"season_stats,omitempty"`
}

type TeamBriefing struct {
	Overall *teamstats.TeamRecord `json:"overall,omitempty"`
	Home    *teamstats.TeamRecord `json:"home,omitempty"`
	Away    *teamstats.TeamRecord `json:"away,omitempty"`
	Form    *teamstats.Form       `json:"form,omitempty"`
}

type SeasonBriefing struct {
	Standings  []teamstats.StandingsRow     `json:"table"`
	TopWins    []teamstats.LeaderboardEntry `json:"top_winners"`
	TopPoints  []teamstats.LeaderboardEntry `json:"top_points"`
	TopGoals   []teamstats.LeaderboardEntry `json:"top_scorers"`
	TopWinRate []teamstats.LeaderboardEntry `json:"top_winrate"`
}

type BriefingService struct {
	stats       *StatsService
	predictions *PredictionService
	parser      *QueryParser
	logger      *logging.Logger
}

func NewBriefingService(stats *StatsService, predictions *PredictionService, parser *QueryParser, logger *logging.Logger) *BriefingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BriefingService{
		stats:       stats,
		predictions: predictions,
		parser:      parser,
		logger:      logger,
	}
}

// Brief gathers team, pairing and season statistics for the question.
// Lookups run concurrently and share the stats cache.
func (s *BriefingService) Brief(ctx context.Context, text string) (Briefing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BriefingService.Brief")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return Briefing{}, fmt.Errorf("%w: query text is required", ErrInvalidInput)
	}

	parsed := s.parser.Parse(text)
	season := parsed.Season
	out := Briefing{
		Query:       text,
		Teams:       parsed.Teams,
		Season:      season.String(),
		SeasonLabel: season.Label(),
		ShowTable:   parsed.ShowTable,
		TeamStats:   make(map[string]TeamBriefing, len(parsed.Teams)),
	}

	teams := make([]TeamBriefing, len(parsed.Teams))
	var wg conc.WaitGroup
	for i, team := range parsed.Teams {
		wg.Go(func() {
			teams[i] = TeamBriefing{
				Overall: valueOrNil(s.stats.TeamRecord(ctx, team, season)),
				Home:    valueOrNil(s.stats.HomeRecord(ctx, team, season)),
				Away:    valueOrNil(s.stats.AwayRecord(ctx, team, season)),
				Form:    valueOrNil(s.stats.RecentForm(ctx, team, DefaultFormGames)),
			}
		})
	}

	if len(parsed.Teams) >= 2 {
		home, away := parsed.Teams[0], parsed.Teams[1]
		wg.Go(func() {
			out.HeadToHead = valueOrNil(s.stats.HeadToHead(ctx, home, away, season))
		})
		if s.predictions != nil {
			wg.Go(func() {
				result := s.predictions.PredictMatch(ctx, home, away)
				if !result.OK() {
					out.PredictionError = result.Reason
					return
				}
				out.Prediction = &result.Forecast
			})
		}
	}

	if parsed.SeasonFound || parsed.ShowTable {
		out.SeasonStats = &SeasonBriefing{}
		board := out.SeasonStats
		wg.Go(func() {
			board.Standings = s.stats.SeasonStandings(ctx, season).Value
		})
		wg.Go(func() {
			board.TopWins = s.stats.TopByWins(ctx, season, DefaultLeaderboardLimit).Value
		})
		wg.Go(func() {
			board.TopPoints = s.stats.TopByPoints(ctx, season, DefaultLeaderboardLimit).Value
		})
		wg.Go(func() {
			board.TopGoals = s.stats.TopByGoals(ctx, season, DefaultLeaderboardLimit).Value
		})
		wg.Go(func() {
			board.TopWinRate = s.stats.TopByWinRate(ctx, season, DefaultMinGames, DefaultLeaderboardLimit).Value
		})
	}

	wg.Wait()

	for i, team := range parsed.Teams {
		out.TeamStats[team] = teams[i]
	}
	s.logger.DebugContext(ctx, "briefing assembled",
		"teams", out.Teams,
		"season", out.Season,
		"show_table", out.ShowTable,
	)
	return out, nil
}

func valueOrNil[T any](result teamstats.Result[T]) *T {
	if !result.Found {
		return nil
	}
	v := result.Value
	return &v
}
