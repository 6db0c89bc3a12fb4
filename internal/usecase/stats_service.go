package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/domain/teamstats"
	"github.com/riskibarqy/league-stats/internal/platform/cache"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/platform/metrics"
)

const (
	RecordTTL      = 30 * time.Minute
	HeadToHeadTTL  = 30 * time.Minute
	LeaderboardTTL = 30 * time.Minute
	StandingsTTL   = 60 * time.Minute
	FormTTL        = 10 * time.Minute

	DefaultFormGames        = 10
	DefaultLeaderboardLimit = 10
	DefaultMinGames         = 10
)

// StatsService answers aggregate queries over the match log. Results are
// memoised in the store; a nil store computes every call. Cached values are
// shared between callers and must be treated as read-only.
type StatsService struct {
	log    *match.Log
	store  *cache.Store
	logger *logging.Logger
}

func NewStatsService(log *match.Log, store *cache.Store, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		log:    log,
		store:  store,
		logger: logger,
	}
}

func (s *StatsService) Teams() []string {
	return s.log.Teams()
}

func (s *StatsService) Seasons() []match.Season {
	return s.log.Seasons()
}

// ResolveTeam maps a caller supplied name onto the canonical team id.
func (s *StatsService) ResolveTeam(name string) (string, bool) {
	return s.log.ResolveTeam(name)
}

func (s *StatsService) TeamRecord(ctx context.Context, team string, season match.Season) teamstats.Result[teamstats.TeamRecord] {
	return s.venueRecord(ctx, "team_record", team, season, nil)
}

func (s *StatsService) HomeRecord(ctx context.Context, team string, season match.Season) teamstats.Result[teamstats.TeamRecord] {
	home := match.SideHome
	return s.venueRecord(ctx, "home_record", team, season, &home)
}

func (s *StatsService) AwayRecord(ctx context.Context, team string, season match.Season) teamstats.Result[teamstats.TeamRecord] {
	away := match.SideAway
	return s.venueRecord(ctx, "away_record", team, season, &away)
}

func (s *StatsService) venueRecord(ctx context.Context, op, team string, season match.Season, side *match.Side) teamstats.Result[teamstats.TeamRecord] {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService."+op)
	defer span.End()

	id, ok := s.log.ResolveTeam(team)
	if !ok {
		return teamstats.NotFound[teamstats.TeamRecord]()
	}
	span.SetAttributes(attribute.String("team", id), attribute.String("season", season.String()))

	return cached(ctx, s, op, RecordTTL, func() teamstats.Result[teamstats.TeamRecord] {
		var tally recordTally
		for _, m := range s.log.Select(season, nil) {
			outcome, played := m.For(id)
			if !played || (side != nil && outcome.Side != *side) {
				continue
			}
			tally.add(outcome)
		}
		if tally.games == 0 {
			return teamstats.NotFound[teamstats.TeamRecord]()
		}
		return teamstats.Found(tally.record(id))
	}, id, season)
}

func (s *StatsService) HeadToHead(ctx context.Context, teamA, teamB string, season match.Season) teamstats.Result[teamstats.HeadToHead] {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.head_to_head")
	defer span.End()

	a, okA := s.log.ResolveTeam(teamA)
	b, okB := s.log.ResolveTeam(teamB)
	if !okA || !okB || a == b {
		return teamstats.NotFound[teamstats.HeadToHead]()
	}

	return cached(ctx, s, "head_to_head", HeadToHeadTTL, func() teamstats.Result[teamstats.HeadToHead] {
		meetings := s.log.Select(season, func(m match.Match) bool { return m.Between(a, b) })
		if len(meetings) == 0 {
			return teamstats.NotFound[teamstats.HeadToHead]()
		}
		sortChronological(meetings)

		out := teamstats.HeadToHead{
			Team1:      a,
			Team2:      b,
			TotalGames: len(meetings),
			Games:      make([]teamstats.GameLine, 0, len(meetings)),
		}
		for _, m := range meetings {
			switch m.Winner {
			case a:
				out.Team1Wins++
			case b:
				out.Team2Wins++
			}
			out.Games = append(out.Games, gameLine(m, ""))
		}
		out.Team1WinRate = percent(out.Team1Wins, out.TotalGames)
		out.Team2WinRate = percent(out.Team2Wins, out.TotalGames)
		return teamstats.Found(out)
	}, a, b, season)
}

// LastGames returns up to n of the team's matches across all seasons,
// newest first.
func (s *StatsService) LastGames(ctx context.Context, team string, n int) teamstats.Result[[]teamstats.GameLine] {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.last_games")
	defer span.End()

	id, ok := s.log.ResolveTeam(team)
	if !ok {
		return teamstats.NotFound[[]teamstats.GameLine]()
	}
	if n <= 0 {
		n = DefaultFormGames
	}

	return cached(ctx, s, "last_games", FormTTL, func() teamstats.Result[[]teamstats.GameLine] {
		games := s.log.Select(match.AllSeasons, func(m match.Match) bool { return m.Involves(id) })
		if len(games) == 0 {
			return teamstats.NotFound[[]teamstats.GameLine]()
		}
		sortNewestFirst(games)
		if len(games) > n {
			games = games[:n]
		}

		lines := make([]teamstats.GameLine, 0, len(games))
		for _, m := range games {
			lines = append(lines, gameLine(m, id))
		}
		return teamstats.Found(lines)
	}, id, n)
}

// RecentForm aggregates the team's last n games. Fewer available games
// yield a shorter window.
func (s *StatsService) RecentForm(ctx context.Context, team string, n int) teamstats.Result[teamstats.Form] {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.recent_form")
	defer span.End()

	id, ok := s.log.ResolveTeam(team)
	if !ok {
		return teamstats.NotFound[teamstats.Form]()
	}
	if n <= 0 {
		n = DefaultFormGames
	}

	return cached(ctx, s, "recent_form", FormTTL, func() teamstats.Result[teamstats.Form] {
		last := s.LastGames(ctx, id, n)
		if !last.Found {
			return teamstats.NotFound[teamstats.Form]()
		}

		form := teamstats.Form{
			Team:      id,
			Games:     len(last.Value),
			LastGames: last.Value,
		}
		for _, line := range last.Value {
			if line.Winner == id {
				form.Wins++
			}
		}
		form.Losses = form.Games - form.Wins
		form.WinRate = percent(form.Wins, form.Games)
		return teamstats.Found(form)
	}, id, n)
}

// SeasonStandings ranks every team in scope by points. Equal points keep
// alphabetical order.
func (s *StatsService) SeasonStandings(ctx context.Context, season match.Season) teamstats.Result[[]teamstats.StandingsRow] {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.season_standings")
	defer span.End()

	return cached(ctx, s, "season_standings", StandingsTTL, func() teamstats.Result[[]teamstats.StandingsRow] {
		tallies := s.tallies(season)
		if len(tallies) == 0 {
			return teamstats.NotFound[[]teamstats.StandingsRow]()
		}

		rows := make([]teamstats.StandingsRow, 0, len(tallies))
		for _, t := range tallies {
			rows = append(rows, teamstats.StandingsRow{
				Team:             t.team,
				Games:            t.games,
				Wins:             t.wins,
				OvertimeLosses:   t.extraLosses,
				RegulationLosses: t.losses() - t.extraLosses,
				GoalsFor:         t.goalsFor,
				GoalsAgainst:     t.goalsAgainst,
				GoalDifference:   t.goalsFor - t.goalsAgainst,
				Points:           t.points,
			})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Points > rows[j].Points
		})
		for i := range rows {
			rows[i].Rank = i + 1
		}
		return teamstats.Found(rows)
	}, season)
}

func (s *StatsService) TopByWins(ctx context.Context, season match.Season, limit int) teamstats.Result[[]teamstats.LeaderboardEntry] {
	return s.leaderboard(ctx, teamstats.MetricWins, season, 0, limit)
}

func (s *StatsService) TopByPoints(ctx context.Context, season match.Season, limit int) teamstats.Result[[]teamstats.LeaderboardEntry] {
	return s.leaderboard(ctx, teamstats.MetricPoints, season, 0, limit)
}

// TopByWinRate ranks teams that played at least minGames in scope. A
// non-positive minGames means DefaultMinGames.
func (s *StatsService) TopByWinRate(ctx context.Context, season match.Season, minGames, limit int) teamstats.Result[[]teamstats.LeaderboardEntry] {
	if minGames <= 0 {
		minGames = DefaultMinGames
	}
	return s.leaderboard(ctx, teamstats.MetricWinRate, season, minGames, limit)
}

func (s *StatsService) TopByGoals(ctx context.Context, season match.Season, limit int) teamstats.Result[[]teamstats.LeaderboardEntry] {
	return s.leaderboard(ctx, teamstats.MetricGoals, season, 0, limit)
}

// Leaders dispatches to the leaderboard for metric. minGames only applies
// to the win rate board.
func (s *StatsService) Leaders(ctx context.Context, metric teamstats.Metric, season match.Season, minGames, limit int) (teamstats.Result[[]teamstats.LeaderboardEntry], error) {
	switch metric {
	case teamstats.MetricWins:
		return s.TopByWins(ctx, season, limit), nil
	case teamstats.MetricPoints:
		return s.TopByPoints(ctx, season, limit), nil
	case teamstats.MetricWinRate:
		return s.TopByWinRate(ctx, season, minGames, limit), nil
	case teamstats.MetricGoals:
		return s.TopByGoals(ctx, season, limit), nil
	default:
		return teamstats.NotFound[[]teamstats.LeaderboardEntry](), fmt.Errorf("%w: unknown leaderboard metric %q", ErrInvalidInput, metric)
	}
}

func (s *StatsService) leaderboard(ctx context.Context, metric teamstats.Metric, season match.Season, minGames, limit int) teamstats.Result[[]teamstats.LeaderboardEntry] {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.top_by_"+string(metric))
	defer span.End()

	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	op := "top_by_" + string(metric)
	return cached(ctx, s, op, LeaderboardTTL, func() teamstats.Result[[]teamstats.LeaderboardEntry] {
		tallies := s.tallies(season)
		if len(tallies) == 0 {
			return teamstats.NotFound[[]teamstats.LeaderboardEntry]()
		}

		entries := make([]teamstats.LeaderboardEntry, 0, len(tallies))
		for _, t := range tallies {
			if t.games < minGames {
				continue
			}
			entry := teamstats.LeaderboardEntry{
				Team:    t.team,
				Wins:    t.wins,
				Losses:  t.losses(),
				Games:   t.games,
				Points:  t.points,
				Goals:   t.goalsFor,
				WinRate: roundOne(float64(t.wins) / float64(t.games) * 100),
			}
			switch metric {
			case teamstats.MetricWins:
				entry.Value = float64(entry.Wins)
			case teamstats.MetricPoints:
				entry.Value = float64(entry.Points)
			case teamstats.MetricWinRate:
				entry.Value = entry.WinRate
			case teamstats.MetricGoals:
				entry.Value = float64(entry.Goals)
			}
			entries = append(entries, entry)
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Value > entries[j].Value
		})
		if len(entries) > limit {
			entries = entries[:limit]
		}
		for i := range entries {
			entries[i].Place = i + 1
		}
		return teamstats.Found(entries)
	}, season, minGames, limit)
}

// tallies aggregates every team in scope in one pass, sorted by team id.
func (s *StatsService) tallies(season match.Season) []*recordTally {
	byTeam := make(map[string]*recordTally)
	get := func(team string) *recordTally {
		t, ok := byTeam[team]
		if !ok {
			t = &recordTally{team: team}
			byTeam[team] = t
		}
		return t
	}

	for _, m := range s.log.Select(season, nil) {
		home := m.From(match.SideHome)
		away := m.From(match.SideAway)
		get(home.Team).add(home)
		get(away.Team).add(away)
	}

	out := make([]*recordTally, 0, len(byTeam))
	for _, t := range byTeam {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].team < out[j].team })
	return out
}

type recordTally struct {
	team         string
	games        int
	wins         int
	extraLosses  int
	goalsFor     int
	goalsAgainst int
	points       int
}

func (t *recordTally) add(o match.Outcome) {
	t.games++
	if o.Won {
		t.wins++
	} else if o.Decision.Extra() {
		t.extraLosses++
	}
	t.goalsFor += o.GoalsFor
	t.goalsAgainst += o.GoalsAgainst
	t.points += o.Points
}

func (t *recordTally) losses() int {
	return t.games - t.wins
}

func (t *recordTally) record(team string) teamstats.TeamRecord {
	return teamstats.TeamRecord{
		Team:             team,
		Games:            t.games,
		Wins:             t.wins,
		Losses:           t.losses(),
		WinRate:          percent(t.wins, t.games),
		GoalsScored:      t.goalsFor,
		GoalsConceded:    t.goalsAgainst,
		GoalDifference:   t.goalsFor - t.goalsAgainst,
		Points:           t.points,
		AvgGoalsScored:   average(t.goalsFor, t.games),
		AvgGoalsConceded: average(t.goalsAgainst, t.games),
	}
}

// cached runs compute through the result cache under op and args.
func cached[T any](ctx context.Context, s *StatsService, op string, ttl time.Duration, compute func() T, args ...any) T {
	start := time.Now()
	defer func() {
		metrics.RecordQuery(op, time.Since(start).Seconds())
	}()

	value, hit, err := cache.Load(ctx, s.store, cache.Key(op, args...), ttl, func(context.Context) (T, error) {
		return compute(), nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "stats query failed", "operation", op, "error", err)
		var zero T
		return zero
	}
	if s.store != nil {
		metrics.RecordCacheLookup(op, hit)
	}
	return value
}

func gameLine(m match.Match, perspective string) teamstats.GameLine {
	line := teamstats.GameLine{
		HomeTeam: m.HomeTeam,
		AwayTeam: m.AwayTeam,
		Score:    m.Score(),
		Winner:   m.Winner,
		Decision: m.Decision.String(),
	}
	if !m.Date.IsZero() {
		date := m.Date
		line.Date = &date
	}
	if perspective != "" {
		if side, ok := m.SideOf(perspective); ok {
			line.IsHome = side == match.SideHome
			line.Opponent = m.From(side).Opponent
		}
	}
	return line
}

// sortChronological orders matches oldest first. Undated matches count as
// oldest and equal dates keep log order.
func sortChronological(matches []match.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Date, matches[j].Date
		if a.IsZero() != b.IsZero() {
			return a.IsZero()
		}
		return a.Before(b)
	})
}

// sortNewestFirst orders matches by date descending. Undated matches go last
// and equal dates put the later log row first.
func sortNewestFirst(matches []match.Match) {
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Date, matches[j].Date
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func average(sum, games int) string {
	if games == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(games))
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
