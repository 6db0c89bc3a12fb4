package teamstats

import "time"

// Result is the answer to a statistics query. Found is false when the
// requested scope holds no matches, which is distinct from a team that
// played and never won.
type Result[T any] struct {
	Value T
	Found bool
}

func Found[T any](v T) Result[T] {
	return Result[T]{Value: v, Found: true}
}

func NotFound[T any]() Result[T] {
	return Result[T]{}
}

// TeamRecord aggregates one team's results under a filter.
type TeamRecord struct {
	Team             string `json:"team"`
	Games            int    `json:"games"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	WinRate          string `json:"win_rate"`
	GoalsScored      int    `json:"goals_scored"`
	GoalsConceded    int    `json:"goals_conceded"`
	GoalDifference   int    `json:"goal_difference"`
	Points           int    `json:"points"`
	AvgGoalsScored   string `json:"avg_goals_per_game"`
	AvgGoalsConceded string `json:"avg_conceded_per_game"`
}

// GameLine is one played match as listed in head-to-head and form views.
type GameLine struct {
	Date     *time.Time `json:"date,omitempty"`
	HomeTeam string     `json:"home_team"`
	AwayTeam string     `json:"away_team"`
	Opponent string     `json:"opponent,omitempty"`
	IsHome   bool       `json:"is_home"`
	Score    string     `json:"score"`
	Winner   string     `json:"winner"`
	Decision string     `json:"decision,omitempty"`
}

// HeadToHead summarises direct meetings between two teams, oldest first.
type HeadToHead struct {
	Team1        string     `json:"team1"`
	Team2        string     `json:"team2"`
	TotalGames   int        `json:"total_games"`
	Team1Wins    int        `json:"team1_wins"`
	Team2Wins    int        `json:"team2_wins"`
	Team1WinRate string     `json:"team1_winrate"`
	Team2WinRate string     `json:"team2_winrate"`
	Games        []GameLine `json:"games"`
}

// Form is a team's record over its most recent games, newest first.
type Form struct {
	Team      string     `json:"team"`
	Games     int        `json:"games"`
	Wins      int        `json:"wins"`
	Losses    int        `json:"losses"`
	WinRate   string     `json:"win_rate"`
	LastGames []GameLine `json:"last_games"`
}

// StandingsRow represents a league table row for one team.
type StandingsRow struct {
	Rank             int    `json:"place"`
	Team             string `json:"team"`
	Games            int    `json:"games"`
	Wins             int    `json:"wins"`
	OvertimeLosses   int    `json:"ot_losses"`
	RegulationLosses int    `json:"regular_losses"`
	GoalsFor         int    `json:"goals_for"`
	GoalsAgainst     int    `json:"goals_against"`
	GoalDifference   int    `json:"goal_diff"`
	Points           int    `json:"points"`
}

type Metric string

const (
	MetricWins    Metric = "wins"
	MetricPoints  Metric = "points"
	MetricWinRate Metric = "winrate"
	MetricGoals   Metric = "goals"
)

// LeaderboardEntry is one ranked team. Value holds the ranking metric;
// the remaining counters are filled for every metric.
type LeaderboardEntry struct {
	Place   int     `json:"place"`
	Team    string  `json:"team"`
	Value   float64 `json:"value"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Games   int     `json:"total"`
	Points  int     `json:"points"`
	Goals   int     `json:"goals"`
	WinRate float64 `json:"winrate"`
}
