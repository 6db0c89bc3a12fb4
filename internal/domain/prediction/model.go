package prediction

import "github.com/riskibarqy/league-stats/internal/domain/teamstats"

// Class is an outcome label of the classifier. Draw can never be observed in
// a log where every match has a winner, yet it stays part of the output.
type Class int

const (
	ClassAwayWin Class = iota
	ClassHomeWin
	ClassDraw
)

const NumClasses = 3

func (c Class) String() string {
	switch c {
	case ClassAwayWin:
		return "away_win"
	case ClassHomeWin:
		return "home_win"
	default:
		return "draw"
	}
}

// TeamRates are the per-team features derived from the full match log.
type TeamRates struct {
	Code           int     `json:"code"`
	HomeWinRate    float64 `json:"home_win_rate"`
	AwayWinRate    float64 `json:"away_win_rate"`
	OverallWinRate float64 `json:"overall_win_rate"`
	TotalGames     int     `json:"total_games"`
}

// FeatureRow is the six value encoding of a home/away pairing.
type FeatureRow [6]float64

func NewFeatureRow(home, away TeamRates) FeatureRow {
	return FeatureRow{
		float64(home.Code),
		float64(away.Code),
		home.HomeWinRate,
		away.AwayWinRate,
		home.OverallWinRate,
		away.OverallWinRate,
	}
}

type Probabilities struct {
	HomeWin float64 `json:"home_win"`
	AwayWin float64 `json:"away_win"`
	Draw    float64 `json:"draw"`
}

func (p Probabilities) Sum() float64 {
	return p.HomeWin + p.AwayWin + p.Draw
}

type Forecast struct {
	HomeTeam      string        `json:"home_team"`
	AwayTeam      string        `json:"away_team"`
	Outcome       Class         `json:"-"`
	Result        string        `json:"result"`
	Description   string        `json:"description"`
	Probabilities Probabilities `json:"probabilities"`
	HomeStats     TeamRates     `json:"home_stats"`
	AwayStats     TeamRates     `json:"away_stats"`
}

type Failure string

const (
	FailureNone           Failure = ""
	FailureTeamNotFound   Failure = "team_not_found"
	FailureInvalidPairing Failure = "invalid_pairing"
	// FailureModelUnavailable means the fitted model rejected the features.
	FailureModelUnavailable Failure = "model_unavailable"
)

// Result carries either a forecast or the reason one could not be produced.
type Result struct {
	Forecast Forecast
	Failure  Failure
	Reason   string
}

func (r Result) OK() bool {
	return r.Failure == FailureNone
}

// Meetings is the season independent head-to-head summary served next to
// predictions. LastGames holds at most five meetings, oldest first.
type Meetings struct {
	Team1        string               `json:"team1"`
	Team2        string               `json:"team2"`
	TotalGames   int                  `json:"total_games"`
	Team1Wins    int                  `json:"team1_wins"`
	Team2Wins    int                  `json:"team2_wins"`
	Team1WinRate float64              `json:"team1_winrate"`
	Team2WinRate float64              `json:"team2_winrate"`
	LastGames    []teamstats.GameLine `json:"last_games"`
}
