package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/domain/prediction"
	"github.com/riskibarqy/league-stats/internal/domain/teamstats"
	"github.com/riskibarqy/league-stats/internal/platform/forest"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/platform/metrics"
)

const meetingsWindow = 5

type PredictionConfig struct {
	Trees        int
	Seed         uint64
	MaxDepth     int
	TestFraction float64
	Workers      int
}

func DefaultPredictionConfig() PredictionConfig {
	return PredictionConfig{
		Trees:        100,
		Seed:         21,
		TestFraction: 0.2,
	}
}

// PredictionService serves outcome probabilities from a forest fitted once
// on the whole match log at construction. Restarting retrains on whatever
// log is loaded at that time.
type PredictionService struct {
	log      *match.Log
	rates    map[string]prediction.TeamRates
	model    *forest.Forest
	accuracy float64
	logger   *logging.Logger
}

func NewPredictionService(ctx context.Context, log *match.Log, cfg PredictionConfig, logger *logging.Logger) (*PredictionService, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewPredictionService")
	defer span.End()

	if logger == nil {
		logger = logging.Default()
	}
	if log == nil || log.Len() == 0 {
		return nil, fmt.Errorf("%w: match log is empty", ErrModelNotReady)
	}
	if cfg.TestFraction < 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("%w: test fraction must be in [0, 1), got %v", ErrInvalidInput, cfg.TestFraction)
	}

	start := time.Now()
	matches := log.Select(match.AllSeasons, nil)
	rates := teamRates(log.Teams(), matches)

	x := make([][]float64, 0, len(matches))
	y := make([]int, 0, len(matches))
	for _, m := range matches {
		row := prediction.NewFeatureRow(rates[m.HomeTeam], rates[m.AwayTeam])
		x = append(x, row[:])
		y = append(y, int(outcomeClass(m)))
	}

	trainIdx, testIdx := forest.StratifiedSplit(y, cfg.TestFraction, cfg.Seed)
	trainX, trainY := pick(x, y, trainIdx)
	testX, testY := pick(x, y, testIdx)

	model, err := forest.Fit(ctx, trainX, trainY, forest.Config{
		Trees:           cfg.Trees,
		Seed:            cfg.Seed,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: 2,
		Classes:         prediction.NumClasses,
		Workers:         cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fit forest: %v", ErrModelNotReady, err)
	}

	accuracy, err := model.Accuracy(testX, testY)
	if err != nil {
		return nil, fmt.Errorf("%w: score forest: %v", ErrModelNotReady, err)
	}
	metrics.UpdateModelAccuracy(accuracy)
	logger.InfoContext(ctx, "prediction model trained",
		"trees", model.Trees(),
		"train_rows", len(trainY),
		"test_rows", len(testY),
		"accuracy", fmt.Sprintf("%.2f%%", accuracy*100),
		"duration", time.Since(start),
	)

	return &PredictionService{
		log:      log,
		rates:    rates,
		model:    model,
		accuracy: accuracy,
		logger:   logger,
	}, nil
}

// Accuracy is the held-out accuracy measured at construction.
func (s *PredictionService) Accuracy() float64 {
	return s.accuracy
}

// TeamRates returns the features computed for team.
func (s *PredictionService) TeamRates(team string) (prediction.TeamRates, bool) {
	id, ok := s.log.ResolveTeam(team)
	if !ok {
		return prediction.TeamRates{}, false
	}
	rates, ok := s.rates[id]
	return rates, ok
}

func (s *PredictionService) PredictMatch(ctx context.Context, homeTeam, awayTeam string) prediction.Result {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PredictMatch")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RecordQuery("predict_match", time.Since(start).Seconds())
	}()

	home, okHome := s.TeamRates(homeTeam)
	away, okAway := s.TeamRates(awayTeam)
	if !okHome || !okAway {
		metrics.RecordPrediction(string(prediction.FailureTeamNotFound))
		return prediction.Result{
			Failure: prediction.FailureTeamNotFound,
			Reason:  "one of the teams was not found in the match log",
		}
	}
	if home.Code == away.Code {
		metrics.RecordPrediction(string(prediction.FailureInvalidPairing))
		return prediction.Result{
			Failure: prediction.FailureInvalidPairing,
			Reason:  "home and away team must be different",
		}
	}

	homeID, _ := s.log.ResolveTeam(homeTeam)
	awayID, _ := s.log.ResolveTeam(awayTeam)

	row := prediction.NewFeatureRow(home, away)
	proba, err := s.model.PredictProba(row[:])
	if err != nil {
		s.logger.ErrorContext(ctx, "predict match failed", "home", homeID, "away", awayID, "error", err)
		metrics.RecordPrediction(string(prediction.FailureModelUnavailable))
		return prediction.Result{
			Failure: prediction.FailureModelUnavailable,
			Reason:  "prediction model could not score the pairing",
		}
	}

	probabilities := prediction.Probabilities{
		AwayWin: proba[prediction.ClassAwayWin],
		HomeWin: proba[prediction.ClassHomeWin],
		Draw:    proba[prediction.ClassDraw],
	}
	outcome := prediction.Class(forest.Argmax(proba))
	metrics.RecordPrediction(outcome.String())

	return prediction.Result{
		Forecast: prediction.Forecast{
			HomeTeam:      homeID,
			AwayTeam:      awayID,
			Outcome:       outcome,
			Result:        outcome.String(),
			Description:   describeOutcome(outcome, homeID, awayID),
			Probabilities: probabilities,
			HomeStats:     home,
			AwayStats:     away,
		},
	}
}

// HeadToHeadStats summarises every meeting of the pair regardless of season.
// Unknown teams or a pair that never met give a zero summary.
func (s *PredictionService) HeadToHeadStats(ctx context.Context, teamA, teamB string) prediction.Meetings {
	_, span := startUsecaseSpan(ctx, "usecase.PredictionService.HeadToHeadStats")
	defer span.End()

	out := prediction.Meetings{
		Team1:     teamA,
		Team2:     teamB,
		LastGames: []teamstats.GameLine{},
	}
	a, okA := s.log.ResolveTeam(teamA)
	b, okB := s.log.ResolveTeam(teamB)
	if !okA || !okB {
		return out
	}
	out.Team1, out.Team2 = a, b
	if a == b {
		return out
	}

	meetings := s.log.Select(match.AllSeasons, func(m match.Match) bool { return m.Between(a, b) })
	if len(meetings) == 0 {
		return out
	}
	sortChronological(meetings)

	out.TotalGames = len(meetings)
	for _, m := range meetings {
		switch m.Winner {
		case a:
			out.Team1Wins++
		case b:
			out.Team2Wins++
		}
	}
	out.Team1WinRate = float64(out.Team1Wins) / float64(out.TotalGames)
	out.Team2WinRate = float64(out.Team2Wins) / float64(out.TotalGames)

	if len(meetings) > meetingsWindow {
		meetings = meetings[len(meetings)-meetingsWindow:]
	}
	for _, m := range meetings {
		out.LastGames = append(out.LastGames, gameLine(m, ""))
	}
	return out
}

// teamRates computes the per-team features. Codes follow the sorted team
// order so they are stable for a given log.
func teamRates(teams []string, matches []match.Match) map[string]prediction.TeamRates {
	type counts struct {
		homeGames, homeWins, awayGames, awayWins int
	}
	byTeam := make(map[string]*counts, len(teams))
	for _, team := range teams {
		byTeam[team] = &counts{}
	}
	for _, m := range matches {
		home, away := byTeam[m.HomeTeam], byTeam[m.AwayTeam]
		home.homeGames++
		away.awayGames++
		if m.HomeWon() {
			home.homeWins++
		} else if m.Winner == m.AwayTeam {
			away.awayWins++
		}
	}

	out := make(map[string]prediction.TeamRates, len(teams))
	for code, team := range teams {
		c := byTeam[team]
		total := c.homeGames + c.awayGames
		out[team] = prediction.TeamRates{
			Code:           code,
			HomeWinRate:    ratio(c.homeWins, c.homeGames),
			AwayWinRate:    ratio(c.awayWins, c.awayGames),
			OverallWinRate: ratio(c.homeWins+c.awayWins, total),
			TotalGames:     total,
		}
	}
	return out
}

func outcomeClass(m match.Match) prediction.Class {
	switch m.Winner {
	case m.HomeTeam:
		return prediction.ClassHomeWin
	case m.AwayTeam:
		return prediction.ClassAwayWin
	default:
		return prediction.ClassDraw
	}
}

func describeOutcome(c prediction.Class, home, away string) string {
	switch c {
	case prediction.ClassHomeWin:
		return home + " win"
	case prediction.ClassAwayWin:
		return away + " win"
	default:
		return "Draw"
	}
}

func pick(x [][]float64, y []int, idx []int) ([][]float64, []int) {
	outX := make([][]float64, 0, len(idx))
	outY := make([]int, 0, len(idx))
	for _, i := range idx {
		outX = append(outX, x[i])
		outY = append(outY, y[i])
	}
	return outX, outY
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
