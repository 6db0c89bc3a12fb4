package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

func goalsPtr(n int) *int {
	return &n
}

func mustDate(raw string) time.Time {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return t
}

// threeMatchLog is the reference scenario: TeamA beats TeamB 4:2, TeamB beats
// TeamA 3:2 in overtime (both season 2021) and TeamA beats TeamC 5:1 in 2022.
func threeMatchLog() *match.Log {
	return match.NewLog([]match.Match{
		{
			HomeTeam: "TeamA", AwayTeam: "TeamB", Winner: "TeamA",
			HomeGoals: goalsPtr(4), AwayGoals: goalsPtr(2),
			Season: 2021, Date: mustDate("2020-10-01"),
		},
		{
			HomeTeam: "TeamB", AwayTeam: "TeamA", Winner: "TeamB",
			HomeGoals: goalsPtr(3), AwayGoals: goalsPtr(2),
			Decision: match.DecisionOvertime,
			Season:   2021, Date: mustDate("2020-11-01"),
		},
		{
			HomeTeam: "TeamA", AwayTeam: "TeamC", Winner: "TeamA",
			HomeGoals: goalsPtr(5), AwayGoals: goalsPtr(1),
			Season: 2022, Date: mustDate("2021-10-01"),
		},
	})
}

// roundRobinLog plays every ordered pairing of teams once per round across
// two seasons. Lower indexed teams win most of their games.
func roundRobinLog(teams []string, rounds int) *match.Log {
	start := mustDate("2020-09-01")
	matches := make([]match.Match, 0, rounds*len(teams)*len(teams))
	day := 0
	for r := 0; r < rounds; r++ {
		season := match.Season(2021)
		if r >= rounds/2 {
			season = 2122
		}
		for i, home := range teams {
			for j, away := range teams {
				if i == j {
					continue
				}
				winner := home
				if j < i && (r+i+j)%4 != 0 {
					winner = away
				}
				decision := match.DecisionRegulation
				if (r+i+j)%5 == 0 {
					decision = match.DecisionShootout
				}
				hg, ag := 3, 1
				if winner == away {
					hg, ag = 1, 3
				}
				matches = append(matches, match.Match{
					HomeTeam:  home,
					AwayTeam:  away,
					Winner:    winner,
					HomeGoals: goalsPtr(hg),
					AwayGoals: goalsPtr(ag),
					Decision:  decision,
					Season:    season,
					Date:      start.AddDate(0, 0, day),
				})
				day++
			}
		}
	}
	return match.NewLog(matches)
}

func teamNames(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("Team %c", 'A'+i))
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
