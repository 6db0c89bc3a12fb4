package match

import (
	"strconv"
	"strings"
	"time"
)

// Decision tells how a match was settled. It changes the points split.
type Decision int

const (
	DecisionRegulation Decision = iota
	DecisionOvertime
	DecisionShootout
)

// ParseDecision maps a raw decision flag to a Decision. Blank means regulation.
// ok is false when the flag is present but not recognised.
func ParseDecision(raw string) (Decision, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "NAN", "REG", "REGULATION":
		return DecisionRegulation, true
	case "AOT", "OT", "OVERTIME":
		return DecisionOvertime, true
	case "PEN", "SO", "SHOOTOUT":
		return DecisionShootout, true
	default:
		return DecisionRegulation, false
	}
}

func (d Decision) String() string {
	switch d {
	case DecisionOvertime:
		return "AOT"
	case DecisionShootout:
		return "PEN"
	default:
		return ""
	}
}

// Extra reports whether the match went past regulation time.
func (d Decision) Extra() bool {
	return d == DecisionOvertime || d == DecisionShootout
}

type Side int

const (
	SideHome Side = iota
	SideAway
)

func (s Side) String() string {
	if s == SideAway {
		return "away"
	}
	return "home"
}

// Match is one row of the match log.
type Match struct {
	HomeTeam  string
	AwayTeam  string
	Winner    string
	HomeGoals *int
	AwayGoals *int
	Decision  Decision
	Season    Season
	// Date is zero when the source row carried no parsable date.
	Date time.Time
}

// SideOf returns the role team played in the match.
func (m Match) SideOf(team string) (Side, bool) {
	switch team {
	case m.HomeTeam:
		return SideHome, true
	case m.AwayTeam:
		return SideAway, true
	default:
		return SideHome, false
	}
}

func (m Match) Involves(team string) bool {
	return team != "" && (m.HomeTeam == team || m.AwayTeam == team)
}

// Between reports whether the match was played by exactly the pair a and b.
func (m Match) Between(a, b string) bool {
	return (m.HomeTeam == a && m.AwayTeam == b) || (m.HomeTeam == b && m.AwayTeam == a)
}

func (m Match) HomeWon() bool {
	return m.Winner == m.HomeTeam
}

func (m Match) Loser() string {
	if m.HomeWon() {
		return m.AwayTeam
	}
	return m.HomeTeam
}

// Score renders "<home goals>:<away goals>"; unknown goals render as "-".
func (m Match) Score() string {
	return formatGoals(m.HomeGoals) + ":" + formatGoals(m.AwayGoals)
}

// Outcome is a match seen from one participant.
type Outcome struct {
	Team         string
	Opponent     string
	Side         Side
	Won          bool
	Decision     Decision
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// From projects the match onto the given side. Every aggregation that needs
// points or role-dependent goals goes through here.
func (m Match) From(side Side) Outcome {
	out := Outcome{Side: side, Decision: m.Decision}
	if side == SideHome {
		out.Team, out.Opponent = m.HomeTeam, m.AwayTeam
		out.GoalsFor, out.GoalsAgainst = goalsOrZero(m.HomeGoals), goalsOrZero(m.AwayGoals)
	} else {
		out.Team, out.Opponent = m.AwayTeam, m.HomeTeam
		out.GoalsFor, out.GoalsAgainst = goalsOrZero(m.AwayGoals), goalsOrZero(m.HomeGoals)
	}
	out.Won = m.Winner == out.Team
	out.Points = Points(out.Won, m.Decision)
	return out
}

// For projects the match onto team. ok is false if team did not play.
func (m Match) For(team string) (Outcome, bool) {
	side, ok := m.SideOf(team)
	if !ok {
		return Outcome{}, false
	}
	return m.From(side), true
}

// Points awards 3/0 for a regulation result and 2/1 once the match went to
// overtime or a shootout, so both sides of one match always sum to 3.
func Points(won bool, decision Decision) int {
	switch {
	case won && !decision.Extra():
		return 3
	case won:
		return 2
	case decision.Extra():
		return 1
	default:
		return 0
	}
}

func goalsOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func formatGoals(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
