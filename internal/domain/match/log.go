package match

import (
	"sort"
	"strings"
)

// Log is the immutable in-memory match table. It is safe for concurrent reads.
type Log struct {
	matches   []Match
	teams     []string
	seasons   []Season
	canonical map[string]string
}

// NewLog builds a Log over a private copy of matches. Team names that differ
// only in case or whitespace are rewritten to the first spelling seen.
func NewLog(matches []Match) *Log {
	items := make([]Match, len(matches))
	copy(items, matches)

	canonical := make(map[string]string)
	resolve := func(name string) string {
		key := FoldTeam(name)
		if id, ok := canonical[key]; ok {
			return id
		}
		canonical[key] = name
		return name
	}

	seasonSet := make(map[Season]struct{})
	for i := range items {
		m := &items[i]
		m.HomeTeam = resolve(m.HomeTeam)
		m.AwayTeam = resolve(m.AwayTeam)
		if id, ok := canonical[FoldTeam(m.Winner)]; ok && m.Winner != "" {
			m.Winner = id
		}
		seasonSet[m.Season] = struct{}{}
	}

	teams := make([]string, 0, len(canonical))
	for _, name := range canonical {
		teams = append(teams, name)
	}
	sort.Strings(teams)

	seasons := make([]Season, 0, len(seasonSet))
	for s := range seasonSet {
		seasons = append(seasons, s)
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i] < seasons[j] })

	return &Log{
		matches:   items,
		teams:     teams,
		seasons:   seasons,
		canonical: canonical,
	}
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.matches)
}

// Teams returns distinct team ids, sorted.
func (l *Log) Teams() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.teams))
	copy(out, l.teams)
	return out
}

// Seasons returns distinct seasons, ascending.
func (l *Log) Seasons() []Season {
	if l == nil {
		return nil
	}
	out := make([]Season, len(l.seasons))
	copy(out, l.seasons)
	return out
}

func (l *Log) LatestSeason() (Season, bool) {
	if l == nil || len(l.seasons) == 0 {
		return 0, false
	}
	return l.seasons[len(l.seasons)-1], true
}

// ResolveTeam maps a user supplied name onto the canonical team id,
// ignoring case and surrounding or repeated whitespace.
func (l *Log) ResolveTeam(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	id, ok := l.canonical[FoldTeam(name)]
	return id, ok
}

// Select returns, in log order, the matches inside scope accepted by keep.
// A nil keep accepts every match in scope.
func (l *Log) Select(scope Season, keep func(Match) bool) []Match {
	if l == nil {
		return nil
	}
	var out []Match
	for _, m := range l.matches {
		if !scope.Contains(m.Season) {
			continue
		}
		if keep != nil && !keep(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// NormalizeTeam strips byte order marks and collapses whitespace.
func NormalizeTeam(raw string) string {
	return strings.Join(strings.Fields(stripBOM(raw)), " ")
}

// FoldTeam is the case-insensitive lookup key for a team name.
func FoldTeam(raw string) string {
	return strings.ToLower(NormalizeTeam(raw))
}

func stripBOM(raw string) string {
	return strings.ReplaceAll(raw, "\ufeff", "")
}
