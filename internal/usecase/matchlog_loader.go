package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/platform/metrics"
)

const (
	columnHomeTeam  = "home_team"
	columnAwayTeam  = "away_team"
	columnWinner    = "winner"
	columnHomeGoals = "home_goals"
	columnAwayGoals = "away_goals"
	columnDecision  = "decision_flag"
	columnSeason    = "season"
	columnDate      = "date"
)

var requiredColumns = []string{columnHomeTeam, columnAwayTeam, columnSeason, columnHomeGoals, columnAwayGoals}

// columnAliases maps folded header names onto canonical columns. Headers are
// folded by lowercasing and dropping spaces, underscores and dashes.
var columnAliases = map[string]string{
	"hometeam":     columnHomeTeam,
	"awayteam":     columnAwayTeam,
	"winner":       columnWinner,
	"hg":           columnHomeGoals,
	"homegoals":    columnHomeGoals,
	"ag":           columnAwayGoals,
	"awaygoals":    columnAwayGoals,
	"add":          columnDecision,
	"decision":     columnDecision,
	"decisionflag": columnDecision,
	"season":       columnSeason,
	"seasonid":     columnSeason,
	"date":         columnDate,
	"gamedate":     columnDate,
	"matchdate":    columnDate,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02.01.2006",
	"02.01.2006 15:04",
	"2006/01/02",
	"01/02/2006",
}

const maxLoggedSamples = 5

// LoadReport describes what the loader kept and why rows were dropped.
type LoadReport struct {
	Origin           string   `json:"origin"`
	RowsBefore       int      `json:"rows_before"`
	RowsAfter        int      `json:"rows_after"`
	BadSeason        int      `json:"dropped_bad_season"`
	BadTeams         int      `json:"dropped_bad_teams"`
	BadWinner        int      `json:"dropped_bad_winner"`
	MissingGoals     int      `json:"missing_goals"`
	UnknownDecisions int      `json:"unknown_decisions"`
	BadDates         int      `json:"unparsed_dates"`
	HomeOnly         []string `json:"home_only_teams,omitempty"`
	AwayOnly         []string `json:"away_only_teams,omitempty"`
}

func (r LoadReport) Dropped() int {
	return r.RowsBefore - r.RowsAfter
}

// LoadMatchLog reads the snapshot from source and builds the cleaned, immutable
// match log. Only a failing source or a missing required column is an error;
// row level problems are counted, logged and skipped.
func LoadMatchLog(ctx context.Context, source match.Source, logger *logging.Logger) (*match.Log, LoadReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadMatchLog")
	defer span.End()

	if source == nil {
		return nil, LoadReport{}, fmt.Errorf("%w: match source is not configured", ErrLoadFailed)
	}

	table, err := source.ReadTable(ctx)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("%w: %w", ErrLoadFailed, crerr.Wrap(err, "read match table"))
	}

	return BuildMatchLog(ctx, table, logger)
}

// BuildMatchLog cleans an already read table.
func BuildMatchLog(ctx context.Context, table match.Table, logger *logging.Logger) (*match.Log, LoadReport, error) {
	if logger == nil {
		logger = logging.Default()
	}

	report := LoadReport{
		Origin:     table.Origin,
		RowsBefore: len(table.Rows),
	}

	columns, err := resolveColumns(table.Columns)
	if err != nil {
		return nil, report, err
	}

	cleaner := &rowCleaner{
		columns:   columns,
		canonical: make(map[string]string),
		report:    &report,
	}
	matches := make([]match.Match, 0, len(table.Rows))
	for i, row := range table.Rows {
		m, ok := cleaner.clean(i, row)
		if ok {
			matches = append(matches, m)
		}
	}
	report.RowsAfter = len(matches)
	report.HomeOnly, report.AwayOnly = teamUniverseMismatch(matches)

	cleaner.logDrops(ctx, logger)
	if len(report.HomeOnly) > 0 || len(report.AwayOnly) > 0 {
		logger.WarnContext(ctx, "home and away team sets differ",
			"origin", report.Origin,
			"home_only", report.HomeOnly,
			"away_only", report.AwayOnly,
		)
	}

	log := match.NewLog(matches)
	metrics.UpdateMatchLogRows(report.RowsBefore, report.RowsAfter)
	logger.InfoContext(ctx, "match log loaded",
		"origin", report.Origin,
		"rows_before", report.RowsBefore,
		"rows_after", report.RowsAfter,
		"teams", len(log.Teams()),
		"seasons", len(log.Seasons()),
	)

	return log, report, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, raw := range header {
		name, ok := columnAliases[foldHeader(raw)]
		if !ok {
			continue
		}
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	missing := make([]string, 0)
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrLoadFailed, strings.Join(missing, ", "))
	}
	return columns, nil
}

func foldHeader(raw string) string {
	value := strings.ToLower(match.NormalizeTeam(raw))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(value)
}

type rowCleaner struct {
	columns   map[string]int
	canonical map[string]string
	report    *LoadReport

	badSeasons []string
	badWinners []string
	decisions  []string
}

func (c *rowCleaner) cell(row []string, column string) string {
	idx, ok := c.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// team returns the canonical spelling of a team name. The first spelling
// seen for a case-folded name wins.
func (c *rowCleaner) team(raw string) string {
	name := match.NormalizeTeam(raw)
	if name == "" {
		return ""
	}
	key := strings.ToLower(name)
	if canonical, ok := c.canonical[key]; ok {
		return canonical
	}
	c.canonical[key] = name
	return name
}

func (c *rowCleaner) clean(index int, row []string) (match.Match, bool) {
	rawSeason := match.NormalizeTeam(c.cell(row, columnSeason))
	season, ok := match.ParseSeason(rawSeason)
	if !ok {
		c.report.BadSeason++
		c.badSeasons = appendSample(c.badSeasons, "row "+strconv.Itoa(index+1)+": "+strconv.Quote(rawSeason))
		return match.Match{}, false
	}

	home := c.team(c.cell(row, columnHomeTeam))
	away := c.team(c.cell(row, columnAwayTeam))
	if home == "" || away == "" || home == away {
		c.report.BadTeams++
		return match.Match{}, false
	}

	m := match.Match{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: parseGoals(c.cell(row, columnHomeGoals)),
		AwayGoals: parseGoals(c.cell(row, columnAwayGoals)),
		Season:    season,
	}
	if m.HomeGoals == nil || m.AwayGoals == nil {
		c.report.MissingGoals++
	}

	rawDecision := match.NormalizeTeam(c.cell(row, columnDecision))
	decision, known := match.ParseDecision(rawDecision)
	if !known {
		c.report.UnknownDecisions++
		c.decisions = appendSample(c.decisions, rawDecision)
	}
	m.Decision = decision

	rawDate := match.NormalizeTeam(c.cell(row, columnDate))
	if date, ok := parseDate(rawDate); ok {
		m.Date = date
	} else if rawDate != "" {
		c.report.BadDates++
	}

	winner, ok := c.winner(m, c.cell(row, columnWinner))
	if !ok {
		c.report.BadWinner++
		c.badWinners = appendSample(c.badWinners, "row "+strconv.Itoa(index+1)+": "+m.HomeTeam+" vs "+m.AwayTeam)
		return match.Match{}, false
	}
	m.Winner = winner

	return m, true
}

// winner resolves the winner column against the participants. A blank winner
// is derived from the score when both goals are known and differ.
func (c *rowCleaner) winner(m match.Match, raw string) (string, bool) {
	name := match.NormalizeTeam(raw)
	if name == "" {
		if m.HomeGoals == nil || m.AwayGoals == nil || *m.HomeGoals == *m.AwayGoals {
			return "", false
		}
		if *m.HomeGoals > *m.AwayGoals {
			return m.HomeTeam, true
		}
		return m.AwayTeam, true
	}

	switch strings.ToLower(name) {
	case strings.ToLower(m.HomeTeam):
		return m.HomeTeam, true
	case strings.ToLower(m.AwayTeam):
		return m.AwayTeam, true
	default:
		return "", false
	}
}

func (c *rowCleaner) logDrops(ctx context.Context, logger *logging.Logger) {
	r := c.report
	if r.BadSeason > 0 {
		logger.WarnContext(ctx, "dropped rows with invalid season",
			"origin", r.Origin,
			"count", r.BadSeason,
			"samples", c.badSeasons,
		)
	}
	if r.BadTeams > 0 {
		logger.WarnContext(ctx, "dropped rows with missing or identical teams",
			"origin", r.Origin,
			"count", r.BadTeams,
		)
	}
	if r.BadWinner > 0 {
		logger.WarnContext(ctx, "dropped rows without a determinable winner",
			"origin", r.Origin,
			"count", r.BadWinner,
			"samples", c.badWinners,
		)
	}
	if r.UnknownDecisions > 0 {
		logger.WarnContext(ctx, "unknown decision flags treated as regulation",
			"origin", r.Origin,
			"count", r.UnknownDecisions,
			"values", c.decisions,
		)
	}
	if r.MissingGoals > 0 {
		logger.WarnContext(ctx, "rows with unparsable goals kept as missing",
			"origin", r.Origin,
			"count", r.MissingGoals,
		)
	}
	if r.BadDates > 0 {
		logger.WarnContext(ctx, "rows with unparsable dates kept without date",
			"origin", r.Origin,
			"count", r.BadDates,
		)
	}
}

func appendSample(samples []string, value string) []string {
	if len(samples) >= maxLoggedSamples {
		return samples
	}
	return append(samples, value)
}

// parseGoals accepts integers and integral floats ("3.0"). Anything else,
// including negatives, is missing.
func parseGoals(raw string) *int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil
		}
		n = int(f)
	}
	if n < 0 {
		return nil
	}
	return &n
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func teamUniverseMismatch(matches []match.Match) ([]string, []string) {
	home := make(map[string]struct{})
	away := make(map[string]struct{})
	for _, m := range matches {
		home[m.HomeTeam] = struct{}{}
		away[m.AwayTeam] = struct{}{}
	}

	var homeOnly, awayOnly []string
	for team := range home {
		if _, ok := away[team]; !ok {
			homeOnly = append(homeOnly, team)
		}
	}
	for team := range away {
		if _, ok := home[team]; !ok {
			awayOnly = append(awayOnly, team)
		}
	}
	sort.Strings(homeOnly)
	sort.Strings(awayOnly)
	return homeOnly, awayOnly
}
