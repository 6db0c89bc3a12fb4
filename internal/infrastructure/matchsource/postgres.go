package matchsource

import (
	"context"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	qb "github.com/riskibarqy/league-stats/internal/platform/querybuilder"
)

const postgresDateLayout = "2006-01-02"

var snapshotColumns = []string{
	"season",
	"date",
	"home_team",
	"away_team",
	"winner",
	"home_goals",
	"away_goals",
	"decision_flag",
}

// PostgresSource reads the match snapshot from the league_matches table.
type PostgresSource struct {
	db       *sqlx.DB
	importID string
}

type PostgresOption func(*PostgresSource)

// WithImportID restricts the snapshot to a single import run.
func WithImportID(id string) PostgresOption {
	return func(s *PostgresSource) {
		s.importID = strings.TrimSpace(id)
	}
}

func NewPostgresSource(db *sqlx.DB, opts ...PostgresOption) *PostgresSource {
	s := &PostgresSource{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresSource) ReadTable(ctx context.Context) (match.Table, error) {
	if s.db == nil {
		return match.Table{}, crerr.New("postgres source has no database handle")
	}

	query, args, err := s.selectQuery()
	if err != nil {
		return match.Table{}, crerr.Wrap(err, "build select league matches query")
	}

	var rows []leagueMatchTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return match.Table{}, crerr.Wrap(err, "select league matches")
	}

	origin := "postgres:" + MatchesTable
	if s.importID != "" {
		origin += "@" + s.importID
	}
	table := match.Table{
		Origin:  origin,
		Columns: append([]string(nil), snapshotColumns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, row.cells())
	}
	return table, nil
}

func (s *PostgresSource) selectQuery() (string, []any, error) {
	builder := qb.Select(
		"id", "import_id", "season", "game_date", "home_team", "away_team",
		"winner", "home_goals", "away_goals", "decision_flag", "created_at",
	).From(MatchesTable)
	if s.importID != "" {
		builder = builder.Where(qb.Eq("import_id", s.importID))
	}
	return builder.OrderBy("id").ToSQL()
}

func (m leagueMatchTableModel) cells() []string {
	date := ""
	if m.GameDate.Valid {
		date = m.GameDate.Time.Format(postgresDateLayout)
	}
	return []string{
		m.Season,
		date,
		m.HomeTeam,
		m.AwayTeam,
		m.Winner.String,
		nullIntToString(m.HomeGoals.Int64, m.HomeGoals.Valid),
		nullIntToString(m.AwayGoals.Int64, m.AwayGoals.Valid),
		m.DecisionFlag.String,
	}
}

func nullIntToString(v int64, valid bool) string {
	if !valid {
		return ""
	}
	return strconv.FormatInt(v, 10)
}
