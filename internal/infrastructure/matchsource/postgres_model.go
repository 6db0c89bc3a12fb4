package matchsource

import (
	"database/sql"
	"time"
)

const (
	MatchesTable = "league_matches"
	ImportsTable = "match_imports"
)

type leagueMatchTableModel struct {
	ID           int64          `db:"id"`
	ImportID     string         `db:"import_id"`
	Season       string         `db:"season"`
	GameDate     sql.NullTime   `db:"game_date"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	Winner       sql.NullString `db:"winner"`
	HomeGoals    sql.NullInt64  `db:"home_goals"`
	AwayGoals    sql.NullInt64  `db:"away_goals"`
	DecisionFlag sql.NullString `db:"decision_flag"`
	CreatedAt    time.Time      `db:"created_at"`
}

// LeagueMatchInsertModel is one snapshot row as written by the import tool.
type LeagueMatchInsertModel struct {
	ImportID     string     `db:"import_id"`
	Season       string     `db:"season"`
	GameDate     *time.Time `db:"game_date"`
	HomeTeam     string     `db:"home_team"`
	AwayTeam     string     `db:"away_team"`
	Winner       *string    `db:"winner"`
	HomeGoals    *int       `db:"home_goals"`
	AwayGoals    *int       `db:"away_goals"`
	DecisionFlag *string    `db:"decision_flag"`
}

// MatchImportInsertModel records one import run.
type MatchImportInsertModel struct {
	PublicID   string    `db:"public_id"`
	Origin     string    `db:"origin"`
	RowsBefore int       `db:"rows_before"`
	RowsAfter  int       `db:"rows_after"`
	ImportedAt time.Time `db:"imported_at"`
}
