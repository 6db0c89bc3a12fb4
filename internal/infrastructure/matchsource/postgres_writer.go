package matchsource

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	qb "github.com/riskibarqy/league-stats/internal/platform/querybuilder"
)

const defaultInsertBatchSize = 500

// ImportRun describes one snapshot import.
type ImportRun struct {
	ID         string
	Origin     string
	RowsBefore int
	RowsAfter  int
	ImportedAt time.Time
}

// SnapshotWriter stores a cleaned match log in league_matches, one import run
// per call.
type SnapshotWriter struct {
	db        *sqlx.DB
	batchSize int
}

func NewSnapshotWriter(db *sqlx.DB, batchSize int) *SnapshotWriter {
	if batchSize <= 0 {
		batchSize = defaultInsertBatchSize
	}
	return &SnapshotWriter{db: db, batchSize: batchSize}
}

func (w *SnapshotWriter) Write(ctx context.Context, run ImportRun, matches []match.Match) error {
	if w.db == nil {
		return crerr.New("snapshot writer has no database handle")
	}
	if strings.TrimSpace(run.ID) == "" {
		return crerr.New("import run id is required")
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx write match snapshot")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	importedAt := run.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel(ImportsTable, MatchImportInsertModel{
		PublicID:   run.ID,
		Origin:     run.Origin,
		RowsBefore: run.RowsBefore,
		RowsAfter:  run.RowsAfter,
		ImportedAt: importedAt,
	})
	if err != nil {
		return crerr.Wrap(err, "build insert match import query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert match import id=%s", run.ID)
	}

	for start := 0; start < len(matches); start += w.batchSize {
		end := min(start+w.batchSize, len(matches))
		query, args, err := buildMatchBatchInsert(run.ID, matches[start:end])
		if err != nil {
			return crerr.Wrap(err, "build insert league matches query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert league matches rows=%d..%d", start, end)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit write match snapshot tx")
	}
	return nil
}

func buildMatchBatchInsert(importID string, matches []match.Match) (string, []any, error) {
	rows := make([]LeagueMatchInsertModel, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, newLeagueMatchInsertModel(importID, m))
	}
	return qb.InsertModels(MatchesTable, rows)
}

func newLeagueMatchInsertModel(importID string, m match.Match) LeagueMatchInsertModel {
	row := LeagueMatchInsertModel{
		ImportID:  importID,
		Season:    m.Season.String(),
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeGoals: m.HomeGoals,
		AwayGoals: m.AwayGoals,
	}
	if !m.Date.IsZero() {
		date := m.Date
		row.GameDate = &date
	}
	if m.Winner != "" {
		winner := m.Winner
		row.Winner = &winner
	}
	if flag := m.Decision.String(); flag != "" {
		row.DecisionFlag = &flag
	}
	return row
}
