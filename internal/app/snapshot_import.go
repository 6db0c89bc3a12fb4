package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-stats/internal/config"
	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/infrastructure/matchsource"
	"github.com/riskibarqy/league-stats/internal/platform/id"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

// ImportSnapshot cleans the CSV at csvPath with the same rules the API uses
// at startup and stores the surviving rows in Postgres as one import run.
// The returned run id can be served with MATCH_IMPORT_ID.
func ImportSnapshot(ctx context.Context, cfg config.Config, csvPath string, ids id.Generator, logger *logging.Logger) (matchsource.ImportRun, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if cfg.DBURL == "" {
		return matchsource.ImportRun{}, fmt.Errorf("%w: DB_URL is required", usecase.ErrInvalidInput)
	}

	log, report, err := usecase.LoadMatchLog(ctx, matchsource.NewCSVSource(csvPath), logger)
	if err != nil {
		return matchsource.ImportRun{}, err
	}

	runID, err := ids.NewID()
	if err != nil {
		return matchsource.ImportRun{}, fmt.Errorf("generate import id: %w", err)
	}
	run := matchsource.ImportRun{
		ID:         runID,
		Origin:     report.Origin,
		RowsBefore: report.RowsBefore,
		RowsAfter:  report.RowsAfter,
		ImportedAt: time.Now().UTC(),
	}

	db, err := OpenDB(ctx, cfg.DBURL, dbURLOptions(cfg))
	if err != nil {
		return matchsource.ImportRun{}, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	}
	defer db.Close()

	if err := matchsource.NewSnapshotWriter(db, 0).Write(ctx, run, log.Select(match.AllSeasons, nil)); err != nil {
		return matchsource.ImportRun{}, err
	}

	logger.InfoContext(ctx, "match snapshot imported",
		"import_id", run.ID,
		"origin", run.Origin,
		"rows_before", run.RowsBefore,
		"rows_after", run.RowsAfter,
	)
	return run, nil
}
