package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-stats/internal/config"
	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/infrastructure/matchsource"
	"github.com/riskibarqy/league-stats/internal/infrastructure/teamnames"
	"github.com/riskibarqy/league-stats/internal/interfaces/httpapi"
	"github.com/riskibarqy/league-stats/internal/platform/cache"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

// App holds the wired services behind the HTTP server.
type App struct {
	Server      *http.Server
	Stats       *usecase.StatsService
	Predictions *usecase.PredictionService
	Cache       *cache.Store
	Report      usecase.LoadReport
	db          *sqlx.DB
}

// New loads the match log once, fits the prediction model and builds the
// HTTP server. The match log is never reloaded for the life of the process.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	source, db, err := newMatchSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{db: db}

	log, report, err := usecase.LoadMatchLog(ctx, source, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load match log: %w", err)
	}
	app.Report = report

	catalog, err := teamnames.Load(cfg.TeamAliasesPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load team aliases: %w", err)
	}

	if cfg.CacheEnabled {
		app.Cache = cache.NewStore()
	}
	app.Stats = usecase.NewStatsService(log, app.Cache, logger)

	predictionCfg := usecase.DefaultPredictionConfig()
	predictionCfg.Trees = cfg.ForestTrees
	predictionCfg.Seed = cfg.ForestSeed
	predictionCfg.MaxDepth = cfg.ForestMaxDepth
	app.Predictions, err = usecase.NewPredictionService(ctx, log, predictionCfg, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("fit prediction model: %w", err)
	}

	if cfg.WarmupEnabled && app.Cache != nil {
		if _, err := usecase.WarmStatsCache(ctx, app.Stats, cfg.WarmupWorkers, logger); err != nil {
			logger.WarnContext(ctx, "stats cache warmup incomplete", "error", err)
		}
	}

	parser := usecase.NewQueryParser(log, catalog.Aliases())
	briefings := usecase.NewBriefingService(app.Stats, app.Predictions, parser, logger)
	handler := httpapi.NewHandler(app.Stats, app.Predictions, briefings, app.Cache, catalog, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
	})

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if app.Server.Addr == "" {
		app.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	logger.InfoContext(ctx, "application ready",
		"origin", report.Origin,
		"matches", log.Len(),
		"teams", len(log.Teams()),
		"seasons", len(log.Seasons()),
		"model_accuracy", app.Predictions.Accuracy(),
		"cache_enabled", app.Cache != nil,
	)
	return app, nil
}

// Close releases the database handle, if the snapshot came from Postgres.
func (a *App) Close() {
	if a == nil || a.db == nil {
		return
	}
	_ = a.db.Close()
	a.db = nil
}

func newMatchSource(ctx context.Context, cfg config.Config) (match.Source, *sqlx.DB, error) {
	switch cfg.MatchSource {
	case config.MatchSourcePostgres:
		db, err := OpenDB(ctx, cfg.DBURL, dbURLOptions(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
		}
		return matchsource.NewPostgresSource(db, matchsource.WithImportID(cfg.MatchImportID)), db, nil
	case config.MatchSourceCSV, "":
		return matchsource.NewCSVSource(cfg.MatchCSVPath), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown match source %q", usecase.ErrInvalidInput, cfg.MatchSource)
	}
}

func dbURLOptions(cfg config.Config) DBURLOptions {
	return DBURLOptions{
		DisablePreparedBinary: cfg.DBDisablePreparedBinary,
		ApplicationName:       cfg.ServiceName,
	}
}
