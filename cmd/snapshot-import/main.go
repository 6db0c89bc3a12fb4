package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/riskibarqy/league-stats/internal/app"
	"github.com/riskibarqy/league-stats/internal/config"
	"github.com/riskibarqy/league-stats/internal/platform/id"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	csvPath := cfg.MatchCSVPath
	if len(os.Args) > 1 {
		csvPath = strings.TrimSpace(os.Args[1])
	}
	if csvPath == "" {
		printUsage()
		os.Exit(2)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", "snapshot-import")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, err := app.ImportSnapshot(ctx, cfg, csvPath, id.NewRandomGenerator(), logger)
	if err != nil {
		logger.Error("import match snapshot", "path", csvPath, "error", err)
		os.Exit(1)
	}

	fmt.Printf("import_id: %s\n", run.ID)
	fmt.Printf("rows: %d of %d kept\n", run.RowsAfter, run.RowsBefore)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s [path/to/matches.csv]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "defaults to MATCH_CSV_PATH; requires DB_URL")
}
