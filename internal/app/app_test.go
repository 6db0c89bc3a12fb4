package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/league-stats/internal/config"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

func writeMatchCSV(t *testing.T) string {
	t.Helper()

	teams := []string{"Avangard", "Barys", "CSKA", "Dinamo"}
	var b strings.Builder
	b.WriteString("date,season,home_team,away_team,winner,hg,ag,ADD\n")
	day := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	for round := 0; round < 5; round++ {
		for i := range teams {
			for j := range teams {
				if i == j {
					continue
				}
				winner, hg, ag := teams[i], 3, 1
				if (i+j+round)%3 == 0 {
					winner, hg, ag = teams[j], 1, 2
				}
				fmt.Fprintf(&b, "%s,2122,%s,%s,%s,%d,%d,\n", day.Format("2006-01-02"), teams[i], teams[j], winner, hg, ag)
				day = day.AddDate(0, 0, 1)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "matches.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func testConfig(csvPath string) config.Config {
	return config.Config{
		AppEnv:         config.EnvDev,
		HTTPAddr:       ":0",
		MatchSource:    config.MatchSourceCSV,
		MatchCSVPath:   csvPath,
		CacheEnabled:   true,
		WarmupEnabled:  true,
		WarmupWorkers:  2,
		ForestTrees:    10,
		ForestSeed:     21,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		SwaggerEnabled: false,
	}
}

func TestNew_WiresServerFromCSV(t *testing.T) {
	t.Parallel()

	application, err := New(context.Background(), testConfig(writeMatchCSV(t)), logging.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer application.Close()

	if application.Report.RowsAfter != 60 {
		t.Fatalf("expected 60 rows kept, got %d", application.Report.RowsAfter)
	}
	if application.Cache == nil || application.Cache.Stats(context.Background()).Active == 0 {
		t.Fatalf("expected warmed cache")
	}

	rec := httptest.NewRecorder()
	application.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/teams", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /v1/teams, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Dinamo") {
		t.Fatalf("expected team list in body, got %s", rec.Body.String())
	}
}

func TestNew_CacheDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(writeMatchCSV(t))
	cfg.CacheEnabled = false
	application, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if application.Cache != nil {
		t.Fatalf("expected no cache store when disabled")
	}
}

func TestNew_MissingCSV(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), testConfig(filepath.Join(t.TempDir(), "missing.csv")), logging.NewNop())
	if !errors.Is(err, usecase.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

func TestNew_UnknownSource(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	cfg.MatchSource = "parquet"
	_, err := New(context.Background(), cfg, logging.NewNop())
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestImportSnapshot_RequiresDBURL(t *testing.T) {
	t.Parallel()

	_, err := ImportSnapshot(context.Background(), config.Config{}, writeMatchCSV(t), nil, logging.NewNop())
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
