package matchsource

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

func TestPostgresSource_SelectQuery(t *testing.T) {
	t.Parallel()

	query, args, err := NewPostgresSource(nil).selectQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(query, "SELECT id, import_id, season") || !strings.Contains(query, "FROM league_matches") {
		t.Fatalf("unexpected query: %s", query)
	}
	if strings.Contains(query, "WHERE") || len(args) != 0 {
		t.Fatalf("expected no filter without import id, got %s %v", query, args)
	}

	query, args, err = NewPostgresSource(nil, WithImportID(" run-1 ")).selectQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "WHERE import_id = $1") || len(args) != 1 || args[0] != "run-1" {
		t.Fatalf("unexpected filtered query: %s %v", query, args)
	}
	if !strings.HasSuffix(query, "ORDER BY id") {
		t.Fatalf("expected ordering by id, got %s", query)
	}
}

func TestPostgresSource_NilDB(t *testing.T) {
	t.Parallel()

	if _, err := NewPostgresSource(nil).ReadTable(context.Background()); err == nil {
		t.Fatalf("expected error without database handle")
	}
}

func TestLeagueMatchTableModel_Cells(t *testing.T) {
	t.Parallel()

	row := leagueMatchTableModel{
		Season:       "2122",
		GameDate:     sql.NullTime{Time: time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		HomeTeam:     "Avangard",
		AwayTeam:     "Barys",
		Winner:       sql.NullString{String: "Barys", Valid: true},
		HomeGoals:    sql.NullInt64{Int64: 2, Valid: true},
		DecisionFlag: sql.NullString{String: "AOT", Valid: true},
	}

	got := row.cells()
	want := []string{"2122", "2021-09-01", "Avangard", "Barys", "Barys", "2", "", "AOT"}
	if len(got) != len(snapshotColumns) {
		t.Fatalf("expected %d cells, got %d", len(snapshotColumns), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cell %s: expected %q, got %q", snapshotColumns[i], want[i], got[i])
		}
	}
}

func TestBuildMatchBatchInsert(t *testing.T) {
	t.Parallel()

	goals := func(v int) *int { return &v }
	matches := []match.Match{
		{
			HomeTeam: "Avangard", AwayTeam: "Barys", Winner: "Avangard",
			HomeGoals: goals(3), AwayGoals: goals(1),
			Season: 2122, Date: time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			HomeTeam: "CSKA", AwayTeam: "Dinamo", Winner: "Dinamo",
			Decision: match.DecisionShootout, Season: 2122,
		},
	}

	query, args, err := buildMatchBatchInsert("run-1", matches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO league_matches (import_id, season, game_date") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.Contains(query, "($10, $11, $12, $13, $14, $15, $16, $17, $18)") {
		t.Fatalf("expected second row placeholders, got %s", query)
	}
	if len(args) != 18 {
		t.Fatalf("expected 18 args, got %d", len(args))
	}

	if date, ok := args[11].(*time.Time); !ok || date != nil {
		t.Fatalf("expected nil game date for undated match, got %#v", args[11])
	}
	if flag, ok := args[17].(*string); !ok || flag == nil || *flag != "PEN" {
		t.Fatalf("expected PEN decision flag, got %#v", args[17])
	}
	if flag, ok := args[8].(*string); !ok || flag != nil {
		t.Fatalf("expected nil decision flag for regulation, got %#v", args[8])
	}
}

func TestSnapshotWriter_Validation(t *testing.T) {
	t.Parallel()

	writer := NewSnapshotWriter(nil, 0)
	if writer.batchSize != defaultInsertBatchSize {
		t.Fatalf("expected default batch size, got %d", writer.batchSize)
	}
	if err := writer.Write(context.Background(), ImportRun{ID: "run-1"}, nil); err == nil {
		t.Fatalf("expected error without database handle")
	}
}
