package matchsource

import (
	"context"
	"testing"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

func TestMemorySource_ReturnsCopy(t *testing.T) {
	t.Parallel()

	source := NewMemorySource(match.Table{
		Columns: []string{"home_team", "away_team"},
		Rows:    [][]string{{"Avangard", "Barys"}},
	})

	first, err := source.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Origin != "memory" {
		t.Fatalf("expected default origin, got %s", first.Origin)
	}
	first.Rows[0][0] = "mutated"

	second, err := source.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Rows[0][0] != "Avangard" {
		t.Fatalf("expected source rows to be isolated from callers, got %v", second.Rows)
	}
}
