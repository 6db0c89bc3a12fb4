package usecase

import (
	"testing"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

func parserLog() *match.Log {
	return match.NewLog([]match.Match{
		{HomeTeam: "Ak Bars", AwayTeam: "CSKA", Winner: "Ak Bars", Season: 2223},
		{HomeTeam: "CSKA", AwayTeam: "SKA", Winner: "SKA", Season: 2324},
		{HomeTeam: "Salavat Yulaev", AwayTeam: "Ak Bars", Winner: "Ak Bars", Season: 2425},
	})
}

func TestQueryParser_ExtractsTeamsInTextOrder(t *testing.T) {
	t.Parallel()

	parser := NewQueryParser(parserLog(), map[string]string{"Army men": "cska", "ghost": "Unknown Club"})

	got := parser.Parse("Who wins, SKA or ak bars?")
	if len(got.Teams) != 2 || got.Teams[0] != "SKA" || got.Teams[1] != "Ak Bars" {
		t.Fatalf("unexpected teams: %v", got.Teams)
	}

	got = parser.Parse("How did the army men play against Salavat?")
	if len(got.Teams) != 2 || got.Teams[0] != "CSKA" || got.Teams[1] != "Salavat Yulaev" {
		t.Fatalf("expected alias and partial word match, got %v", got.Teams)
	}

	got = parser.Parse("how is CSKA doing")
	if len(got.Teams) != 1 || got.Teams[0] != "CSKA" {
		t.Fatalf("expected SKA not to match inside CSKA, got %v", got.Teams)
	}

	got = parser.Parse("ghost town")
	if len(got.Teams) != 0 {
		t.Fatalf("expected alias to unknown team to be ignored, got %v", got.Teams)
	}
}

func TestQueryParser_ExtractsSeason(t *testing.T) {
	t.Parallel()

	parser := NewQueryParser(parserLog(), nil)
	cases := []struct {
		text  string
		want  match.Season
		found bool
	}{
		{text: "standings 2023", want: 2324, found: true},
		{text: "results in 22/23", want: 2223, found: true},
		{text: "how is this season going", want: 2425, found: true},
		{text: "last season leaders", want: 2324, found: true},
		{text: "season before last", want: 2223, found: true},
		{text: "в прошлом сезоне", want: 2324, found: true},
		{text: "all time record", want: match.AllSeasons, found: false},
		{text: "scores 22/24", want: match.AllSeasons, found: false},
	}
	for _, tc := range cases {
		got := parser.Parse(tc.text)
		if got.SeasonFound != tc.found || got.Season != tc.want {
			t.Fatalf("Parse(%q) season = %v/%v, want %v/%v", tc.text, got.Season, got.SeasonFound, tc.want, tc.found)
		}
	}
}

func TestQueryParser_TableIntent(t *testing.T) {
	t.Parallel()

	parser := NewQueryParser(parserLog(), nil)
	if !parser.Parse("show me the standings").ShowTable {
		t.Fatalf("expected standings to request a table")
	}
	if !parser.Parse("top teams by points").ShowTable {
		t.Fatalf("expected top keyword to request a table")
	}
	if parser.Parse("top teams, no table please").ShowTable {
		t.Fatalf("expected explicit opt out to win for top keyword")
	}
	if parser.Parse("how is CSKA doing").ShowTable {
		t.Fatalf("expected plain question not to request a table")
	}
}
