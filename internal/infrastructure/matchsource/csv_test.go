package matchsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSV_PadsShortRecordsAndSkipsBlankLines(t *testing.T) {
	t.Parallel()

	input := "HOMETEAM,AWAYTEAM,WINNER,HG,AG\n" +
		"Avangard,Barys,Avangard,3,1\n" +
		",,,,\n" +
		"CSKA,Dinamo\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(input), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Columns) != 5 || table.Columns[0] != "HOMETEAM" {
		t.Fatalf("unexpected header: %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(table.Rows))
	}
	if len(table.Rows[1]) != 5 || table.Rows[1][4] != "" {
		t.Fatalf("expected padded short record, got %v", table.Rows[1])
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := ReadCSV(context.Background(), strings.NewReader(""), ','); err == nil {
		t.Fatalf("expected error for input without header")
	}
}

func TestReadCSV_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadCSV(ctx, strings.NewReader("a,b\n1,2\n"), ','); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestCSVSource_ReadTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "khl.csv")
	content := "HOMETEAM;AWAYTEAM;SEASON\nAvangard;Barys;2122\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := NewCSVSource(path, WithComma(';')).ReadTable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Origin != "csv:"+path {
		t.Fatalf("unexpected origin: %s", table.Origin)
	}
	if len(table.Rows) != 1 || table.Rows[0][2] != "2122" {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).ReadTable(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "open match csv") {
		t.Fatalf("expected open context in error, got %v", err)
	}
}

func TestCSVSource_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewCSVSource("  ").ReadTable(context.Background()); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
