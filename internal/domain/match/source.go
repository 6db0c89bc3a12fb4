package match

import "context"

// Table is the raw, untyped match table as delivered by a source.
type Table struct {
	Origin  string
	Columns []string
	Rows    [][]string
}

// Source delivers the match table snapshot. It is read once at startup.
type Source interface {
	ReadTable(ctx context.Context) (Table, error)
}
