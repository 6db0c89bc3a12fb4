package matchsource

import (
	"context"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

// MemorySource serves a fixed table. Used by tests and local runs.
type MemorySource struct {
	table match.Table
}

func NewMemorySource(table match.Table) *MemorySource {
	return &MemorySource{table: table}
}

func (s *MemorySource) ReadTable(ctx context.Context) (match.Table, error) {
	if err := ctx.Err(); err != nil {
		return match.Table{}, err
	}

	out := match.Table{
		Origin:  s.table.Origin,
		Columns: append([]string(nil), s.table.Columns...),
		Rows:    make([][]string, 0, len(s.table.Rows)),
	}
	if out.Origin == "" {
		out.Origin = "memory"
	}
	for _, row := range s.table.Rows {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out, nil
}
