package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition is one equality predicate of a WHERE clause. Conditions are
// joined with AND.
type Condition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return Condition{column: column, value: value}
}

// statement accumulates SQL text and numbers bound arguments as $1, $2, ...
type statement struct {
	buf  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.buf.WriteString(part)
	}
}

func (s *statement) bind(value any) string {
	s.args = append(s.args, value)
	return "$" + strconv.Itoa(len(s.args))
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var st statement
	st.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	for i, c := range b.where {
		if strings.TrimSpace(c.column) == "" {
			return "", nil, fmt.Errorf("where condition %d has no column", i)
		}
		keyword := " AND "
		if i == 0 {
			keyword = " WHERE "
		}
		st.write(keyword, c.column, " = ", st.bind(c.value))
	}
	if len(b.orderBy) > 0 {
		st.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	return st.buf.String(), st.args, nil
}

// InsertBuilder renders one multi-row INSERT.
type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	var st statement
	st.args = make([]any, 0, len(b.rows)*len(b.columns))
	st.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			st.write(", ")
		}
		st.write("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				st.write(", ")
			}
			st.write(st.bind(value))
		}
		st.write(")")
	}
	return st.buf.String(), st.args, nil
}
