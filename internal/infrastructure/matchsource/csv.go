package matchsource

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

// CSVSource reads the match snapshot from a delimited text file. The first
// record is the header.
type CSVSource struct {
	path  string
	comma rune
	open  func(path string) (io.ReadCloser, error)
}

type CSVOption func(*CSVSource)

// WithComma overrides the field delimiter. Defaults to ','.
func WithComma(comma rune) CSVOption {
	return func(s *CSVSource) {
		if comma != 0 {
			s.comma = comma
		}
	}
}

func NewCSVSource(path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{
		path:  strings.TrimSpace(path),
		comma: ',',
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVSource) ReadTable(ctx context.Context) (match.Table, error) {
	if s.path == "" {
		return match.Table{}, crerr.New("csv source path is empty")
	}

	file, err := s.open(s.path)
	if err != nil {
		return match.Table{}, crerr.Wrapf(err, "open match csv %s", s.path)
	}
	defer file.Close()

	table, err := ReadCSV(ctx, file, s.comma)
	if err != nil {
		return match.Table{}, crerr.Wrapf(err, "read match csv %s", s.path)
	}
	table.Origin = "csv:" + s.path
	return table, nil
}

// ReadCSV parses a header plus data records. Short records are padded with
// empty cells so every row has one cell per column.
func ReadCSV(ctx context.Context, r io.Reader, comma rune) (match.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return match.Table{}, crerr.New("match csv has no header")
		}
		return match.Table{}, crerr.Wrap(err, "read header")
	}

	table := match.Table{Columns: header}
	for {
		if err := ctx.Err(); err != nil {
			return match.Table{}, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return match.Table{}, crerr.Wrapf(err, "read record %d", len(table.Rows)+1)
		}
		if isBlankRecord(record) {
			continue
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
