package app

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbPingTimeout        = 5 * time.Second
	maxTracedQueryLength = 512
)

var queryWhitespace = regexp.MustCompile(`\s+`)

// DBURLOptions are connection parameters appended to DB_URL unless the URL
// already sets them.
type DBURLOptions struct {
	DisablePreparedBinary bool
	ApplicationName       string
}

// DatabaseURL applies opts to a postgres:// URL or a keyword=value DSN.
func DatabaseURL(raw string, opts DBURLOptions) string {
	params := make([][2]string, 0, 2)
	if opts.DisablePreparedBinary {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	if name := strings.TrimSpace(opts.ApplicationName); name != "" {
		params = append(params, [2]string{"application_name", name})
	}
	if len(params) == 0 {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		query := parsed.Query()
		changed := false
		for _, p := range params {
			if query.Get(p[0]) == "" {
				query.Set(p[0], p[1])
				changed = true
			}
		}
		if !changed {
			return raw
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	if !strings.Contains(trimmed, "=") {
		return raw
	}
	out := trimmed
	for _, p := range params {
		if dsnValue(trimmed, p[0]) == "" {
			out += " " + p[0] + "=" + p[1]
		}
	}
	return out
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}
	return dsnValue(trimmed, "dbname")
}

func dsnValue(dsn, key string) string {
	prefix := key + "="
	for _, token := range strings.Fields(dsn) {
		if value, ok := strings.CutPrefix(token, prefix); ok {
			return strings.Trim(strings.TrimSpace(value), `"'`)
		}
	}
	return ""
}

// formatDBQueryForTrace collapses whitespace and caps the statement recorded
// on db spans.
func formatDBQueryForTrace(query string) string {
	normalized := queryWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

// OpenDB opens an instrumented Postgres handle and checks it is reachable.
func OpenDB(ctx context.Context, rawURL string, opts DBURLOptions) (*sqlx.DB, error) {
	dsn := DatabaseURL(rawURL, opts)
	otelOpts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dsn); name != "" {
		otelOpts = append(otelOpts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, otelOpts...)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	return db, nil
}
