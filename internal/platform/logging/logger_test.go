package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestLogger_WritesKeyValueFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONTo(&buf, LevelInfo).With("component", "loader")
	logger.Debug("hidden")
	logger.Warn("dropped rows", "count", 3, "error", errors.New("bad season"))
	_ = logger.Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %s", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal(lines[0], &record); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if record["msg"] != "dropped rows" || record["level"] != "WARN" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["component"] != "loader" || record["count"] != float64(3) || record["error"] != "bad season" {
		t.Fatalf("unexpected fields: %v", record)
	}
}

func TestLogger_NilIsSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if err := logger.Sync(); err != nil {
		t.Fatalf("unexpected sync error: %v", err)
	}
}
