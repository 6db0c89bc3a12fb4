package id

import (
	"encoding/hex"
	"testing"
)

func TestRandomGenerator_NewID(t *testing.T) {
	t.Parallel()

	g := NewRandomGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		got, err := g.NewID()
		if err != nil {
			t.Fatalf("NewID returned error: %v", err)
		}
		if len(got) != 32 {
			t.Fatalf("expected 32 chars, got %d (%q)", len(got), got)
		}
		if _, err := hex.DecodeString(got); err != nil {
			t.Fatalf("expected hex id, got %q", got)
		}
		if _, dup := seen[got]; dup {
			t.Fatalf("duplicate id %q", got)
		}
		seen[got] = struct{}{}
	}
}
