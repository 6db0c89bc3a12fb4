package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/league-stats/internal/platform/logging"
)

func TestWarmStatsCache_FillsStandingsAndLeaderboards(t *testing.T) {
	t.Parallel()

	log := roundRobinLog(teamNames(4), 4)
	stats, store := newTestStats(log)

	result, err := WarmStatsCache(context.Background(), stats, 3, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected warmup error: %v", err)
	}

	wantTasks := (len(log.Seasons()) + 1) * 5
	if result.TaskCount != wantTasks || result.SuccessCount != wantTasks || result.SkippedCount != 0 {
		t.Fatalf("unexpected warmup result: %+v", result)
	}
	if result.WorkerCount != 3 {
		t.Fatalf("expected 3 workers, got %d", result.WorkerCount)
	}
	if got := store.Stats(context.Background()).Active; got != wantTasks {
		t.Fatalf("expected %d cached entries, got %d", wantTasks, got)
	}
}

func TestWarmStatsCache_CanceledContext(t *testing.T) {
	t.Parallel()

	stats, store := newTestStats(roundRobinLog(teamNames(3), 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := WarmStatsCache(ctx, stats, 2, logging.NewNop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.SkippedCount != result.TaskCount {
		t.Fatalf("expected every task skipped, got %+v", result)
	}
	if got := store.Stats(context.Background()).Total; got != 0 {
		t.Fatalf("expected empty cache, got %d entries", got)
	}
}

func TestWarmStatsCache_RequiresStats(t *testing.T) {
	t.Parallel()

	if _, err := WarmStatsCache(context.Background(), nil, 1, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNormalizeWarmupWorkerCount(t *testing.T) {
	t.Parallel()

	cases := []struct{ requested, tasks, want int }{
		{requested: 0, tasks: 20, want: defaultWarmupWorkers},
		{requested: 100, tasks: 200, want: maxWarmupWorkers},
		{requested: 8, tasks: 3, want: 3},
		{requested: -1, tasks: 0, want: defaultWarmupWorkers},
	}
	for _, tc := range cases {
		if got := normalizeWarmupWorkerCount(tc.requested, tc.tasks); got != tc.want {
			t.Fatalf("normalizeWarmupWorkerCount(%d, %d) = %d, want %d", tc.requested, tc.tasks, got, tc.want)
		}
	}
}
