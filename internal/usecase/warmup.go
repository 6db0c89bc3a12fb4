package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/platform/metrics"
)

const (
	defaultWarmupWorkers = 4
	maxWarmupWorkers     = 32

	warmupStatusSuccess = "success"
	warmupStatusSkipped = "skipped"
)

type WarmupResult struct {
	TaskCount    int           `json:"task_count"`
	WorkerCount  int           `json:"worker_count"`
	SuccessCount int           `json:"success_count"`
	SkippedCount int           `json:"skipped_count"`
	Duration     time.Duration `json:"duration"`
}

type warmupTask struct {
	name   string
	season match.Season
	run    func(ctx context.Context, season match.Season)
}

// WarmStatsCache precomputes standings and every leaderboard for each season
// and for the whole log. It blocks until all tasks finish or ctx is done.
func WarmStatsCache(ctx context.Context, stats *StatsService, maxWorkers int, logger *logging.Logger) (WarmupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WarmStatsCache")
	defer span.End()

	if stats == nil {
		return WarmupResult{}, fmt.Errorf("%w: stats service is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}

	tasks := warmupTasks(stats)
	workerCount := normalizeWarmupWorkerCount(maxWorkers, len(tasks))
	result := WarmupResult{
		TaskCount:   len(tasks),
		WorkerCount: workerCount,
	}
	if len(tasks) == 0 {
		return result, nil
	}

	start := time.Now()
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return WarmupResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var successCount atomic.Int32
	var skippedCount atomic.Int32
	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if ctx.Err() != nil {
				logger.DebugContext(ctx, "warmup task skipped", "task", task.name, "season", task.season.String())
				skippedCount.Add(1)
				metrics.RecordWarmupTask(warmupStatusSkipped)
				return
			}
			task.run(ctx, task.season)
			successCount.Add(1)
			metrics.RecordWarmupTask(warmupStatusSuccess)
		}); err != nil {
			workers.Done()
			return WarmupResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "stats cache warmed",
		"tasks", result.TaskCount,
		"workers", result.WorkerCount,
		"success", result.SuccessCount,
		"skipped", result.SkippedCount,
		"duration", result.Duration,
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("warm stats cache: %w", err)
	}
	return result, nil
}

func warmupTasks(stats *StatsService) []warmupTask {
	scopes := append([]match.Season{match.AllSeasons}, stats.Seasons()...)
	kinds := []struct {
		name string
		run  func(ctx context.Context, season match.Season)
	}{
		{name: "season_standings", run: func(ctx context.Context, season match.Season) { stats.SeasonStandings(ctx, season) }},
		{name: "top_by_wins", run: func(ctx context.Context, season match.Season) {
			stats.TopByWins(ctx, season, DefaultLeaderboardLimit)
		}},
		{name: "top_by_points", run: func(ctx context.Context, season match.Season) {
			stats.TopByPoints(ctx, season, DefaultLeaderboardLimit)
		}},
		{name: "top_by_winrate", run: func(ctx context.Context, season match.Season) {
			stats.TopByWinRate(ctx, season, DefaultMinGames, DefaultLeaderboardLimit)
		}},
		{name: "top_by_goals", run: func(ctx context.Context, season match.Season) {
			stats.TopByGoals(ctx, season, DefaultLeaderboardLimit)
		}},
	}

	tasks := make([]warmupTask, 0, len(scopes)*len(kinds))
	for _, season := range scopes {
		for _, kind := range kinds {
			tasks = append(tasks, warmupTask{name: kind.name, season: season, run: kind.run})
		}
	}
	return tasks
}

func normalizeWarmupWorkerCount(requested, taskCount int) int {
	workers := requested
	if workers <= 0 {
		workers = defaultWarmupWorkers
	}
	if workers > maxWarmupWorkers {
		workers = maxWarmupWorkers
	}
	if taskCount > 0 && workers > taskCount {
		workers = taskCount
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
