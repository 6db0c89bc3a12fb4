package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(WithClock(clock.Now)), clock
}

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, _, err := store.GetOrLoad(context.Background(), "same-key", time.Minute, loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, hit, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader); err != nil || hit {
		t.Fatalf("first GetOrLoad hit=%v error: %v", hit, err)
	}
	if _, hit, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader); err != nil || !hit {
		t.Fatalf("second GetOrLoad hit=%v error: %v", hit, err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore()
	wantErr := errors.New("compute failed")
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, wantErr
	}

	for i := 0; i < 2; i++ {
		if _, _, err := store.GetOrLoad(context.Background(), "k", time.Minute, loader); !errors.Is(err, wantErr) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
	if stats := store.Stats(context.Background()); stats.Total != 0 {
		t.Fatalf("expected no entries, got %+v", stats)
	}
}

func TestStore_GetExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clock := newTestStore()
	store.Put(ctx, "team", "record", 30*time.Minute)

	clock.Advance(30*time.Minute - time.Second)
	if _, ok := store.Get(ctx, "team"); !ok {
		t.Fatalf("expected entry to be live before ttl")
	}

	clock.Advance(time.Second)
	if _, ok := store.Get(ctx, "team"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
	if stats := store.Stats(ctx); stats.Total != 0 {
		t.Fatalf("expected expired entry to be evicted on read, got %+v", stats)
	}
}

func TestStore_EmptyValueIsAHit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	store.Put(ctx, "empty", []string{}, time.Minute)

	value, ok := store.Get(ctx, "empty")
	if !ok {
		t.Fatalf("expected stored empty slice to be a hit")
	}
	if got, _ := value.([]string); got == nil || len(got) != 0 {
		t.Fatalf("unexpected value: %#v", value)
	}
}

func TestStore_SweepAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clock := newTestStore()
	store.Put(ctx, "form", 1, 10*time.Minute)
	store.Put(ctx, "team", 2, 30*time.Minute)
	store.Put(ctx, "standings", 3, 60*time.Minute)

	clock.Advance(15 * time.Minute)
	stats := store.Stats(ctx)
	if stats.Total != 3 || stats.Active != 2 || stats.Expired != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if removed := store.Sweep(ctx); removed != 1 {
		t.Fatalf("expected 1 swept entry, got %d", removed)
	}
	stats = store.Stats(ctx)
	if stats.Total != 2 || stats.Expired != 0 {
		t.Fatalf("unexpected stats after sweep: %+v", stats)
	}

	if removed := store.Clear(ctx); removed != 2 {
		t.Fatalf("expected 2 cleared entries, got %d", removed)
	}
	if _, ok := store.Get(ctx, "standings"); ok {
		t.Fatalf("expected store to be empty after clear")
	}
}

func TestLoad_NilStoreComputesEveryTime(t *testing.T) {
	t.Parallel()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 2; i++ {
		got, hit, err := Load[int](context.Background(), nil, "k", time.Minute, compute)
		if err != nil || hit || got != 42 {
			t.Fatalf("unexpected result got=%d hit=%v err=%v", got, hit, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected compute to run twice, got %d", calls)
	}
}

func TestKey_QuotesArguments(t *testing.T) {
	t.Parallel()

	if got, want := Key("head_to_head", "A", "B", "2122"), `head_to_head|"A"|"B"|"2122"`; got != want {
		t.Fatalf("unexpected key: got %s want %s", got, want)
	}
	if Key("team", "a|b", "c") == Key("team", "a", "b|c") {
		t.Fatalf("expected distinct keys for arguments containing separators")
	}
	if Key("team_record", "A") == Key("home_record", "A") {
		t.Fatalf("expected operation name to be part of the key")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
