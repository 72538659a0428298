package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/types"
)

// fakeRedisTier is an in-memory stand-in for the remote tier that records
// every call so tests can assert which tiers an operation touched.
type fakeRedisTier struct {
	mu       sync.Mutex
	store    map[string][]byte
	patterns []string

	getCalls    atomic.Int64
	setCalls    atomic.Int64
	deleteCalls atomic.Int64

	available bool
}

func newFakeRedisTier() *fakeRedisTier {
	return &fakeRedisTier{
		store:     make(map[string][]byte),
		available: true,
	}
}

func (f *fakeRedisTier) Name() string        { return "redis" }
func (f *fakeRedisTier) IsAvailable() bool   { return f.available }
func (f *fakeRedisTier) Close() error        { return nil }
func (f *fakeRedisTier) PendingWrites() int  { return 0 }
func (f *fakeRedisTier) DroppedWrites() int64 { return 0 }

func (f *fakeRedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	f.getCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.store[key]
	if !ok {
		return nil, types.ErrCacheMiss
	}
	return data, nil
}

func (f *fakeRedisTier) Set(ctx context.Context, key string, value []byte, opts *types.CacheOptions) error {
	f.setCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = value
	return nil
}

func (f *fakeRedisTier) Delete(ctx context.Context, key string) error {
	f.deleteCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, key)
	return nil
}

func (f *fakeRedisTier) Contains(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[key]
	return ok, nil
}

func (f *fakeRedisTier) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store = make(map[string][]byte)
	return nil
}

func (f *fakeRedisTier) ClearByPattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	for key := range f.store {
		if matchPattern(key, pattern) {
			delete(f.store, key)
		}
	}
	return nil
}

func (f *fakeRedisTier) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[key]
	return ok
}

var _ types.RedisTier = (*fakeRedisTier)(nil)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()

	c, err := NewCoordinator(config.ForTesting(), nil)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	t.Cleanup(func() { _ = c.CloseWithTimeout(time.Second) })

	return c
}

func newTestCoordinatorWithFake(t *testing.T) (*Coordinator, *fakeRedisTier) {
	t.Helper()

	c := newTestCoordinator(t)
	fake := newFakeRedisTier()
	c.redis = fake

	return c, fake
}

func TestCoordinator_GetOrFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fetches once and fills", func(t *testing.T) {
		c := newTestCoordinator(t)

		var fetchCount atomic.Int64
		fetch := func() (any, error) {
			fetchCount.Add(1)
			return map[string]string{"name": "Magic Kingdom"}, nil
		}

		var got map[string]string
		if err := c.GetOrFetch(ctx, "park:mk", &got, fetch); err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
		if got["name"] != "Magic Kingdom" {
			t.Errorf("unexpected value: %v", got)
		}
		if fetchCount.Load() != 1 {
			t.Errorf("expected 1 fetch, got %d", fetchCount.Load())
		}

		// Second call is served from memory without fetching.
		var again map[string]string
		if err := c.GetOrFetch(ctx, "park:mk", &again, fetch); err != nil {
			t.Fatalf("second GetOrFetch failed: %v", err)
		}
		if fetchCount.Load() != 1 {
			t.Errorf("hit should suppress fetch, got %d fetches", fetchCount.Load())
		}
	})

	t.Run("fetch error propagates without caching", func(t *testing.T) {
		c := newTestCoordinator(t)

		wantErr := errors.New("upstream down")
		var fetchCount atomic.Int64
		fetch := func() (any, error) {
			fetchCount.Add(1)
			return nil, wantErr
		}

		var got map[string]string
		err := c.GetOrFetch(ctx, "park:mk", &got, fetch)
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected fetch error, got %v", err)
		}

		// Nothing was cached, so a second call fetches again.
		_ = c.GetOrFetch(ctx, "park:mk", &got, fetch)
		if fetchCount.Load() != 2 {
			t.Errorf("expected 2 fetches after error, got %d", fetchCount.Load())
		}
	})

	t.Run("nil fetch", func(t *testing.T) {
		c := newTestCoordinator(t)

		var got string
		err := c.GetOrFetch(ctx, "k", &got, nil)
		if !errors.Is(err, types.ErrNilFetch) {
			t.Errorf("expected ErrNilFetch, got %v", err)
		}
	})

	t.Run("coalesces concurrent misses", func(t *testing.T) {
		c := newTestCoordinator(t)

		var fetchCount atomic.Int64
		fetch := func() (any, error) {
			fetchCount.Add(1)
			time.Sleep(50 * time.Millisecond)
			return 42, nil
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				var got int
				if err := c.GetOrFetch(ctx, "waittime:sm", &got, fetch); err != nil {
					t.Errorf("GetOrFetch failed: %v", err)
				} else if got != 42 {
					t.Errorf("unexpected value: %d", got)
				}
			}()
		}
		close(start)
		wg.Wait()

		if fetchCount.Load() != 1 {
			t.Errorf("expected concurrent misses to share one fetch, got %d", fetchCount.Load())
		}
	})
}

func TestCoordinator_SetGet(t *testing.T) {
	c := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.Set(ctx, "attraction:sm", "Space Mountain"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got string
	if err := c.Get(ctx, "attraction:sm", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "Space Mountain" {
		t.Errorf("got %q", got)
	}
}

func TestCoordinator_Get_Miss(t *testing.T) {
	c := newTestCoordinator(t)

	var got string
	err := c.Get(context.Background(), "missing", &got)
	if !types.IsCacheMiss(err) {
		t.Errorf("expected cache miss, got %v", err)
	}
}

func TestCoordinator_InvalidKey(t *testing.T) {
	c := newTestCoordinator(t)
	ctx := context.Background()

	for _, key := range []string{"", "bad\x00key"} {
		var got string
		if err := c.Get(ctx, key, &got); !types.IsInvalidKey(err) {
			t.Errorf("Get(%q): expected invalid key error, got %v", key, err)
		}
		if err := c.Set(ctx, key, "v"); !types.IsInvalidKey(err) {
			t.Errorf("Set(%q): expected invalid key error, got %v", key, err)
		}
	}
}

func TestCoordinator_RedisBypassOption(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	withoutRedis := func(o *types.CacheOptions) { o.UseRedis = false }

	if err := c.Set(ctx, "park:mk", "v", withoutRedis); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got string
	if err := c.Get(ctx, "park:mk", &got, withoutRedis); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	fetch := func() (any, error) { return "w", nil }
	if err := c.GetOrFetch(ctx, "park:epcot", &got, fetch, withoutRedis); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	if n := fake.getCalls.Load() + fake.setCalls.Load(); n != 0 {
		t.Errorf("redis touched %d times with UseRedis=false", n)
	}
}

func TestCoordinator_MemoryBypassOption(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	withoutMemory := func(o *types.CacheOptions) { o.UseMemory = false }

	if err := c.Set(ctx, "history:mk:2026-08-28", "v", withoutMemory); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !fake.has("history:mk:2026-08-28") {
		t.Error("expected value in redis")
	}
	if exists, _ := c.memory.Contains(ctx, "history:mk:2026-08-28"); exists {
		t.Error("memory tier should be bypassed")
	}

	var got string
	if err := c.Get(ctx, "history:mk:2026-08-28", &got, withoutMemory); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v" {
		t.Errorf("got %q", got)
	}
}

func TestCoordinator_FillsBothTiers(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	fetch := func() (any, error) { return "payload", nil }

	var got string
	if err := c.GetOrFetch(ctx, "park:mk", &got, fetch); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	if !fake.has("park:mk") {
		t.Error("redis tier was not filled")
	}
	if exists, _ := c.memory.Contains(ctx, "park:mk"); !exists {
		t.Error("memory tier was not filled")
	}
}

func TestCoordinator_PromotesRedisHit(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	fake.store["park:mk"] = []byte(`"remote"`)

	var got string
	if err := c.Get(ctx, "park:mk", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "remote" {
		t.Errorf("got %q", got)
	}

	// Promotion into memory happens in the background.
	deadline := time.Now().Add(time.Second)
	for {
		if exists, _ := c.memory.Contains(ctx, "park:mk"); exists {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("redis hit was never promoted into memory")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCoordinator_Invalidate(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	if err := c.Set(ctx, "park:mk", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := c.Invalidate(ctx, "park:mk"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if exists, _ := c.memory.Contains(ctx, "park:mk"); exists {
		t.Error("memory still holds invalidated key")
	}
	if fake.has("park:mk") {
		t.Error("redis still holds invalidated key")
	}
	if fake.deleteCalls.Load() != 1 {
		t.Errorf("expected 1 redis delete, got %d", fake.deleteCalls.Load())
	}
}

func TestCoordinator_InvalidatePattern(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	for _, k := range []string{"park:mk", "hours:mk:2026-08-29", "waittime:sm"} {
		if err := c.Set(ctx, k, "v"); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}

	if err := c.InvalidatePattern(ctx, "park:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	if exists, _ := c.memory.Contains(ctx, "park:mk"); exists {
		t.Error("memory still holds matching key")
	}
	if exists, _ := c.memory.Contains(ctx, "waittime:sm"); !exists {
		t.Error("non-matching key was removed from memory")
	}

	// The raw pattern goes to the remote tier exactly once.
	if len(fake.patterns) != 1 || fake.patterns[0] != "park:*" {
		t.Errorf("unexpected remote pattern calls: %v", fake.patterns)
	}
}

func TestCoordinator_Clear(t *testing.T) {
	c, fake := newTestCoordinatorWithFake(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1)
	_ = c.Set(ctx, "b", 2)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if c.memory.EntryCount() != 0 {
		t.Errorf("memory not empty after Clear")
	}
	if fake.has("a") || fake.has("b") {
		t.Error("redis not empty after Clear")
	}
}

func TestCoordinator_Health(t *testing.T) {
	c := newTestCoordinator(t)

	report, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	// Memory-only configuration: working, but degraded.
	if report.Status != types.HealthStatusDegraded {
		t.Errorf("expected degraded status, got %v", report.Status)
	}
	if !report.Memory.Available {
		t.Error("memory should be available")
	}
	if report.Redis.Available {
		t.Error("redis should be unavailable")
	}

	if !c.IsHealthy(context.Background()) {
		t.Error("coordinator with working memory should be healthy")
	}
	if !c.IsMemoryAvailable() {
		t.Error("memory should be available")
	}
	if c.IsRedisAvailable() {
		t.Error("redis should not be available")
	}
}

func TestCoordinator_Closed(t *testing.T) {
	c := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.CloseWithTimeout(time.Second); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var got string
	if err := c.Get(ctx, "k", &got); !errors.Is(err, types.ErrClosed) {
		t.Errorf("Get after close: got %v", err)
	}
	if err := c.Set(ctx, "k", "v"); !errors.Is(err, types.ErrClosed) {
		t.Errorf("Set after close: got %v", err)
	}
	if err := c.GetOrFetch(ctx, "k", &got, func() (any, error) { return "v", nil }); !errors.Is(err, types.ErrClosed) {
		t.Errorf("GetOrFetch after close: got %v", err)
	}
	if err := c.Invalidate(ctx, "k"); !errors.Is(err, types.ErrClosed) {
		t.Errorf("Invalidate after close: got %v", err)
	}

	// Close is idempotent.
	if err := c.CloseWithTimeout(time.Second); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestCoordinator_DefaultsFromConfig(t *testing.T) {
	cfg := config.ForTesting()
	cfg.Defaults.UseRedis = false
	cfg.Defaults.TTL = 42 * time.Second

	c, err := NewCoordinator(cfg, nil)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	t.Cleanup(func() { _ = c.CloseWithTimeout(time.Second) })

	opts := c.applyDefaults()
	if opts.UseRedis {
		t.Error("config default UseRedis=false not applied")
	}
	if !opts.UseMemory {
		t.Error("config default UseMemory=true not applied")
	}
	if opts.TTL != 42*time.Second {
		t.Errorf("config default TTL not applied: %v", opts.TTL)
	}

	// Per-call options override the configured defaults.
	opts = c.applyDefaults(func(o *types.CacheOptions) { o.UseRedis = true })
	if !opts.UseRedis {
		t.Error("per-call option should override config default")
	}
}
