// Package parkcache provides a two-tier caching layer for theme-park
// trip-planning data.
//
// parkcache hides a memory-then-Redis topology behind a single cache-aside
// API: lookups check the in-process tier first, then Redis, then a
// caller-supplied fetch function, filling both tiers on the way out. It
// degrades gracefully when Redis is down and exposes domain facades with
// TTLs tuned per data volatility.
//
// # Quick Start
//
// Create a memory-only cache (no Redis required):
//
//	cache, err := parkcache.NewMemoryOnly()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// # Cache Operations
//
// The primary entry point is GetOrFetch, which only invokes the fetch
// function on a full miss:
//
//	var park Park
//	err := cache.GetOrFetch(ctx, "park:mk", &park, func() (any, error) {
//	    // Runs at most once per miss, even under concurrent callers.
//	    return fetchParkFromAPI("mk")
//	})
//
// Direct set and get are available too:
//
//	err := cache.Set(ctx, "park:mk", park, parkcache.WithTTL(time.Hour))
//
//	var cached Park
//	err = cache.Get(ctx, "park:mk", &cached)
//
// # Invalidation
//
// Invalidate a single key or a glob of keys across both tiers:
//
//	cache.Invalidate(ctx, "park:mk")
//	cache.InvalidatePattern(ctx, "waittime:*")
//
// The memory tier evaluates the glob client-side; the raw pattern string is
// handed to Redis as MATCH syntax. Simple prefix globs like "park:*" behave
// identically in both dialects.
//
// # Options
//
// Functional options customize behavior per operation:
//
//	// Skip the in-process tier for cross-instance consistency.
//	cache.Set(ctx, "history:mk:2026-08-28", hist, parkcache.WithoutMemory())
//
//	// Don't block on the Redis write.
//	cache.Set(ctx, "waittime:sm", wt, parkcache.WithFireAndForget())
//
// # Domain Facades
//
// For trip-planning data, the ParkCache facade bakes in key schemas and
// per-domain TTLs:
//
//	parks := parkcache.NewParkCache(cache)
//	park, err := parks.ParkData(ctx, "mk", func() (*Park, error) {
//	    return fetchParkFromAPI("mk")
//	})
//
// Typed[T] offers the same generic convenience for arbitrary keys:
//
//	users := parkcache.NewTyped[User](cache)
//	u, err := users.GetOrFetch(ctx, "user:1", func() (User, error) { ... })
//
// # Connecting Redis
//
//	cfg := parkcache.Config()
//	cfg.Redis.Enabled = true
//	cfg.Redis.Address = "localhost:6379"
//	cache, err := parkcache.NewFromConfig(cfg)
//
// Or load configuration from a JSON file with environment overrides:
//
//	cache, err := parkcache.NewFromFile("config.json")
//
// # Health and Metrics
//
// Check tier health and read operation counters at any time:
//
//	report, _ := cache.Health(ctx)
//	if report.Status == parkcache.HealthStatusHealthy {
//	    fmt.Println("both tiers operational")
//	}
//	fmt.Println(cache.Metrics().TotalHitRatio())
//
// When DataDog is enabled in the config, every operation is also published
// to the local StatsD agent and health gauges go out on an interval.
//
// # Thread Safety
//
// All operations are safe for concurrent use from multiple goroutines.
package parkcache
