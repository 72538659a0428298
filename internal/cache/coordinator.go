package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/resilience"
	"github.com/mwhitt/parkcache/internal/types"
)

// DefaultShutdownTimeout is the default timeout for shutting down the coordinator.
const DefaultShutdownTimeout = 30 * time.Second

// DefaultBackgroundOpTimeout is the default timeout for background operations.
const DefaultBackgroundOpTimeout = 5 * time.Second

// FetchFunc produces a value on a full cache miss. It is invoked at most
// once per GetOrFetch call, and concurrent misses for the same key share a
// single invocation.
type FetchFunc func() (any, error)

// Coordinator hides the two-tier topology behind a single cache-aside API:
// lookups check memory, then Redis, then the caller-supplied fetch function,
// filling both enabled tiers on the way out.
type Coordinator struct {
	memory         types.MemoryTier
	redis          types.RedisTier
	guard          *resilience.Guard
	serializer     types.Serializer
	config         *config.Config
	metrics        types.MetricsRecorder
	logger         *slog.Logger
	keyValidator   *types.KeyValidator
	shutdownCancel context.CancelFunc
	shutdownCtx    context.Context
	flight         singleflight.Group
	bgWg           sync.WaitGroup
	bgMu           sync.Mutex
	closed         atomic.Bool
}

// NewCoordinator creates a coordinator with the given configuration and options.
func NewCoordinator(cfg *config.Config, opts *types.CoordinatorOptions) (*Coordinator, error) {
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = slog.New(slogAdapter{logger: opts.Logger})
	}
	logger = logger.With("component", "cache-coordinator")

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	c := &Coordinator{
		config:         cfg,
		logger:         logger,
		serializer:     NewJSONSerializer(),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	if opts != nil {
		if opts.Serializer != nil {
			c.serializer = opts.Serializer
		}
		if opts.Metrics != nil {
			c.metrics = opts.Metrics
		}
		if opts.RedisAddress != "" {
			cfg.Redis.Address = opts.RedisAddress
		}
		if !opts.RedisPassword.IsEmpty() {
			cfg.Redis.Password = opts.RedisPassword
		}
		if opts.RedisDB != 0 {
			cfg.Redis.DB = opts.RedisDB
		}
		if opts.DisableRedis {
			cfg.Redis.Enabled = false
		}
		if opts.DisableResilience {
			cfg.CircuitBreaker.Enabled = false
			cfg.Retry.Enabled = false
		}
	}

	if cfg.KeyValidation.Enabled {
		c.keyValidator = types.NewKeyValidator(cfg.KeyValidation.ToTypesConfig())
	}

	if cfg.Memory.Enabled {
		memTier, err := NewMemoryTier(cfg.Memory, logger)
		if err != nil {
			return nil, err
		}
		c.memory = memTier
	} else {
		c.memory = NewDisabledMemoryTier()
	}

	if cfg.Redis.Enabled {
		redisTier, err := NewRedisTier(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to create Redis tier, using memory-only mode", "error", err)
			c.redis = NewDisabledRedisTier()
		} else {
			c.redis = redisTier
		}
	} else {
		c.redis = NewDisabledRedisTier()
	}

	c.guard = resilience.NewGuard(cfg)

	c.guard.SetOnCircuitStateChange(func(from, to resilience.State) {
		logger.Info("Circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
		if c.metrics != nil {
			c.metrics.RecordCircuitStateChange(from.String(), to.String())
		}
	})

	return c, nil
}

// Get retrieves a value from the enabled tiers without invoking any fetch
// fallback. Returns ErrCacheMiss when no tier holds the key.
func (c *Coordinator) Get(ctx context.Context, key string, dest any, opts ...types.Option) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.validateKey(key); err != nil {
		return err
	}

	start := time.Now()
	options := c.applyDefaults(opts...)

	data, tier, err := c.lookup(ctx, key, options)
	latency := time.Since(start)

	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordMiss(tier, key, latency)
		}
		return err
	}

	if err := c.serializer.Unmarshal(data, dest); err != nil {
		c.logger.Debug("Deserialization failed", "key", key, "error", err)
		return err
	}

	if c.metrics != nil {
		c.metrics.RecordHit(tier, key, latency)
	}

	return nil
}

// lookup checks memory then Redis according to the options. Tier-access
// failures are logged and treated as a miss so a flaky tier degrades rather
// than failing reads.
func (c *Coordinator) lookup(ctx context.Context, key string, options *types.CacheOptions) ([]byte, string, error) {
	if options.UseMemory {
		data, err := c.memory.Get(ctx, key)
		if err == nil {
			return data, "memory", nil
		}
		if !types.IsCacheMiss(err) {
			c.logger.Debug("Memory tier error treated as miss", "key", key, "error", err)
			if c.metrics != nil {
				c.metrics.RecordError("memory", "Get", err)
			}
		}
	}

	if options.UseRedis {
		data, err := c.getFromRedis(ctx, key)
		if err == nil {
			if options.UseMemory {
				c.promote(key, data)
			}
			return data, "redis", nil
		}
		if !types.IsCacheMiss(err) && !types.IsRedisUnavailable(err) {
			c.logger.Debug("Redis tier error treated as miss", "key", key, "error", err)
			if c.metrics != nil {
				c.metrics.RecordError("redis", "Get", err)
			}
		}
	}

	tier := "redis"
	if options.UseMemory && !options.UseRedis {
		tier = "memory"
	}
	return nil, tier, types.ErrCacheMiss
}

// promote writes a Redis hit into the memory tier in the background.
func (c *Coordinator) promote(key string, data []byte) {
	c.runBackground(func(ctx context.Context) {
		if err := c.memory.Set(ctx, key, data, nil); err != nil {
			c.logger.Debug("Failed to promote Redis hit into memory", "key", key, "error", err)
		}
	})
}

// getFromRedis reads from Redis through the resilience guard.
func (c *Coordinator) getFromRedis(ctx context.Context, key string) ([]byte, error) {
	if !c.redis.IsAvailable() {
		return nil, types.ErrRedisUnavailable
	}

	var data []byte
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		var getErr error
		data, getErr = c.redis.Get(ctx, key)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetOrFetch retrieves a value, falling back to fetch on a full miss and
// filling both enabled tiers with the result. Concurrent callers missing the
// same key are coalesced onto a single fetch invocation.
//
// A fetch error propagates unchanged and leaves both tiers untouched.
func (c *Coordinator) GetOrFetch(ctx context.Context, key string, dest any, fetch FetchFunc, opts ...types.Option) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if fetch == nil {
		return types.ErrNilFetch
	}

	if err := c.validateKey(key); err != nil {
		return err
	}

	err := c.Get(ctx, key, dest, opts...)
	if err == nil {
		return nil
	}

	if !types.IsCacheMiss(err) {
		return err
	}

	options := c.applyDefaults(opts...)

	result, err, _ := c.flight.Do(key, func() (any, error) {
		// A concurrent caller may have filled the key while we waited our
		// turn; re-check the tiers before fetching.
		if data, _, lookupErr := c.lookup(ctx, key, options); lookupErr == nil {
			return data, nil
		}

		start := time.Now()
		value, fetchErr := fetch()
		if c.metrics != nil {
			c.metrics.RecordFetch(key, time.Since(start), fetchErr)
		}
		if fetchErr != nil {
			return nil, fetchErr
		}

		data, marshalErr := c.serializer.Marshal(value)
		if marshalErr != nil {
			return nil, marshalErr
		}

		c.fill(ctx, key, data, options)
		return data, nil
	})

	if err != nil {
		return err
	}

	data, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected singleflight result type: %T", result)
	}

	return c.serializer.Unmarshal(data, dest)
}

// fill writes a fetched value to the enabled tiers: Redis first (with the
// TTL), then memory. Fill failures are logged, not returned; the fetched
// value is still served to the caller.
func (c *Coordinator) fill(ctx context.Context, key string, data []byte, options *types.CacheOptions) {
	start := time.Now()

	if options.UseRedis {
		err := c.guard.Do(ctx, func(ctx context.Context) error {
			return c.redis.Set(ctx, key, data, options)
		})
		if err != nil && !types.IsRedisUnavailable(err) {
			c.logger.Warn("Redis fill failed", "key", key, "error", err)
			if c.metrics != nil {
				c.metrics.RecordError("redis", "Set", err)
			}
		}
	}

	if options.UseMemory {
		if err := c.memory.Set(ctx, key, data, options); err != nil {
			c.logger.Warn("Memory fill failed", "key", key, "error", err)
			if c.metrics != nil {
				c.metrics.RecordError("memory", "Set", err)
			}
		}
	}

	if c.metrics != nil {
		c.metrics.RecordSet(options.Tiers(), key, len(data), time.Since(start))
	}
}

// Set stores a value in the enabled tiers.
func (c *Coordinator) Set(ctx context.Context, key string, value any, opts ...types.Option) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.validateKey(key); err != nil {
		return err
	}

	start := time.Now()
	options := c.applyDefaults(opts...)

	data, err := c.serializer.Marshal(value)
	if err != nil {
		return err
	}

	var errs []error

	if options.UseMemory {
		if memErr := c.memory.Set(ctx, key, data, options); memErr != nil {
			errs = append(errs, memErr)
		}
	}

	if options.UseRedis {
		redisErr := c.guard.Do(ctx, func(ctx context.Context) error {
			return c.redis.Set(ctx, key, data, options)
		})
		if redisErr != nil && !options.FireAndForget {
			if options.UseMemory && types.IsRedisUnavailable(redisErr) {
				c.logger.Warn("Redis SET failed, wrote to memory only", "key", key, "error", redisErr)
			} else if !options.UseMemory {
				errs = append(errs, redisErr)
			}
		}
	}

	if c.metrics != nil {
		c.metrics.RecordSet(options.Tiers(), key, len(data), time.Since(start))
	}

	return errors.Join(errs...)
}

// Contains checks if a key exists in any enabled tier.
func (c *Coordinator) Contains(ctx context.Context, key string, opts ...types.Option) (bool, error) {
	if c.closed.Load() {
		return false, types.ErrClosed
	}

	if err := c.validateKey(key); err != nil {
		return false, err
	}

	options := c.applyDefaults(opts...)

	if options.UseMemory {
		exists, err := c.memory.Contains(ctx, key)
		if err != nil {
			c.logger.Debug("Memory contains check failed", "key", key, "error", err)
		} else if exists {
			return true, nil
		}
	}

	if options.UseRedis && c.redis.IsAvailable() {
		return c.redis.Contains(ctx, key)
	}

	return false, nil
}

// Invalidate removes a key from both tiers. Both deletes are always
// attempted; each tier's state is independent, so no ordering is guaranteed.
func (c *Coordinator) Invalidate(ctx context.Context, key string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	if err := c.validateKey(key); err != nil {
		return err
	}

	start := time.Now()

	var errs []error

	if err := c.memory.Delete(ctx, key); err != nil {
		errs = append(errs, err)
	}

	if err := c.redis.Delete(ctx, key); err != nil && !types.IsRedisUnavailable(err) {
		errs = append(errs, err)
	}

	if c.metrics != nil {
		c.metrics.RecordDelete("memory+redis", key, time.Since(start))
	}

	return errors.Join(errs...)
}

// InvalidatePattern removes all entries matching the glob from both tiers.
// The memory tier evaluates the glob client-side; the raw pattern string is
// handed to Redis, which interprets it in its own MATCH dialect.
func (c *Coordinator) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	var errs []error

	if err := c.memory.ClearByPattern(ctx, pattern); err != nil {
		errs = append(errs, err)
	}

	if err := c.redis.ClearByPattern(ctx, pattern); err != nil && !types.IsRedisUnavailable(err) {
		errs = append(errs, err)
	}

	if c.metrics != nil {
		c.metrics.RecordInvalidatePattern(pattern, -1)
	}

	return errors.Join(errs...)
}

// Clear removes all entries from both tiers.
func (c *Coordinator) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	var errs []error

	if err := c.memory.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.redis.Clear(ctx); err != nil && !types.IsRedisUnavailable(err) {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Health returns health metrics for both tiers.
func (c *Coordinator) Health(ctx context.Context) (*types.HealthReport, error) {
	report := &types.HealthReport{
		Timestamp: time.Now(),
	}

	memStats := c.memory.Stats()
	report.Memory = types.MemoryHealth{
		Status:        types.HealthStatusHealthy,
		Available:     c.memory.IsAvailable(),
		EntryCount:    c.memory.EntryCount(),
		SizeBytes:     c.memory.Size(),
		MaxSizeBytes:  c.memory.MaxSize(),
		HitCount:      memStats.Hits,
		MissCount:     memStats.Misses,
		HitRatio:      c.memory.HitRatio(),
		EvictionCount: memStats.Evictions,
	}

	report.Redis = types.RedisHealth{
		Status:        types.HealthStatusHealthy,
		Available:     c.redis.IsAvailable(),
		Connected:     c.redis.IsAvailable(),
		CircuitState:  c.guard.CircuitState().String(),
		PendingWrites: c.redis.PendingWrites(),
		DroppedWrites: c.redis.DroppedWrites(),
	}

	if !c.redis.IsAvailable() {
		report.Redis.Status = types.HealthStatusUnhealthy
	}

	switch {
	case report.Memory.Status == types.HealthStatusHealthy && report.Redis.Status == types.HealthStatusHealthy:
		report.Status = types.HealthStatusHealthy
	case report.Memory.Status == types.HealthStatusHealthy:
		report.Status = types.HealthStatusDegraded
	default:
		report.Status = types.HealthStatusUnhealthy
	}

	return report, nil
}

// IsHealthy returns true if the cache is functioning normally.
func (c *Coordinator) IsHealthy(ctx context.Context) bool {
	return c.memory.IsAvailable()
}

// IsRedisAvailable returns true if Redis is connected and the circuit is not open.
func (c *Coordinator) IsRedisAvailable() bool {
	return c.redis.IsAvailable() && !c.guard.IsCircuitOpen()
}

// IsMemoryAvailable returns true if the memory tier is available.
func (c *Coordinator) IsMemoryAvailable() bool {
	return c.memory.IsAvailable()
}

// Close releases all resources using the default shutdown timeout.
// It waits for in-flight background promotions before closing the tiers.
func (c *Coordinator) Close() error {
	return c.CloseWithTimeout(DefaultShutdownTimeout)
}

// CloseWithTimeout releases all resources with a configurable timeout.
// If background operations don't complete within the timeout, it returns
// ErrShutdownTimeout but still proceeds to close the tiers.
func (c *Coordinator) CloseWithTimeout(timeout time.Duration) error {
	// Acquire bgMu to prevent new background operations from starting.
	// This synchronizes with runBackground so no Add happens after closed
	// is set and before Wait completes.
	c.bgMu.Lock()
	if c.closed.Swap(true) {
		c.bgMu.Unlock()
		return nil
	}
	c.shutdownCancel()
	c.bgMu.Unlock()

	c.logger.Info("Closing coordinator, waiting for background operations", "timeout", timeout)

	done := make(chan struct{})
	go func() {
		c.bgWg.Wait()
		close(done)
	}()

	var timedOut bool
	select {
	case <-done:
		c.logger.Info("Background operations complete, closing tiers")
	case <-time.After(timeout):
		c.logger.Warn("Shutdown timeout exceeded, proceeding with close", "timeout", timeout)
		timedOut = true
	}

	var errs []error

	if timedOut {
		errs = append(errs, types.ErrShutdownTimeout)
	}

	if err := c.memory.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := c.redis.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// runBackground executes fn in a goroutine tracked for graceful shutdown.
func (c *Coordinator) runBackground(fn func(ctx context.Context)) {
	c.bgMu.Lock()
	if c.closed.Load() {
		c.bgMu.Unlock()
		return
	}
	c.bgWg.Add(1)
	c.bgMu.Unlock()

	go func() {
		defer c.bgWg.Done()
		ctx, cancel := context.WithTimeout(c.shutdownCtx, DefaultBackgroundOpTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (c *Coordinator) validateKey(key string) error {
	if c.keyValidator == nil {
		return nil
	}
	return c.keyValidator.Validate(key)
}

// applyDefaults starts from the configured per-call defaults, then applies
// the caller's options on top.
func (c *Coordinator) applyDefaults(opts ...types.Option) *types.CacheOptions {
	options := &types.CacheOptions{
		TTL:           c.config.Defaults.TTL,
		UseMemory:     c.config.Defaults.UseMemory,
		UseRedis:      c.config.Defaults.UseRedis,
		FireAndForget: c.config.Defaults.FireAndForget,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

type slogAdapter struct {
	attrs  []slog.Attr
	logger types.Logger
	group  string // current group prefix from WithGroup calls
}

// Enabled implements slog.Handler.
func (a slogAdapter) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (a slogAdapter) Handle(ctx context.Context, r slog.Record) error {
	args := make([]any, 0, (len(a.attrs)+r.NumAttrs())*2)

	for _, attr := range a.attrs {
		key := attr.Key
		if a.group != "" {
			key = a.group + "." + key
		}
		args = append(args, key, attr.Value.Any())
	}

	r.Attrs(func(attr slog.Attr) bool {
		key := attr.Key
		if a.group != "" {
			key = a.group + "." + key
		}
		args = append(args, key, attr.Value.Any())
		return true
	})

	switch r.Level {
	case slog.LevelDebug:
		a.logger.Debug(r.Message, args...)
	case slog.LevelInfo:
		a.logger.Info(r.Message, args...)
	case slog.LevelWarn:
		a.logger.Warn(r.Message, args...)
	case slog.LevelError:
		a.logger.Error(r.Message, args...)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (a slogAdapter) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(a.attrs), len(a.attrs)+len(attrs))
	copy(newAttrs, a.attrs)
	newAttrs = append(newAttrs, attrs...)
	return slogAdapter{
		logger: a.logger,
		attrs:  newAttrs,
		group:  a.group,
	}
}

// WithGroup implements slog.Handler.
func (a slogAdapter) WithGroup(name string) slog.Handler {
	newGroup := name
	if a.group != "" {
		newGroup = a.group + "." + name
	}
	return slogAdapter{
		logger: a.logger,
		attrs:  a.attrs,
		group:  newGroup,
	}
}
