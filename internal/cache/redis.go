package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/types"
)

const (
	disconnectErrorThreshold = 5
	asyncWriteTimeout        = 2 * time.Second
)

// RedisTier implements the remote cache tier on go-redis.
type RedisTier struct {
	client *redis.Client
	config config.RedisConfig
	logger *slog.Logger

	mu            sync.RWMutex
	connected     atomic.Bool
	lastError     error
	lastErrorTime time.Time
	errorCount    atomic.Int64

	writeQueue    chan writeOp
	pendingWrites atomic.Int32
	droppedWrites atomic.Int64
	stopCh        chan struct{}
	wg            sync.WaitGroup

	healthCheckStopCh chan struct{}
	healthCheckWg     sync.WaitGroup

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

type writeOp struct {
	key   string
	value []byte
	ttl   time.Duration
}

// NewRedisTier connects to Redis and starts the async write and health-check
// workers. A failed initial connection is not fatal; the tier reports
// unavailable until a health check succeeds.
func NewRedisTier(cfg config.RedisConfig, logger *slog.Logger) (*RedisTier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password.Value(),
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	}

	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: cfg.TLSSkipVerify,
		}
		if cfg.TLSSkipVerify {
			logger.Warn("TLS certificate verification is disabled - this is insecure for production use")
		}
	}

	client := redis.NewClient(opts)

	rt := &RedisTier{
		client:            client,
		config:            cfg,
		logger:            logger.With("component", "redis-tier"),
		writeQueue:        make(chan writeOp, cfg.MaxPendingWrites),
		stopCh:            make(chan struct{}),
		healthCheckStopCh: make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		rt.logger.Warn("Redis initial connection failed", "error", err)
		rt.setError(err)
		// Don't return error - allow graceful degradation
	} else {
		rt.connected.Store(true)
		rt.logger.Info("Redis connected", "address", cfg.Address)
	}

	rt.wg.Add(1)
	go rt.asyncWriteWorker()

	if cfg.HealthCheckInterval > 0 {
		rt.healthCheckWg.Add(1)
		go rt.healthCheckWorker()
	}

	return rt, nil
}

func (c *RedisTier) Name() string {
	return "redis"
}

func (c *RedisTier) IsAvailable() bool {
	return c.connected.Load()
}

func (c *RedisTier) prefixKey(key string) string {
	return c.config.KeyPrefix + key
}

func (c *RedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.connected.Load() {
		return nil, types.ErrRedisUnavailable
	}

	data, err := c.client.Get(ctx, c.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return nil, types.ErrCacheMiss
		}
		c.handleError(err)
		return nil, types.NewCacheError("Get", key, "redis", err)
	}

	c.hits.Add(1)
	c.clearError()

	return data, nil
}

func (c *RedisTier) Set(ctx context.Context, key string, value []byte, opts *types.CacheOptions) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}

	if opts == nil {
		opts = types.DefaultOptions()
	}

	ttl := c.config.DefaultTTL
	if opts.TTL > 0 {
		ttl = opts.TTL
	}

	prefixedKey := c.prefixKey(key)

	if opts.FireAndForget {
		return c.setAsync(prefixedKey, value, ttl)
	}

	if err := c.client.Set(ctx, prefixedKey, value, ttl).Err(); err != nil {
		c.handleError(err)
		return types.NewCacheError("Set", key, "redis", err)
	}

	c.sets.Add(1)
	c.clearError()

	return nil
}

func (c *RedisTier) setAsync(key string, value []byte, ttl time.Duration) error {
	select {
	case c.writeQueue <- writeOp{key: key, value: value, ttl: ttl}:
		c.pendingWrites.Add(1)
		return nil
	default:
		c.droppedWrites.Add(1)
		c.logger.Warn("Write queue full, dropping SET",
			"key", key,
			"dropped_total", c.droppedWrites.Load(),
		)
		return types.ErrWriteQueueFull
	}
}

func (c *RedisTier) asyncWriteWorker() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			// Drain whatever is queued before exiting.
			for {
				select {
				case op := <-c.writeQueue:
					c.executeWrite(op)
				default:
					return
				}
			}
		case op := <-c.writeQueue:
			c.executeWrite(op)
		}
	}
}

func (c *RedisTier) executeWrite(op writeOp) {
	defer c.pendingWrites.Add(-1)

	ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
	defer cancel()

	if err := c.client.Set(ctx, op.key, op.value, op.ttl).Err(); err != nil {
		c.handleError(err)
		c.logger.Debug("Async SET failed", "key", op.key, "error", err)
	} else {
		c.sets.Add(1)
		c.clearError()
	}
}

func (c *RedisTier) healthCheckWorker() {
	defer c.healthCheckWg.Done()

	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.healthCheckStopCh:
			return
		case <-ticker.C:
			c.performHealthCheck()
		}
	}
}

func (c *RedisTier) performHealthCheck() {
	wasConnected := c.connected.Load()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.DialTimeout)
	defer cancel()

	err := c.client.Ping(ctx).Err()
	if err != nil {
		if wasConnected {
			c.logger.Warn("Redis health check failed", "error", err)
			c.setError(err)
		}
		return
	}

	if !wasConnected {
		c.connected.Store(true)
		c.errorCount.Store(0)
		c.logger.Info("Redis connection restored via health check")
	}
}

func (c *RedisTier) Delete(ctx context.Context, key string) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}

	if err := c.client.Del(ctx, c.prefixKey(key)).Err(); err != nil {
		c.handleError(err)
		return types.NewCacheError("Delete", key, "redis", err)
	}

	c.deletes.Add(1)
	c.clearError()

	return nil
}

func (c *RedisTier) Contains(ctx context.Context, key string) (bool, error) {
	if !c.connected.Load() {
		return false, types.ErrRedisUnavailable
	}

	exists, err := c.client.Exists(ctx, c.prefixKey(key)).Result()
	if err != nil {
		c.handleError(err)
		return false, types.NewCacheError("Contains", key, "redis", err)
	}

	c.clearError()
	return exists > 0, nil
}

func (c *RedisTier) Clear(ctx context.Context) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}

	return c.clearByPatternInternal(ctx, c.prefixKey("*"))
}

// ClearByPattern deletes keys matching the pattern. The pattern is passed
// through as Redis MATCH syntax after prefixing; it is the remote dialect of
// the same glob the memory tier evaluates client-side.
func (c *RedisTier) ClearByPattern(ctx context.Context, pattern string) error {
	if !c.connected.Load() {
		return types.ErrRedisUnavailable
	}

	return c.clearByPatternInternal(ctx, c.prefixKey(pattern))
}

func (c *RedisTier) clearByPatternInternal(ctx context.Context, pattern string) error {
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err)
			return types.NewCacheError("ClearByPattern", pattern, "redis", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err)
				return types.NewCacheError("ClearByPattern", pattern, "redis", err)
			}
			deleted += int64(len(keys))
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Cleared keys by pattern", "pattern", pattern, "deleted", deleted)
	c.clearError()
	return nil
}

func (c *RedisTier) Close() error {
	c.connected.Store(false)

	close(c.healthCheckStopCh)
	c.healthCheckWg.Wait()

	close(c.stopCh)
	c.wg.Wait()

	return c.client.Close()
}

func (c *RedisTier) PendingWrites() int {
	return int(c.pendingWrites.Load())
}

func (c *RedisTier) DroppedWrites() int64 {
	return c.droppedWrites.Load()
}

func (c *RedisTier) handleError(err error) {
	c.mu.Lock()
	c.lastError = err
	c.lastErrorTime = time.Now()
	c.mu.Unlock()

	if c.errorCount.Add(1) >= disconnectErrorThreshold {
		if c.connected.CompareAndSwap(true, false) {
			c.logger.Warn("Redis marked as disconnected after errors",
				"error_count", c.errorCount.Load(),
				"last_error", err,
			)
		}
	}
}

func (c *RedisTier) clearError() {
	if c.errorCount.Swap(0) > 0 {
		if c.connected.CompareAndSwap(false, true) {
			c.logger.Info("Redis connection restored")
		}
	}
}

func (c *RedisTier) setError(err error) {
	c.mu.Lock()
	c.lastError = err
	c.lastErrorTime = time.Now()
	c.mu.Unlock()
	c.connected.Store(false)
}

// LastError returns the most recent error and when it occurred.
func (c *RedisTier) LastError() (error, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError, c.lastErrorTime
}

// Ping checks connectivity to the Redis server.
func (c *RedisTier) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ types.RedisTier = (*RedisTier)(nil)
