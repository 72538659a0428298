package config

import "time"

// Default facade TTLs. Park metadata and attraction descriptions change
// rarely; operating hours a few times daily; wait times are highly volatile;
// historical aggregates are expensive to recompute and safe to hold a day.
const (
	DefaultParkTTL            = time.Hour
	DefaultParkHoursTTL       = 30 * time.Minute
	DefaultAttractionTTL      = time.Hour
	DefaultWaitTimeTTL        = 5 * time.Minute
	DefaultWaitTimeHistoryTTL = 24 * time.Hour
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			Enabled:         true,
			MaxSizeMB:       256,
			DefaultTTL:      5 * time.Minute,
			CleanupInterval: 10 * time.Second,
			Shards:          1024,
			MaxEntrySize:    10 * 1024 * 1024, // 10MB
		},
		Redis: RedisConfig{
			Enabled:             false,
			Address:             "localhost:6379",
			Password:            SecretString{},
			DB:                  0,
			KeyPrefix:           "parkcache:",
			DefaultTTL:          15 * time.Minute,
			PoolSize:            100,
			MinIdleConns:        10,
			DialTimeout:         5 * time.Second,
			ReadTimeout:         3 * time.Second,
			WriteTimeout:        3 * time.Second,
			PoolTimeout:         4 * time.Second,
			MaxPendingWrites:    500,
			EnableTLS:           false,
			TLSSkipVerify:       false,
			HealthCheckInterval: 5 * time.Second,
		},
		Defaults: DefaultsConfig{
			TTL:           0,
			UseMemory:     true,
			UseRedis:      true,
			FireAndForget: false,
		},
		Facades: FacadesConfig{
			ParkTTL:            DefaultParkTTL,
			ParkHoursTTL:       DefaultParkHoursTTL,
			AttractionTTL:      DefaultAttractionTTL,
			WaitTimeTTL:        DefaultWaitTimeTTL,
			WaitTimeHistoryTTL: DefaultWaitTimeHistoryTTL,
		},
		// Resilience around Redis is available but off by default: a tier
		// failure is logged and treated as a miss either way.
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             false,
			FailureThreshold:    5,
			SuccessThreshold:    2,
			OpenDuration:        30 * time.Second,
			HalfOpenMaxRequests: 3,
		},
		Retry: RetryConfig{
			Enabled:        false,
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Multiplier:     2.0,
			Jitter:         true,
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			PublishInterval: 10 * time.Second,
			DataDog: DataDogConfig{
				Enabled:   false,
				AgentHost: "127.0.0.1",
				Port:      8125,
				Prefix:    "parkcache",
				Tags:      []string{},
			},
		},
		KeyValidation: KeyValidationConfig{
			Enabled:           true,
			MaxKeyLength:      1024,
			AllowEmpty:        false,
			AllowControlChars: false,
			AllowWhitespace:   true,
		},
	}
}

// ForTesting returns a minimal configuration suitable for unit tests.
func ForTesting() *Config {
	return &Config{
		Memory: MemoryConfig{
			Enabled:         true,
			MaxSizeMB:       16,
			DefaultTTL:      1 * time.Minute,
			CleanupInterval: 1 * time.Second,
			Shards:          64,
			MaxEntrySize:    1024 * 1024, // 1MB
		},
		Redis: RedisConfig{
			Enabled:             false, // Disabled for unit tests
			Address:             "localhost:6379",
			KeyPrefix:           "test:",
			DefaultTTL:          1 * time.Minute,
			PoolSize:            10,
			MinIdleConns:        1,
			DialTimeout:         1 * time.Second,
			ReadTimeout:         1 * time.Second,
			WriteTimeout:        1 * time.Second,
			PoolTimeout:         1 * time.Second,
			MaxPendingWrites:    50,
			HealthCheckInterval: 0,
		},
		Defaults: DefaultsConfig{
			TTL:           1 * time.Minute,
			UseMemory:     true,
			UseRedis:      true,
			FireAndForget: false,
		},
		Facades: FacadesConfig{},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             false,
			FailureThreshold:    3,
			SuccessThreshold:    1,
			OpenDuration:        1 * time.Second,
			HalfOpenMaxRequests: 1,
		},
		Retry: RetryConfig{
			Enabled:        false,
			MaxAttempts:    1,
			InitialBackoff: 10 * time.Millisecond,
			MaxBackoff:     100 * time.Millisecond,
			Multiplier:     2.0,
			Jitter:         false,
		},
		Metrics: MetricsConfig{
			Enabled:         false,
			PublishInterval: 1 * time.Second,
		},
		KeyValidation: KeyValidationConfig{
			Enabled:           true,
			MaxKeyLength:      1024,
			AllowEmpty:        false,
			AllowControlChars: false,
			AllowWhitespace:   true,
		},
	}
}

// ForTestingWithRedis returns a test config with Redis enabled.
func ForTestingWithRedis(addr string) *Config {
	cfg := ForTesting()
	cfg.Redis.Enabled = true
	cfg.Redis.Address = addr
	return cfg
}
