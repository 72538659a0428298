// Package config provides configuration management for parkcache.
package config

import (
	"time"

	"github.com/mwhitt/parkcache/internal/types"
)

// SecretString is a string type that redacts its value when marshaled to JSON.
type SecretString = types.SecretString

// NewSecretString creates a new SecretString with the provided value.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}

// Config contains all configuration for the parkcache coordinator.
type Config struct {
	Redis          RedisConfig          `json:"redis"`
	Metrics        MetricsConfig        `json:"metrics"`
	CircuitBreaker CircuitBreakerConfig `json:"circuitBreaker"`
	Defaults       DefaultsConfig       `json:"defaults"`
	Memory         MemoryConfig         `json:"memory"`
	Retry          RetryConfig          `json:"retry"`
	Facades        FacadesConfig        `json:"facades"`
	KeyValidation  KeyValidationConfig  `json:"keyValidation"`
}

// KeyValidationConfig contains configuration for cache key validation.
type KeyValidationConfig struct {
	ReservedPatterns  []string `json:"reservedPatterns"`
	MaxKeyLength      int      `json:"maxKeyLength"`
	Enabled           bool     `json:"enabled"`
	AllowEmpty        bool     `json:"allowEmpty"`
	AllowControlChars bool     `json:"allowControlChars"`
	AllowWhitespace   bool     `json:"allowWhitespace"`
}

// ToTypesConfig converts this config to a types.KeyValidationConfig.
func (c KeyValidationConfig) ToTypesConfig() types.KeyValidationConfig {
	return types.KeyValidationConfig{
		MaxKeyLength:      c.MaxKeyLength,
		AllowEmpty:        c.AllowEmpty,
		AllowControlChars: c.AllowControlChars,
		AllowWhitespace:   c.AllowWhitespace,
		ReservedPatterns:  c.ReservedPatterns,
	}
}

// MemoryConfig contains configuration for the memory tier.
type MemoryConfig struct {
	DefaultTTL      time.Duration `json:"defaultTTL"`
	CleanupInterval time.Duration `json:"cleanupInterval"`
	MaxSizeMB       int           `json:"maxSizeMB"`
	Shards          int           `json:"shards"`
	MaxEntrySize    int           `json:"maxEntrySize"`
	Enabled         bool          `json:"enabled"`
}

// RedisConfig contains configuration for the Redis tier.
type RedisConfig struct {
	DefaultTTL          time.Duration `json:"defaultTTL"`
	DialTimeout         time.Duration `json:"dialTimeout"`
	ReadTimeout         time.Duration `json:"readTimeout"`
	WriteTimeout        time.Duration `json:"writeTimeout"`
	PoolTimeout         time.Duration `json:"poolTimeout"`
	HealthCheckInterval time.Duration `json:"healthCheckInterval"`
	Password            SecretString  `json:"password"`
	Address             string        `json:"address"`
	KeyPrefix           string        `json:"keyPrefix"`
	DB                  int           `json:"db"`
	PoolSize            int           `json:"poolSize"`
	MinIdleConns        int           `json:"minIdleConns"`
	MaxPendingWrites    int           `json:"maxPendingWrites"`
	Enabled             bool          `json:"enabled"`
	EnableTLS           bool          `json:"enableTLS"`
	TLSSkipVerify       bool          `json:"tlsSkipVerify"`
}

// DefaultsConfig contains default values for cache operations.
type DefaultsConfig struct {
	TTL time.Duration `json:"ttl"`
	// UseMemory and UseRedis set the per-call tier defaults.
	UseMemory bool `json:"useMemory"`
	UseRedis  bool `json:"useRedis"`
	// FireAndForget enables async Redis writes. When true, SET operations
	// are queued and may be dropped if the queue is full.
	FireAndForget bool `json:"fireAndForget"`
}

// FacadesConfig carries per-domain TTLs for the trip-planning facades.
// Zero values fall back to the documented defaults, so a config file only
// needs to name the TTLs it wants to change.
type FacadesConfig struct {
	ParkTTL            time.Duration `json:"parkTTL"`
	ParkHoursTTL       time.Duration `json:"parkHoursTTL"`
	AttractionTTL      time.Duration `json:"attractionTTL"`
	WaitTimeTTL        time.Duration `json:"waitTimeTTL"`
	WaitTimeHistoryTTL time.Duration `json:"waitTimeHistoryTTL"`
}

// CircuitBreakerConfig contains configuration for the circuit breaker
// guarding Redis round trips.
type CircuitBreakerConfig struct {
	Enabled             bool          `json:"enabled"`
	FailureThreshold    int           `json:"failureThreshold"`
	SuccessThreshold    int           `json:"successThreshold"`
	OpenDuration        time.Duration `json:"openDuration"`
	HalfOpenMaxRequests int           `json:"halfOpenMaxRequests"`
}

// RetryConfig contains configuration for the retry pattern.
type RetryConfig struct {
	InitialBackoff time.Duration `json:"initialBackoff"`
	MaxBackoff     time.Duration `json:"maxBackoff"`
	Multiplier     float64       `json:"multiplier"`
	MaxAttempts    int           `json:"maxAttempts"`
	Enabled        bool          `json:"enabled"`
	Jitter         bool          `json:"jitter"`
}

// MetricsConfig contains configuration for metrics publishing.
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog"`
	Enabled         bool          `json:"enabled"`
}

// DataDogConfig contains configuration for DataDog metrics publishing.
type DataDogConfig struct {
	Tags      []string `json:"tags"`
	AgentHost string   `json:"agentHost"`
	Prefix    string   `json:"prefix"`
	Port      int      `json:"port"`
	Enabled   bool     `json:"enabled"`
}
