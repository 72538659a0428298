package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.UseMemory {
		t.Error("Expected memory tier enabled by default")
	}
	if !opts.UseRedis {
		t.Error("Expected redis tier enabled by default")
	}
	if opts.TTL != 0 {
		t.Errorf("Expected no TTL override by default, got %v", opts.TTL)
	}
	if opts.FireAndForget {
		t.Error("Expected FireAndForget disabled by default")
	}
}

func TestApplyOptions(t *testing.T) {
	t.Run("no options returns defaults", func(t *testing.T) {
		opts := ApplyOptions()
		if !opts.UseMemory || !opts.UseRedis {
			t.Errorf("Expected both tiers enabled, got %+v", opts)
		}
	})

	t.Run("options compose", func(t *testing.T) {
		opts := ApplyOptions(
			func(o *CacheOptions) { o.TTL = time.Hour },
			func(o *CacheOptions) { o.UseMemory = false },
		)
		if opts.TTL != time.Hour {
			t.Errorf("Expected TTL 1h, got %v", opts.TTL)
		}
		if opts.UseMemory {
			t.Error("Expected memory tier disabled")
		}
		if !opts.UseRedis {
			t.Error("Expected redis tier still enabled")
		}
	})
}

func TestCacheOptionsTiers(t *testing.T) {
	tests := []struct {
		name      string
		useMemory bool
		useRedis  bool
		want      string
	}{
		{"both", true, true, "memory+redis"},
		{"memory only", true, false, "memory"},
		{"redis only", false, true, "redis"},
		{"none", false, false, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &CacheOptions{UseMemory: tt.useMemory, UseRedis: tt.useRedis}
			if got := o.Tiers(); got != tt.want {
				t.Errorf("Tiers() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheEntryIsExpired(t *testing.T) {
	t.Run("zero expiry never expires", func(t *testing.T) {
		e := &CacheEntry{Key: "k", Value: []byte("v")}
		if e.IsExpired() {
			t.Error("Entry without expiry should not be expired")
		}
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		e := &CacheEntry{ExpiresAt: time.Now().Add(-time.Minute)}
		if !e.IsExpired() {
			t.Error("Entry past its expiry should be expired")
		}
	})

	t.Run("future expiry is not expired", func(t *testing.T) {
		e := &CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}
		if e.IsExpired() {
			t.Error("Entry before its expiry should not be expired")
		}
	})
}

func TestCacheError(t *testing.T) {
	t.Run("formats with key", func(t *testing.T) {
		err := NewCacheError("Get", "park:mk", "redis", errors.New("boom"))
		msg := err.Error()
		for _, want := range []string{"Get", "park:mk", "redis", "boom"} {
			if !strings.Contains(msg, want) {
				t.Errorf("Error message %q missing %q", msg, want)
			}
		}
	})

	t.Run("formats without key", func(t *testing.T) {
		err := NewCacheError("Clear", "", "memory", errors.New("boom"))
		if strings.Contains(err.Error(), "[]") {
			t.Errorf("Error message should omit empty key brackets: %q", err.Error())
		}
	})

	t.Run("unwraps sentinel", func(t *testing.T) {
		err := NewCacheError("Get", "k", "redis", ErrCacheMiss)
		if !IsCacheMiss(err) {
			t.Error("Wrapped ErrCacheMiss should satisfy IsCacheMiss")
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cache miss", ErrCacheMiss, false},
		{"circuit open", ErrCircuitOpen, false},
		{"closed", ErrClosed, false},
		{"invalid key", ErrInvalidKey, false},
		{"wrapped miss", fmt.Errorf("outer: %w", ErrCacheMiss), false},
		{"network error", errors.New("connection refused"), true},
		{"redis unavailable", ErrRedisUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSecretString(t *testing.T) {
	t.Run("redacts in String", func(t *testing.T) {
		s := NewSecretString("hunter2")
		if s.String() != "[REDACTED]" {
			t.Errorf("Expected redacted string, got %q", s.String())
		}
		if s.Value() != "hunter2" {
			t.Errorf("Value() should return the raw secret")
		}
	})

	t.Run("empty stays empty", func(t *testing.T) {
		var s SecretString
		if s.String() != "" {
			t.Errorf("Empty secret should stringify empty, got %q", s.String())
		}
		if !s.IsEmpty() {
			t.Error("Expected IsEmpty for zero value")
		}
	})

	t.Run("redacts in JSON", func(t *testing.T) {
		s := NewSecretString("hunter2")
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != `"[REDACTED]"` {
			t.Errorf("Expected redacted JSON, got %s", data)
		}
	})

	t.Run("unmarshals raw value", func(t *testing.T) {
		var s SecretString
		if err := json.Unmarshal([]byte(`"pw"`), &s); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if s.Value() != "pw" {
			t.Errorf("Expected 'pw', got %q", s.Value())
		}
	})
}

func TestHealthStatusString(t *testing.T) {
	if HealthStatusHealthy.String() != "healthy" {
		t.Error("healthy")
	}
	if HealthStatusDegraded.String() != "degraded" {
		t.Error("degraded")
	}
	if HealthStatusUnhealthy.String() != "unhealthy" {
		t.Error("unhealthy")
	}
	if HealthStatus(0).String() != "unknown" {
		t.Error("unknown")
	}
}

func TestMetricsSnapshotRatios(t *testing.T) {
	s := &MetricsSnapshot{
		MemoryHits:   8,
		MemoryMisses: 2,
		RedisHits:    1,
		RedisMisses:  9,
	}

	if got := s.MemoryHitRatio(); got != 0.8 {
		t.Errorf("MemoryHitRatio = %v, want 0.8", got)
	}
	if got := s.RedisHitRatio(); got != 0.1 {
		t.Errorf("RedisHitRatio = %v, want 0.1", got)
	}
	if got := s.TotalHitRatio(); got != 0.45 {
		t.Errorf("TotalHitRatio = %v, want 0.45", got)
	}

	empty := &MetricsSnapshot{}
	if empty.MemoryHitRatio() != 0 || empty.RedisHitRatio() != 0 || empty.TotalHitRatio() != 0 {
		t.Error("Empty snapshot ratios should be 0")
	}
}
