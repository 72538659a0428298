package types

import "time"

// HealthStatus represents the overall health state.
type HealthStatus int

const (
	// HealthStatusHealthy indicates all tiers operating normally.
	HealthStatusHealthy HealthStatus = iota + 1
	// HealthStatusDegraded indicates partial functionality (e.g., Redis down).
	HealthStatusDegraded
	// HealthStatusUnhealthy indicates critical failure.
	HealthStatusUnhealthy
)

// String returns the string representation of health status.
func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// HealthReport contains overall cache health information.
type HealthReport struct {
	Timestamp time.Time
	Redis     RedisHealth
	Memory    MemoryHealth
	Status    HealthStatus
}

// MemoryHealth contains memory-tier health details.
type MemoryHealth struct {
	Status        HealthStatus
	Available     bool
	EntryCount    int
	SizeBytes     int64
	MaxSizeBytes  int64
	HitCount      int64
	MissCount     int64
	HitRatio      float64
	EvictionCount int64
}

// RedisHealth contains Redis-tier health details.
type RedisHealth struct {
	Status        HealthStatus
	Available     bool
	Connected     bool
	CircuitState  string
	PendingWrites int
	DroppedWrites int64
}

// MetricsSnapshot contains a point-in-time view of cache metrics.
type MetricsSnapshot struct {
	Timestamp time.Time

	MemoryHits   int64
	MemoryMisses int64
	RedisHits    int64
	RedisMisses  int64
	Fetches      int64
	FetchErrors  int64

	GetCount    int64
	SetCount    int64
	DeleteCount int64
	ErrorCount  int64

	// Latency metrics (milliseconds)
	AvgLatencyMs float64
	P50LatencyMs float64
	P95LatencyMs float64
	P99LatencyMs float64
}

// MemoryHitRatio calculates the memory-tier hit ratio.
func (s *MetricsSnapshot) MemoryHitRatio() float64 {
	total := s.MemoryHits + s.MemoryMisses
	if total == 0 {
		return 0
	}
	return float64(s.MemoryHits) / float64(total)
}

// RedisHitRatio calculates the Redis-tier hit ratio.
func (s *MetricsSnapshot) RedisHitRatio() float64 {
	total := s.RedisHits + s.RedisMisses
	if total == 0 {
		return 0
	}
	return float64(s.RedisHits) / float64(total)
}

// TotalHitRatio calculates the overall cache hit ratio.
func (s *MetricsSnapshot) TotalHitRatio() float64 {
	totalHits := s.MemoryHits + s.RedisHits
	totalMisses := s.MemoryMisses + s.RedisMisses
	total := totalHits + totalMisses
	if total == 0 {
		return 0
	}
	return float64(totalHits) / float64(total)
}
