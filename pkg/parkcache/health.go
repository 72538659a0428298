package parkcache

import (
	"github.com/mwhitt/parkcache/internal/types"
)

type (
	// HealthStatus represents the overall health state.
	HealthStatus = types.HealthStatus

	// HealthReport contains overall cache health information.
	HealthReport = types.HealthReport

	// MemoryHealth contains memory-tier health details.
	MemoryHealth = types.MemoryHealth

	// RedisHealth contains Redis-tier health details.
	RedisHealth = types.RedisHealth

	// MetricsSnapshot contains a point-in-time view of cache metrics.
	MetricsSnapshot = types.MetricsSnapshot
)

const (
	HealthStatusHealthy   = types.HealthStatusHealthy
	HealthStatusDegraded  = types.HealthStatusDegraded
	HealthStatusUnhealthy = types.HealthStatusUnhealthy
)
