package parkcache

import (
	"context"
	"fmt"

	"github.com/mwhitt/parkcache/internal/config"
)

// FacadeTTLs carries the per-domain TTLs used by ParkCache. Zero values
// fall back to the documented defaults.
type FacadeTTLs = config.FacadesConfig

// DefaultFacadeTTLs returns the documented per-domain TTLs: an hour for
// park metadata and attractions, 30 minutes for operating hours, 5 minutes
// for wait times, and a day for historical aggregates.
func DefaultFacadeTTLs() FacadeTTLs {
	return FacadeTTLs{
		ParkTTL:            config.DefaultParkTTL,
		ParkHoursTTL:       config.DefaultParkHoursTTL,
		AttractionTTL:      config.DefaultAttractionTTL,
		WaitTimeTTL:        config.DefaultWaitTimeTTL,
		WaitTimeHistoryTTL: config.DefaultWaitTimeHistoryTTL,
	}
}

// ParkCache is the trip-planning facade over a Cache. It bakes in the key
// schema and per-domain TTLs so callers never build keys or pick TTLs by
// hand.
//
// Key schema:
//
//	park:{parkID}
//	hours:{parkID}:{date}
//	attraction:{attractionID}
//	waittime:{attractionID}
//	history:{attractionID}:{date}
type ParkCache struct {
	cache Cache
	ttls  FacadeTTLs
}

// NewParkCache creates the facade with the default per-domain TTLs.
func NewParkCache(c Cache) *ParkCache {
	return NewParkCacheWithTTLs(c, DefaultFacadeTTLs())
}

// NewParkCacheWithTTLs creates the facade with custom per-domain TTLs.
// Zero TTLs are replaced with the defaults.
func NewParkCacheWithTTLs(c Cache, ttls FacadeTTLs) *ParkCache {
	defaults := DefaultFacadeTTLs()
	if ttls.ParkTTL <= 0 {
		ttls.ParkTTL = defaults.ParkTTL
	}
	if ttls.ParkHoursTTL <= 0 {
		ttls.ParkHoursTTL = defaults.ParkHoursTTL
	}
	if ttls.AttractionTTL <= 0 {
		ttls.AttractionTTL = defaults.AttractionTTL
	}
	if ttls.WaitTimeTTL <= 0 {
		ttls.WaitTimeTTL = defaults.WaitTimeTTL
	}
	if ttls.WaitTimeHistoryTTL <= 0 {
		ttls.WaitTimeHistoryTTL = defaults.WaitTimeHistoryTTL
	}

	return &ParkCache{
		cache: c,
		ttls:  ttls,
	}
}

// ParkKey returns the cache key for park metadata.
func ParkKey(parkID string) string {
	return "park:" + parkID
}

// ParkHoursKey returns the cache key for a park's operating hours on a
// date. Dates are YYYY-MM-DD strings.
func ParkHoursKey(parkID, date string) string {
	return fmt.Sprintf("hours:%s:%s", parkID, date)
}

// AttractionKey returns the cache key for attraction metadata.
func AttractionKey(attractionID string) string {
	return "attraction:" + attractionID
}

// WaitTimeKey returns the cache key for an attraction's current wait time.
func WaitTimeKey(attractionID string) string {
	return "waittime:" + attractionID
}

// WaitTimeHistoryKey returns the cache key for an attraction's historical
// wait-time aggregate on a date.
func WaitTimeHistoryKey(attractionID, date string) string {
	return fmt.Sprintf("history:%s:%s", attractionID, date)
}

// ParkData loads park metadata, fetching on a miss.
func (p *ParkCache) ParkData(ctx context.Context, parkID string, dest any, fetch FetchFunc) error {
	return p.cache.GetOrFetch(ctx, ParkKey(parkID), dest, fetch, WithTTL(p.ttls.ParkTTL))
}

// ParkHours loads a park's operating hours for a date, fetching on a miss.
func (p *ParkCache) ParkHours(ctx context.Context, parkID, date string, dest any, fetch FetchFunc) error {
	return p.cache.GetOrFetch(ctx, ParkHoursKey(parkID, date), dest, fetch, WithTTL(p.ttls.ParkHoursTTL))
}

// Attraction loads attraction metadata, fetching on a miss.
func (p *ParkCache) Attraction(ctx context.Context, attractionID string, dest any, fetch FetchFunc) error {
	return p.cache.GetOrFetch(ctx, AttractionKey(attractionID), dest, fetch, WithTTL(p.ttls.AttractionTTL))
}

// WaitTime loads an attraction's current wait time, fetching on a miss.
// Wait times are volatile, so the TTL is short.
func (p *ParkCache) WaitTime(ctx context.Context, attractionID string, dest any, fetch FetchFunc) error {
	return p.cache.GetOrFetch(ctx, WaitTimeKey(attractionID), dest, fetch, WithTTL(p.ttls.WaitTimeTTL))
}

// WaitTimeHistory loads an attraction's historical wait-time aggregate for
// a date. History is served from Redis only: the aggregates are large,
// rarely re-read from the same instance, and must stay consistent across
// instances.
func (p *ParkCache) WaitTimeHistory(ctx context.Context, attractionID, date string, dest any, fetch FetchFunc) error {
	return p.cache.GetOrFetch(ctx, WaitTimeHistoryKey(attractionID, date), dest, fetch,
		WithTTL(p.ttls.WaitTimeHistoryTTL),
		WithoutMemory(),
	)
}

// InvalidatePark removes a park's metadata and all of its cached operating
// hours from both tiers.
func (p *ParkCache) InvalidatePark(ctx context.Context, parkID string) error {
	if err := p.cache.InvalidatePattern(ctx, "park:"+parkID+"*"); err != nil {
		return err
	}
	return p.cache.InvalidatePattern(ctx, "hours:"+parkID+"*")
}

// InvalidateAttraction removes an attraction's metadata and current wait
// time from both tiers.
func (p *ParkCache) InvalidateAttraction(ctx context.Context, attractionID string) error {
	if err := p.cache.Invalidate(ctx, AttractionKey(attractionID)); err != nil {
		return err
	}
	return p.cache.Invalidate(ctx, WaitTimeKey(attractionID))
}

// InvalidateWaitTimes removes every cached current wait time, e.g. when a
// park closes for the day.
func (p *ParkCache) InvalidateWaitTimes(ctx context.Context) error {
	return p.cache.InvalidatePattern(ctx, "waittime:*")
}
