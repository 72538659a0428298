package parkcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/mwhitt/parkcache/pkg/parkcache"
)

// recordingCache captures each call so facade tests can assert the key,
// TTL, and tier options the facade wired in.
type recordingCache struct {
	parkcache.Cache // panics if an unexpected method is hit

	getOrFetchKeys []string
	getOrFetchOpts []*parkcache.CacheOptions
	invalidated    []string
	patterns       []string
	fetchValue     any
}

func (r *recordingCache) GetOrFetch(ctx context.Context, key string, dest any, fetch parkcache.FetchFunc, opts ...parkcache.Option) error {
	r.getOrFetchKeys = append(r.getOrFetchKeys, key)
	r.getOrFetchOpts = append(r.getOrFetchOpts, parkcache.ApplyOptions(opts...))

	value, err := fetch()
	if err != nil {
		return err
	}
	r.fetchValue = value
	return nil
}

func (r *recordingCache) Invalidate(ctx context.Context, key string) error {
	r.invalidated = append(r.invalidated, key)
	return nil
}

func (r *recordingCache) InvalidatePattern(ctx context.Context, pattern string) error {
	r.patterns = append(r.patterns, pattern)
	return nil
}

func TestKeyHelpers(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{parkcache.ParkKey("mk"), "park:mk"},
		{parkcache.ParkHoursKey("mk", "2026-08-29"), "hours:mk:2026-08-29"},
		{parkcache.AttractionKey("sm"), "attraction:sm"},
		{parkcache.WaitTimeKey("sm"), "waittime:sm"},
		{parkcache.WaitTimeHistoryKey("sm", "2026-08-28"), "history:sm:2026-08-28"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParkCacheKeysAndTTLs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(p *parkcache.ParkCache, rc *recordingCache) error
		wantKey    string
		wantTTL    time.Duration
		wantMemory bool
	}{
		{
			name: "park data",
			call: func(p *parkcache.ParkCache, rc *recordingCache) error {
				var dest Park
				return p.ParkData(ctx, "mk", &dest, func() (any, error) { return Park{ID: "mk"}, nil })
			},
			wantKey:    "park:mk",
			wantTTL:    time.Hour,
			wantMemory: true,
		},
		{
			name: "park hours",
			call: func(p *parkcache.ParkCache, rc *recordingCache) error {
				var dest []string
				return p.ParkHours(ctx, "mk", "2026-08-29", &dest, func() (any, error) { return []string{"9-22"}, nil })
			},
			wantKey:    "hours:mk:2026-08-29",
			wantTTL:    30 * time.Minute,
			wantMemory: true,
		},
		{
			name: "attraction",
			call: func(p *parkcache.ParkCache, rc *recordingCache) error {
				var dest string
				return p.Attraction(ctx, "sm", &dest, func() (any, error) { return "Space Mountain", nil })
			},
			wantKey:    "attraction:sm",
			wantTTL:    time.Hour,
			wantMemory: true,
		},
		{
			name: "wait time",
			call: func(p *parkcache.ParkCache, rc *recordingCache) error {
				var dest int
				return p.WaitTime(ctx, "sm", &dest, func() (any, error) { return 45, nil })
			},
			wantKey:    "waittime:sm",
			wantTTL:    5 * time.Minute,
			wantMemory: true,
		},
		{
			name: "wait time history skips memory",
			call: func(p *parkcache.ParkCache, rc *recordingCache) error {
				var dest []int
				return p.WaitTimeHistory(ctx, "sm", "2026-08-28", &dest, func() (any, error) { return []int{30, 45}, nil })
			},
			wantKey:    "history:sm:2026-08-28",
			wantTTL:    24 * time.Hour,
			wantMemory: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &recordingCache{}
			p := parkcache.NewParkCache(rc)

			if err := tt.call(p, rc); err != nil {
				t.Fatalf("facade call failed: %v", err)
			}

			if len(rc.getOrFetchKeys) != 1 || rc.getOrFetchKeys[0] != tt.wantKey {
				t.Errorf("keys = %v, want [%s]", rc.getOrFetchKeys, tt.wantKey)
			}

			opts := rc.getOrFetchOpts[0]
			if opts.TTL != tt.wantTTL {
				t.Errorf("TTL = %v, want %v", opts.TTL, tt.wantTTL)
			}
			if opts.UseMemory != tt.wantMemory {
				t.Errorf("UseMemory = %v, want %v", opts.UseMemory, tt.wantMemory)
			}
			if !opts.UseRedis {
				t.Error("facade operations should keep Redis enabled")
			}
		})
	}
}

func TestParkCacheCustomTTLs(t *testing.T) {
	rc := &recordingCache{}
	p := parkcache.NewParkCacheWithTTLs(rc, parkcache.FacadeTTLs{
		WaitTimeTTL: 30 * time.Second,
		// Remaining TTLs fall back to defaults.
	})

	ctx := context.Background()

	var wt int
	if err := p.WaitTime(ctx, "sm", &wt, func() (any, error) { return 45, nil }); err != nil {
		t.Fatalf("WaitTime failed: %v", err)
	}
	if got := rc.getOrFetchOpts[0].TTL; got != 30*time.Second {
		t.Errorf("custom WaitTimeTTL not applied: %v", got)
	}

	var dest Park
	if err := p.ParkData(ctx, "mk", &dest, func() (any, error) { return Park{}, nil }); err != nil {
		t.Fatalf("ParkData failed: %v", err)
	}
	if got := rc.getOrFetchOpts[1].TTL; got != time.Hour {
		t.Errorf("zero ParkTTL should fall back to default, got %v", got)
	}
}

func TestParkCacheInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidate park", func(t *testing.T) {
		rc := &recordingCache{}
		p := parkcache.NewParkCache(rc)

		if err := p.InvalidatePark(ctx, "mk"); err != nil {
			t.Fatalf("InvalidatePark failed: %v", err)
		}

		want := []string{"park:mk*", "hours:mk*"}
		if len(rc.patterns) != len(want) {
			t.Fatalf("patterns = %v, want %v", rc.patterns, want)
		}
		for i := range want {
			if rc.patterns[i] != want[i] {
				t.Errorf("pattern[%d] = %q, want %q", i, rc.patterns[i], want[i])
			}
		}
	})

	t.Run("invalidate attraction", func(t *testing.T) {
		rc := &recordingCache{}
		p := parkcache.NewParkCache(rc)

		if err := p.InvalidateAttraction(ctx, "sm"); err != nil {
			t.Fatalf("InvalidateAttraction failed: %v", err)
		}

		want := []string{"attraction:sm", "waittime:sm"}
		if len(rc.invalidated) != len(want) {
			t.Fatalf("invalidated = %v, want %v", rc.invalidated, want)
		}
		for i := range want {
			if rc.invalidated[i] != want[i] {
				t.Errorf("invalidated[%d] = %q, want %q", i, rc.invalidated[i], want[i])
			}
		}
	})

	t.Run("invalidate wait times", func(t *testing.T) {
		rc := &recordingCache{}
		p := parkcache.NewParkCache(rc)

		if err := p.InvalidateWaitTimes(ctx); err != nil {
			t.Fatalf("InvalidateWaitTimes failed: %v", err)
		}
		if len(rc.patterns) != 1 || rc.patterns[0] != "waittime:*" {
			t.Errorf("patterns = %v, want [waittime:*]", rc.patterns)
		}
	})
}

func TestParkCacheAgainstRealCache(t *testing.T) {
	c := newTestCache(t)
	p := parkcache.NewParkCache(c)
	ctx := context.Background()

	calls := 0
	fetch := func() (any, error) {
		calls++
		return Park{ID: "mk", Name: "Magic Kingdom"}, nil
	}

	var got Park
	if err := p.ParkData(ctx, "mk", &got, fetch); err != nil {
		t.Fatalf("ParkData failed: %v", err)
	}
	if err := p.ParkData(ctx, "mk", &got, fetch); err != nil {
		t.Fatalf("second ParkData failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if got.Name != "Magic Kingdom" {
		t.Errorf("got %+v", got)
	}

	if err := p.InvalidatePark(ctx, "mk"); err != nil {
		t.Fatalf("InvalidatePark failed: %v", err)
	}
	if err := p.ParkData(ctx, "mk", &got, fetch); err != nil {
		t.Fatalf("ParkData after invalidation failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("invalidation should force a refetch, fetch calls = %d", calls)
	}
}
