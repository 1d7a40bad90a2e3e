// Package cache holds serialized board responses keyed by civil date.
package cache

import (
	"context"
	"fmt"
	"time"

	"flight_board/internal/metrics"
)

// Cache stores rendered responses. Get reports a miss as ok=false with a nil
// error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	Close() error
}

// InvalidateDates drops the cached boards of every date that changed.
// source names the writer ("ingest", "seed") for metrics. A nil cache or an
// empty date list is a no-op.
func InvalidateDates(ctx context.Context, c Cache, source string, dates ...string) error {
	if c == nil {
		return nil
	}

	keys := make([]string, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		keys = append(keys, AllFlightsKey(d))
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.Del(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate %d cached boards: %w", len(keys), err)
	}
	metrics.AddCacheInvalidations(KindAllFlights, source, len(keys))
	return nil
}
