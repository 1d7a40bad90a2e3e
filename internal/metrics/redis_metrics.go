package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Board response cache. "kind" is the cached board (all_flights), so new
// cached endpoints show up as their own series.
var (
	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_requests_total",
			Help: "Redis requests made by the board cache, by operation and cached board.",
		},
		[]string{"operation", "kind"}, // get, set, delete
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_hits_total",
			Help: "Board responses served from Redis.",
		},
		[]string{"kind"},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_misses_total",
			Help: "Board responses rendered from storage and stored in Redis.",
		},
		[]string{"kind"},
	)

	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_invalidations_total",
			Help: "Cached boards dropped after their date changed, by writer.",
		},
		[]string{"kind", "source"}, // ingest, seed
	)

	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_cache_errors_total",
			Help: "Failed Redis requests made by the board cache.",
		},
		[]string{"operation", "kind"},
	)

	cacheDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_cache_request_duration_seconds",
			Help:    "Redis request duration for the board cache.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation", "kind"},
	)

	redisUsedMemory = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_cache_redis_used_memory_bytes",
			Help: "used_memory reported by the Redis instance behind the board cache.",
		},
	)
)

var cacheRegisterOnce sync.Once

func registerCacheMetrics() {
	cacheRegisterOnce.Do(func() {
		prometheus.MustRegister(
			cacheRequests,
			cacheHits,
			cacheMisses,
			cacheInvalidations,
			cacheErrors,
			cacheDuration,
			redisUsedMemory,
		)
	})
}

func ObserveCacheRequest(op, kind string, d time.Duration, err error) {
	cacheRequests.WithLabelValues(op, kind).Inc()
	cacheDuration.WithLabelValues(op, kind).Observe(d.Seconds())
	if err != nil {
		cacheErrors.WithLabelValues(op, kind).Inc()
	}
}

func IncCacheHit(kind string)  { cacheHits.WithLabelValues(kind).Inc() }
func IncCacheMiss(kind string) { cacheMisses.WithLabelValues(kind).Inc() }

func AddCacheInvalidations(kind, source string, n int) {
	cacheInvalidations.WithLabelValues(kind, source).Add(float64(max(n, 0)))
}

func SetRedisUsedMemory(n int64) {
	redisUsedMemory.Set(float64(max(n, 0)))
}
