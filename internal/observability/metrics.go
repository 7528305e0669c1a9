package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoshare_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreQueryLatency records store query latency by driver, operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photoshare_store_query_latency_seconds",
		Help:    "Entity store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation", "collection"})

	// CacheLookups counts cache-aside lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoshare_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// LikesToggled counts like toggles by resulting state.
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoshare_likes_toggled_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// CommentEvents counts comment additions and removals.
	CommentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoshare_comment_events_total",
		Help: "Total number of comment lifecycle events",
	}, []string{"event"})

	// PostEvents counts post lifecycle events.
	PostEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoshare_post_events_total",
		Help: "Total number of post lifecycle events",
	}, []string{"event"})

	// ImageReleaseFailures counts images that could not be released on post delete.
	ImageReleaseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoshare_image_release_failures_total",
		Help: "Total number of image release failures during post deletion",
	})
)

// StoreMetrics records query latency for one store driver.
type StoreMetrics struct {
	driver string
}

// NewStoreMetrics returns a new StoreMetrics instance.
func NewStoreMetrics(driver string) *StoreMetrics {
	return &StoreMetrics{driver: driver}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *StoreMetrics) TrackQuery(operation, collection string) func() {
	start := time.Now()
	return func() {
		StoreQueryLatency.WithLabelValues(m.driver, operation, collection).Observe(time.Since(start).Seconds())
	}
}
