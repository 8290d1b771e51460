package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hotcache/cache"
)

var (
	CacheRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotcache_refreshes_total",
			Help: "Producer invocations by outcome",
		}, []string{"cache", "result"},
	)
	CacheRefreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotcache_refresh_duration_seconds",
		Help:    "Producer invocation latency seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"cache"})
	CacheVersion = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotcache_version",
		Help: "Version of the currently published value",
	}, []string{"cache"})
	CacheLastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotcache_last_success_timestamp_seconds",
		Help: "Unix time of the last successful load or refresh",
	}, []string{"cache"})
	CacheRunning = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotcache_refresher_running",
		Help: "1 while the background refresher runs",
	}, []string{"cache"})
)

func init() {
	prometheus.MustRegister(CacheRefreshes, CacheRefreshDuration, CacheVersion, CacheLastSuccess, CacheRunning)
}

// CacheObserver exports cache lifecycle events as prometheus metrics.
type CacheObserver struct{}

var _ cache.Observer = CacheObserver{}

func (CacheObserver) Loaded(name string, version uint64, took time.Duration) {
	CacheRunning.WithLabelValues(name).Set(1)
	success(name, "loaded", version, took)
}

func (CacheObserver) Refreshed(name string, version uint64, took time.Duration) {
	success(name, "ok", version, took)
}

func (CacheObserver) RefreshFailed(name string, took time.Duration, _ error) {
	CacheRefreshes.WithLabelValues(name, "error").Inc()
	CacheRefreshDuration.WithLabelValues(name).Observe(took.Seconds())
}

func (CacheObserver) Stopped(name string) {
	CacheRunning.WithLabelValues(name).Set(0)
}

func success(name, result string, version uint64, took time.Duration) {
	CacheRefreshes.WithLabelValues(name, result).Inc()
	CacheRefreshDuration.WithLabelValues(name).Observe(took.Seconds())
	CacheVersion.WithLabelValues(name).Set(float64(version))
	CacheLastSuccess.WithLabelValues(name).SetToCurrentTime()
}
