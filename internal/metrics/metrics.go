package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ImportRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parks_import_runs_total",
		Help: "Import runs by result (completed, aborted, failed)",
	}, []string{"result"})
	ImportFeaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parks_import_features_total",
		Help: "Features processed by outcome (imported, rejected, faulted)",
	}, []string{"outcome"})
	ImportDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parks_import_duration_ms",
		Help:    "Import run duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
	})
	RenderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parks_render_requests_total",
		Help: "Render requests by kind (payload, page)",
	}, []string{"kind"})
	RenderNotFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parks_render_not_found_total",
		Help: "Render requests for unknown parks",
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parks_redis_hits_total",
		Help: "Render cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parks_redis_misses_total",
		Help: "Render cache misses",
	})
)

func init() {
	prometheus.MustRegister(ImportRunsTotal)
	prometheus.MustRegister(ImportFeaturesTotal)
	prometheus.MustRegister(ImportDurationMs)
	prometheus.MustRegister(RenderRequestsTotal)
	prometheus.MustRegister(RenderNotFoundTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
}

// Handler exposes the default registry; mounted at {API_BASE}/metrics.
func Handler() http.Handler { return promhttp.Handler() }
