package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wetland_monitor"

// Metrics holds the Prometheus counters, histograms, and gauges for the monitor.
type Metrics struct {
	Evaluations   *prometheus.CounterVec // labels: outcome={ok,unavailable,unknown_site}
	RiskLevels    *prometheus.CounterVec // labels: category={stress,migration,poaching}, level={Low,Moderate,High}
	WarmRuns      prometheus.Counter
	PublishErrors prometheus.Counter

	// Forecast metrics.
	ForecastRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ForecastCache       *prometheus.CounterVec // labels: result={hit,miss}
	ForecastAPIDuration prometheus.Histogram
	CachedSnapshots     prometheus.Gauge
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.Evaluations,
		m.RiskLevels,
		m.WarmRuns,
		m.PublishErrors,
		m.ForecastRequests,
		m.ForecastCache,
		m.ForecastAPIDuration,
		m.CachedSnapshots,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      help("Risk evaluations by outcome."),
		}, []string{"outcome"}),
		RiskLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_levels_total",
			Help:      help("Assigned risk levels by category and level."),
		}, []string{"category", "level"}),
		WarmRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warm_runs_total",
			Help:      help("Completed cache warm/refresh passes over all sites."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Assessments that failed to publish."),
		}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      help("Open-Meteo forecast requests by outcome."),
		}, []string{"outcome"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      help("Snapshot cache lookups by result."),
		}, []string{"result"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_api_duration_seconds",
			Help:      help("Open-Meteo request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CachedSnapshots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_snapshots",
			Help:      help("Weather snapshots currently held in the cache."),
		}),
	}
}
