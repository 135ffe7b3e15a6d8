package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Exchange metrics
	ExchangesExecuted *prometheus.CounterVec
	ExchangeAmount    *prometheus.HistogramVec
	ExchangeDuration  prometheus.Histogram
	ExchangeErrors    *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all metrics on the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Exchange metrics
		ExchangesExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiod_exchanges_executed_total",
				Help: "Total number of executed exchange operations",
			},
			[]string{"kind", "currency"},
		),
		ExchangeAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cambiod_exchange_amount",
				Help:    "Exchanged amounts in the foreign currency",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
			[]string{"kind", "currency"},
		),
		ExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cambiod_exchange_duration_seconds",
			Help:    "Duration of exchange operations",
			Buckets: prometheus.DefBuckets,
		}),
		ExchangeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiod_exchange_errors_total",
				Help: "Total number of exchange errors by type",
			},
			[]string{"error_type"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiod_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cambiod_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}
