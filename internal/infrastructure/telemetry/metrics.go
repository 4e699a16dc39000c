package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for queries, exports and HTTP
// traffic. Each instance owns its registry, so tests may create as many as
// they like.
type Metrics struct {
	Registry *prometheus.Registry

	queryDuration  *prometheus.HistogramVec
	exportsTotal   *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportRows     *prometheus.HistogramVec
	exportBytes    *prometheus.HistogramVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
}

// NewMetrics registers all collectors in a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		queryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finops_query_duration_seconds",
				Help:    "Duration of store round trips by source and statement kind.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"source", "operation", "status"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finops_exports_total",
				Help: "Exports generated by dataset, format and outcome.",
			},
			[]string{"dataset", "format", "status"},
		),
		exportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finops_export_duration_seconds",
				Help:    "Time to stream and encode an export.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"dataset", "format"},
		),
		exportRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finops_export_rows",
				Help:    "Rows written per successful export.",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
			[]string{"dataset", "format"},
		),
		exportBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finops_export_size_bytes",
				Help:    "Encoded size per successful export.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"dataset", "format"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finops_http_request_duration_seconds",
				Help:    "HTTP request latency by route template.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "finops_http_requests_in_flight",
				Help: "Requests currently being served.",
			},
		),
	}
}

// ObserveQuery records one store round trip.
func (m *Metrics) ObserveQuery(source, operation string, d time.Duration, err error) {
	m.queryDuration.WithLabelValues(source, operation, outcome(err)).Observe(d.Seconds())
}

// ObserveExport records one export attempt. Row and size distributions only
// track successful exports.
func (m *Metrics) ObserveExport(dataset, format string, rows int64, size int, d time.Duration, err error) {
	m.exportsTotal.WithLabelValues(dataset, format, outcome(err)).Inc()
	m.exportDuration.WithLabelValues(dataset, format).Observe(d.Seconds())
	if err != nil {
		return
	}
	m.exportRows.WithLabelValues(dataset, format).Observe(float64(rows))
	m.exportBytes.WithLabelValues(dataset, format).Observe(float64(size))
}

// ObserveRequest records one served HTTP request. route must be the route
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RegisterDBStats exposes the pool statistics of db (open, in use, idle,
// waits) under the go_sql_* metrics labelled with dbName.
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.Registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// InFlight returns the gauge tracking concurrent requests.
func (m *Metrics) InFlight() prometheus.Gauge {
	return m.httpInFlight
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
