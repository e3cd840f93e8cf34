package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
)

const namespace = "topup_ledger"

// Metrics exposes engine and HTTP metrics on its own registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business Metrics
	TransactionsTotal     *prometheus.CounterVec
	LedgerOperationsTotal *prometheus.CounterVec
	GatewayCallsTotal     *prometheus.CounterVec
	GatewayCallDuration   *prometheus.HistogramVec
	SettlementPublished   *prometheus.CounterVec
}

var _ core.MetricsRecorder = (*Metrics)(nil)

// NewMetrics registers all collectors, plus Go runtime and process collectors, on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		TransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Purchase operations by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		LedgerOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Balance ledger operations by result",
			},
			[]string{"operation", "result"},
		),
		GatewayCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_calls_total",
				Help:      "Fulfillment provider calls by result",
			},
			[]string{"result"},
		),
		GatewayCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_call_duration_seconds",
				Help:      "Duration of fulfillment provider calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"result"},
		),
		SettlementPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlement_events_total",
				Help:      "Settlement event publish attempts by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveTransaction counts a purchase operation
func (m *Metrics) ObserveTransaction(flow string, outcome string) {
	m.TransactionsTotal.WithLabelValues(flow, outcome).Inc()
}

// ObserveLedgerOperation counts a ledger operation
func (m *Metrics) ObserveLedgerOperation(operation string, result string) {
	m.LedgerOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveGatewayCall records a provider call and its latency
func (m *Metrics) ObserveGatewayCall(result string, duration time.Duration) {
	m.GatewayCallsTotal.WithLabelValues(result).Inc()
	m.GatewayCallDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveSettlementPublish counts a settlement publish attempt
func (m *Metrics) ObserveSettlementPublish(result string) {
	m.SettlementPublished.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

// HTTPRequestStarted increments the in-flight gauge
func (m *Metrics) HTTPRequestStarted() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTPRequestFinished decrements the in-flight gauge
func (m *Metrics) HTTPRequestFinished() {
	m.HTTPRequestsInFlight.Dec()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
