package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

const namespace = "marketplace"

// LogSource is a stream of new system log entries.
type LogSource interface {
	Subscribe() (<-chan entities.SystemLog, func())
}

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	systemLogs      *prometheus.CounterVec
	purchases       *prometheus.CounterVec
	walletOps       *prometheus.CounterVec
	logStreams      prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		systemLogs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "system_logs_total",
				Help:      "System log entries written, by type",
			},
			[]string{"type"},
		),
		purchases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "purchases_total",
				Help:      "Bot purchases, by payment method",
			},
			[]string{"method"},
		),
		walletOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wallet",
				Name:      "operations_total",
				Help:      "Wallet operations, by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		logStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_stream_connections",
			Help:      "Open admin log stream connections",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served request. route is the route template.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) PurchaseCompleted(method entities.PaymentMethod) {
	m.purchases.WithLabelValues(string(method)).Inc()
}

// WalletOperation counts a wallet operation; err decides the outcome label.
func (m *Metrics) WalletOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.walletOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) LogStreamOpened() { m.logStreams.Inc() }
func (m *Metrics) LogStreamClosed() { m.logStreams.Dec() }

// WatchLogs counts system log entries by type until ctx is done.
func (m *Metrics) WatchLogs(ctx context.Context, source LogSource) {
	entries, unsubscribe := source.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			m.systemLogs.WithLabelValues(string(entry.Type)).Inc()
		}
	}
}
