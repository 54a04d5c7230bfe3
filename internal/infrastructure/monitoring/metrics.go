package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics for the HTTP surface
type MetricsCollector struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	catalogFoods      prometheus.Gauge
	onboardingActive  prometheus.Gauge
	onboardingStarted prometheus.Counter
}

// NewMetricsCollector registers the collectors on reg and serves them from
// gatherer. Passing prometheus.DefaultRegisterer and DefaultGatherer also
// exposes the OpenTelemetry exporter and the Go runtime collectors.
func NewMetricsCollector(reg prometheus.Registerer, gatherer prometheus.Gatherer) *MetricsCollector {
	factory := promauto.With(reg)

	return &MetricsCollector{
		gatherer: gatherer,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests being served",
			},
		),

		catalogFoods: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nutriplan_catalog_foods",
				Help: "Number of records in the loaded food catalog",
			},
		),
		onboardingActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nutriplan_onboarding_sockets_active",
				Help: "Number of open onboarding websocket connections",
			},
		),
		onboardingStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nutriplan_onboarding_sessions_started_total",
				Help: "Total number of onboarding sessions started",
			},
		),
	}
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, statusCode).Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(c.Request.Method, path).Observe(float64(c.Writer.Size()))
	}
}

func (m *MetricsCollector) SetCatalogSize(n int) { m.catalogFoods.Set(float64(n)) }
func (m *MetricsCollector) SocketOpened()        { m.onboardingActive.Inc() }
func (m *MetricsCollector) SocketClosed()        { m.onboardingActive.Dec() }
func (m *MetricsCollector) SessionStarted()      { m.onboardingStarted.Inc() }

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
