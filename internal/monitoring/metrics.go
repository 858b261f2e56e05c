// Package monitoring provides Prometheus metrics and health checks.
package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector manages Prometheus metrics for the service. Each collector
// owns its registry so several can coexist in one process.
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	graphqlOperationsTotal   *prometheus.CounterVec
	graphqlOperationDuration *prometheus.HistogramVec
}

// NewMetricsCollector creates a metrics collector for a service.
func NewMetricsCollector(serviceName, version string) *MetricsCollector {
	prefix := strings.ReplaceAll(serviceName, "-", "_")

	mc := &MetricsCollector{registry: prometheus.NewRegistry()}

	mc.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	mc.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	mc.graphqlOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_graphql_operations_total",
			Help: "Total number of GraphQL operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	mc.graphqlOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_graphql_operation_duration_seconds",
			Help:    "GraphQL operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	serviceInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_service_info",
			Help: "Service information",
		},
		[]string{"version"},
	)

	mc.registry.MustRegister(
		mc.httpRequestsTotal,
		mc.httpRequestDuration,
		mc.graphqlOperationsTotal,
		mc.graphqlOperationDuration,
		serviceInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	serviceInfo.WithLabelValues(version).Set(1)

	return mc
}

// Registry exposes the collector's registry, mainly for tests.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// ObserveOperation records one executed GraphQL operation.
func (mc *MetricsCollector) ObserveOperation(operation string, duration time.Duration, errorCount int) {
	outcome := "success"
	if errorCount > 0 {
		outcome = "error"
	}
	mc.graphqlOperationsTotal.WithLabelValues(operation, outcome).Inc()
	mc.graphqlOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// MetricsMiddleware returns middleware that collects HTTP metrics.
func (mc *MetricsCollector) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		mc.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		mc.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func (mc *MetricsCollector) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
