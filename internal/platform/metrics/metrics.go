// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	operations       *prometheus.CounterVec
	acceptEncodings  *prometheus.CounterVec
	contentEncodings *prometheus.CounterVec
}

// NewCollector creates the collectors under namespace and registers them
// together with the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Resolved API operations by root field, kind and outcome code",
			},
			[]string{"operation", "kind", "outcome"},
		),
		acceptEncodings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accept_encoding_total",
				Help:      "Content codings offered by clients in Accept-Encoding",
			},
			[]string{"coding"},
		),
		contentEncodings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_encoding_total",
				Help:      "Content codings applied to responses",
			},
			[]string{"coding"},
		),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.operations,
		c.acceptEncodings,
		c.contentEncodings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveHTTP records one finished HTTP request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveOperation records one resolved operation; outcome is "ok" or an error code.
func (c *Collector) ObserveOperation(operation, kind, outcome string) {
	c.operations.WithLabelValues(operation, kind, outcome).Inc()
}

// ObserveAcceptEncoding counts each coding a client offered.
func (c *Collector) ObserveAcceptEncoding(codings []string) {
	for _, coding := range codings {
		c.acceptEncodings.WithLabelValues(coding).Inc()
	}
}

// ObserveContentEncoding counts the coding applied to a response.
func (c *Collector) ObserveContentEncoding(coding string) {
	c.contentEncodings.WithLabelValues(coding).Inc()
}
