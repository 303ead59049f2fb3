package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsOptions tunes the collectors; zero values fall back to the
// service defaults and the global Prometheus registerer.
type HTTPMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// HTTPMetrics instruments request count, latency and in-flight gauge,
// labelled by method, route template and status code.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers the request collectors. Re-registering the
// same collectors (e.g. across app restarts in tests) reuses the
// existing ones instead of failing.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	if opts.Namespace == "" {
		opts.Namespace = "social"
	}
	if opts.Subsystem == "" {
		opts.Subsystem = "http"
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = prometheus.DefBuckets
	}

	labels := []string{"method", "route", "status"}
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds, by method, route and status.",
			Buckets:   opts.Buckets,
		}, labels),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		}),
	}

	if existing, err := registerOrExisting(opts.Registerer, m.Requests); err != nil {
		return nil, fmt.Errorf("register requests collector: %w", err)
	} else if existing != nil {
		m.Requests = existing.(*prometheus.CounterVec)
	}
	if existing, err := registerOrExisting(opts.Registerer, m.Duration); err != nil {
		return nil, fmt.Errorf("register duration collector: %w", err)
	} else if existing != nil {
		m.Duration = existing.(*prometheus.HistogramVec)
	}
	if existing, err := registerOrExisting(opts.Registerer, m.InFlight); err != nil {
		return nil, fmt.Errorf("register inflight collector: %w", err)
	} else if existing != nil {
		m.InFlight = existing.(prometheus.Gauge)
	}

	return m, nil
}

// registerOrExisting registers the collector and, when an identical one
// is already registered, hands back the registered instance.
func registerOrExisting(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	err := reg.Register(c)
	if err == nil {
		return nil, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return already.ExistingCollector, nil
	}
	return nil, err
}

// Handler records metrics around each request. A nil receiver is a
// pass-through, so metrics can stay optional in tests.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		m.Requests.With(labels).Inc()
		m.Duration.With(labels).Observe(time.Since(start).Seconds())
	}
}
