package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedPath labels requests that matched no route
const unmatchedPath = "unmatched"

var labels = []string{"service", "method", "path", "status"}

// HTTPMetrics records request counts, durations and status categories for one service
type HTTPMetrics struct {
	service   string
	skipPaths map[string]bool

	requests   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	categories *prometheus.CounterVec
	inFlight   prometheus.Gauge
}

// Options configures HTTPMetrics
type Options struct {
	// Service is the value of the service label
	Service string
	// Namespace prefixes every metric name
	Namespace string
	// SkipPaths are route templates left out of the metrics, e.g. /metrics
	SkipPaths []string
}

// NewHTTPMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewHTTPMetrics(reg prometheus.Registerer, opts Options) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		service:   opts.Service,
		skipPaths: make(map[string]bool, len(opts.SkipPaths)),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, labels),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, labels),
		categories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "http_status_category_total",
			Help:      "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"service", "category", "method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests being served",
			ConstLabels: prometheus.Labels{"service": opts.Service},
		}),
	}
	for _, p := range opts.SkipPaths {
		m.skipPaths[p] = true
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.durations, err = register(reg, m.durations); err != nil {
		return nil, err
	}
	if m.categories, err = register(reg, m.categories); err != nil {
		return nil, err
	}
	if m.inFlight, err = register(reg, m.inFlight); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// Middleware creates an Echo middleware function that records HTTP request metrics.
// Paths are labelled with the route template to keep cardinality bounded.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.inFlight.Inc()
			defer m.inFlight.Dec()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if m.skipPaths[path] {
				return nil
			}
			if path == "" {
				path = unmatchedPath
			}
			status := c.Response().Status
			method := c.Request().Method
			statusStr := strconv.Itoa(status)

			m.requests.WithLabelValues(m.service, method, path, statusStr).Inc()
			if category := statusCategory(status); category != "" {
				m.categories.WithLabelValues(m.service, category, method, path).Inc()
			}
			m.durations.WithLabelValues(m.service, method, path, statusStr).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// Handler exposes the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
