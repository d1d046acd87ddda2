package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gridgeo",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Import metrics
	ImportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Position import runs by result (ok, unsupported_crs, malformed_record, error)",
	}, []string{"result"})

	ImportRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "import",
		Name:      "records_total",
		Help:      "Position records consumed by successful imports",
	})

	ImportSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "import",
		Name:      "skipped_elements_total",
		Help:      "Element ids skipped because they resolved to no network element",
	})

	PositionsAttached = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "import",
		Name:      "positions_attached_total",
		Help:      "Element positions attached to the network model",
	}, []string{"kind"})

	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridgeo",
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Duration of position import runs",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridgeo",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridgeo",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
