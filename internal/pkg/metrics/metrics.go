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
		Namespace: "lotlocate",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lotlocate",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Survey metrics
	LotsCalculated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "survey",
		Name:      "lots_calculated_total",
		Help:      "Lot traverse calculations by outcome status",
	}, []string{"status"})

	SurveyLineFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "survey",
		Name:      "line_failures_total",
		Help:      "Survey lines that failed to parse or fold into an azimuth",
	})

	TransformFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "survey",
		Name:      "transform_failures_total",
		Help:      "Individual point transformations to WGS 84 that failed",
	})

	ExportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "export",
		Name:      "files_generated_total",
		Help:      "Export files generated by format",
	}, []string{"format"})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	TransformerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "crs",
		Name:      "transformer_cache_hits_total",
		Help:      "CRS transformer pairs served from the memoisation cache",
	})

	TransformerCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lotlocate",
		Subsystem: "crs",
		Name:      "transformer_cache_misses_total",
		Help:      "CRS transformer pairs built from scratch",
	})
)

// Middleware records request counts and latency per route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the Prometheus scrape endpoint through Fiber.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
