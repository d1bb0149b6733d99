package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the report endpoints.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	reportViewsTotal     *prometheus.CounterVec
	reportQueryDuration  *prometheus.HistogramVec
	downloadsTotal       *prometheus.CounterVec
	downloadRowsTotal    *prometheus.CounterVec
	downloadsRejected    prometheus.Counter
	malformedPayloadRows prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "failedemails",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "failedemails",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		reportViewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "failedemails",
				Name:      "report_views_total",
				Help:      "Total number of rendered report pages by outcome.",
			},
			[]string{"outcome"},
		),
		reportQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "failedemails",
				Name:      "report_query_duration_seconds",
				Help:      "Event log query duration in seconds by query kind.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"query"},
		),
		downloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "failedemails",
				Name:      "downloads_total",
				Help:      "Total number of report downloads by format.",
			},
			[]string{"format"},
		),
		downloadRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "failedemails",
				Name:      "download_rows_total",
				Help:      "Total number of rows written to report downloads by format.",
			},
			[]string{"format"},
		),
		downloadsRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "failedemails",
				Name:      "downloads_rate_limited_total",
				Help:      "Total number of downloads rejected by the per-viewer rate limit.",
			},
		),
		malformedPayloadRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "failedemails",
				Name:      "malformed_payload_rows_total",
				Help:      "Total number of event log rows whose payload could not be decoded.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.reportViewsTotal,
		m.reportQueryDuration,
		m.downloadsTotal,
		m.downloadRowsTotal,
		m.downloadsRejected,
		m.malformedPayloadRows,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncReportView(outcome string) {
	if m == nil {
		return
	}
	m.reportViewsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveQueryDuration(query string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.reportQueryDuration.WithLabelValues(normalizeLabel(query)).Observe(seconds)
}

func (m *Metrics) IncDownload(format string) {
	if m == nil {
		return
	}
	m.downloadsTotal.WithLabelValues(normalizeLabel(format)).Inc()
}

func (m *Metrics) AddDownloadRows(format string, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.downloadRowsTotal.WithLabelValues(normalizeLabel(format)).Add(float64(rows))
}

func (m *Metrics) IncDownloadRateLimited() {
	if m == nil {
		return
	}
	m.downloadsRejected.Inc()
}

func (m *Metrics) IncMalformedPayload() {
	if m == nil {
		return
	}
	m.malformedPayloadRows.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
