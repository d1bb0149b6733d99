package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsReportCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncReportView("OK")
	metrics.IncDownload("CSV")
	metrics.AddDownloadRows("csv", 42)
	metrics.AddDownloadRows("csv", 0)
	metrics.IncDownloadRateLimited()
	metrics.IncMalformedPayload()
	metrics.ObserveQueryDuration("count", 15*time.Millisecond)

	if got := testutil.ToFloat64(metrics.reportViewsTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("report_views_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.downloadsTotal.WithLabelValues("csv")); got != 1 {
		t.Fatalf("downloads_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.downloadRowsTotal.WithLabelValues("csv")); got != 42 {
		t.Fatalf("download_rows_total = %v, want 42", got)
	}
	if got := testutil.ToFloat64(metrics.downloadsRejected); got != 1 {
		t.Fatalf("downloads_rate_limited_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.malformedPayloadRows); got != 1 {
		t.Fatalf("malformed_payload_rows_total = %v, want 1", got)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.IncReportView("ok")
	metrics.IncDownload("csv")
	metrics.AddDownloadRows("csv", 3)
	metrics.IncDownloadRateLimited()
	metrics.IncMalformedPayload()
	metrics.ObserveQueryDuration("list", time.Millisecond)
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/report/failedemails", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	if _, err := app.Test(httptest.NewRequest("GET", "/report/failedemails", nil)); err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if _, err := app.Test(httptest.NewRequest("GET", "/boom", nil)); err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/report/failedemails", "403")); got != 1 {
		t.Fatalf("http_requests_total{403} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total{500} = %v, want 1", got)
	}
}
