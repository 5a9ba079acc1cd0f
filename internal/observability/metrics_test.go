package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsFlowCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.ObserveCall("/number/purchase", "application", 120*time.Millisecond)
	metrics.ObserveCall("/number/purchase", "success", 80*time.Millisecond)
	metrics.IncAction("did-buyer", "purchase", ResultFailure)
	metrics.IncAction("did-buyer", "purchase", ResultSuccess)
	metrics.IncAction("DID-Buyer", "purchase", ResultSuccess)
	metrics.ScanStarted()
	metrics.ScanFinished(time.Unix(1700000000, 0))

	if got := testutil.ToFloat64(metrics.callsTotal.WithLabelValues("/number/purchase", "application")); got != 1 {
		t.Fatalf("marketplace_calls_total{application} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.flowActionsTotal.WithLabelValues("did-buyer", "purchase", "success")); got != 2 {
		t.Fatalf("flow_actions_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.scansInflight); got != 0 {
		t.Fatalf("ticket_scans_inflight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.lastScanTimestamp); got != 1700000000 {
		t.Fatalf("ticket_last_scan_timestamp_seconds = %v", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.ObserveCall("/x", "success", time.Second)
	metrics.IncAction("f", "a", ResultSkipped)
	metrics.ScanStarted()
	metrics.ScanFinished(time.Now())
	if err := metrics.Push(context.Background(), "http://unused", "job"); err != nil {
		t.Fatalf("Push() on nil metrics error = %v", err)
	}
}

func TestMetricsPushSendsToGateway(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath, gotBody string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.URL.Path
		gotBody = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	metrics := NewMetrics()
	metrics.IncAction("carrier-relations", "interconnect", ResultSuccess)

	if err := metrics.Push(context.Background(), gateway.URL, "carrier-relations"); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if err := metrics.Push(context.Background(), "", "carrier-relations"); err != nil {
		t.Fatalf("Push() with blank url error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/metrics/job/carrier-relations" {
		t.Fatalf("push path = %q", gotPath)
	}
	if gotBody == "" {
		t.Fatal("push body should not be empty")
	}
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
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	metrics.ObserveCall("/buyers/callhistory/", "success", time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "tcxc_marketplace_calls_total") {
		t.Fatal("metrics output should contain tcxc_marketplace_calls_total")
	}
}
