package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

func TestOpsRouter_Healthz(t *testing.T) {
	r := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "ok" {
		t.Errorf("Expected body 'ok', got %q", body)
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/healthz", "200")); v < 1 {
		t.Errorf("Expected http_requests_total >= 1, got %f", v)
	}
}

func TestOpsRouter_Metrics(t *testing.T) {
	Register()
	ChecksTotal.WithLabelValues("Likely True").Inc()

	srv := httptest.NewServer(NewRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "claimcheck_checks_total") {
		t.Error("Expected claimcheck_checks_total in exposition")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := NewRouter()
	req := httptest.NewRequest(http.MethodGet, "/missing", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404")); v < 1 {
		t.Errorf("Expected unknown-path 404 to be counted, got %f", v)
	}
}
