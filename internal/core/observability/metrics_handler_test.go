package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsHandler_Smoke(t *testing.T) {
	ExposeBuildInfo("test")
	ObserveHTTP("GET", "/getLocation", 200, 0.001)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "app_build_info") && !strings.Contains(body, "http_requests_total") {
		t.Fatalf("metrics payload did not contain expected metric names; got:\n%s", body)
	}
}

func TestDomainCounters_LabelsAndIncrement(t *testing.T) {
	IncSearch("coordinates", "success")
	IncSearch("coordinates", "success")
	IncProbe("down")
	IncSignup("created")
	IncLocationSubmission("stored")

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()

	for _, want := range []string{
		`search_requests_total{outcome="success",shape="coordinates"} 2`,
		`backend_probe_total{result="down"} 1`,
		`signup_attempts_total{outcome="created"} 1`,
		`location_submissions_total{outcome="stored"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics; got:\n%s", want, body)
		}
	}
}
