package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveMutation(t *testing.T) {
	m := New("test")
	m.ObserveMutation("create", nil)
	m.ObserveMutation("create", nil)
	m.ObserveMutation("delete", errors.New("boom"))

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("create", "ok")); got != 2 {
		t.Fatalf("create ok = %v", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("delete", "error")); got != 1 {
		t.Fatalf("delete error = %v", got)
	}
}

func TestObserveRequestAndHandler(t *testing.T) {
	m := New("test")
	m.ObserveRequest(http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.ObserveRateLimited()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`finanzy_http_requests_total{code="200",method="GET",service="test"} 1`,
		`finanzy_rate_limited_requests_total{service="test"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveMutation("create", nil)
	m.ObserveRequest(http.MethodGet, 200, time.Second)
	m.ObserveEvent("created", nil)
	m.ObserveRateLimited()
	m.ObserveSuspicious()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics, got %d", rec.Code)
	}
}
