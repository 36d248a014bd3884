package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollect(t *testing.T) {
	AddMetricsSkipPaths("/ping")
	SetPathNormalizer(func(r *http.Request) string { return "/norm" + r.URL.Path })
	defer SetPathNormalizer(func(r *http.Request) string { return r.URL.Path })

	h := Collect()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	before := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("201", "/norm/math/add", "GET"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/math/add", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	after := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("201", "/norm/math/add", "GET"))
	if after-before != 1 {
		t.Errorf("requests to uri: got delta %v, want 1", after-before)
	}
	if got := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("201", "/norm/ping", "GET")); got != 0 {
		t.Errorf("skipped path counted %v times", got)
	}
}

func TestObserveCall(t *testing.T) {
	c := bridgeCalls.WithLabelValues("math", "add", "GET", OutcomeOK)
	before := testutil.ToFloat64(c)
	ObserveCall("math", "add", "GET", OutcomeOK, 3*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("bridge_calls_total delta: got %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	NewPromHttpHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "bridge_call_duration_seconds") {
		t.Error("metrics output missing bridge_call_duration_seconds")
	}
}
