package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsLabelRoutesByPattern(t *testing.T) {
	h := NewMux(&mockService{ready: true})
	okBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/translate", http.MethodPost, "200"))
	missBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", http.MethodGet, "404"))

	_ = postJSON(h, "/translate", `{"inputs":["a"]}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/path/123", nil))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/translate", http.MethodPost, "200")); got != okBefore+1 {
		t.Fatalf("/translate counter: before=%v after=%v", okBefore, got)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", http.MethodGet, "404")); got != missBefore+1 {
		t.Fatalf("unmatched counter: before=%v after=%v", missBefore, got)
	}
}

func TestMetricsStatusWithoutWriteHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "implicit 200")
	})
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", http.MethodGet, "200"))
	MetricsMiddleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", http.MethodGet, "200")); got != before+1 {
		t.Fatalf("implicit status not counted as 200: before=%v after=%v", before, got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight gauge = %v", got)
	}
}

func TestTranslateMetrics(t *testing.T) {
	_ = postJSON(NewMux(&mockService{}), "/translate", `{"inputs":["a","b","c"],"offline":true}`)
	if n := testutil.CollectAndCount(translateInputs); n < 1 {
		t.Fatalf("translate_inputs series = %d", n)
	}

	inband := testutil.ToFloat64(translateInbandErrors)
	_ = postJSON(NewMux(&mockService{translateErr: io.ErrUnexpectedEOF, partial: true}), "/translate", `{"inputs":["a"]}`)
	if got := testutil.ToFloat64(translateInbandErrors); got != inband+1 {
		t.Fatalf("in-band error counter: before=%v after=%v", inband, got)
	}
}

func TestMetricsEndpointExposesFamilies(t *testing.T) {
	h := NewMux(&mockService{})
	_ = postJSON(h, "/translate", `{"inputs":["a"]}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"mtbench_http_requests_total", "mtbench_http_translate_inputs", "mtbench_http_inflight_requests"} {
		if !strings.Contains(body, name) {
			t.Fatalf("missing %s in /metrics", name)
		}
	}
}
