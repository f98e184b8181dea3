package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mtbench",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mtbench",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration; for /translate this covers the whole stream.",
			Buckets:   []float64{.005, .025, .1, .5, 1, 2.5, 5, 15, 30, 60, 120},
		},
		[]string{"route", "method"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mtbench",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	translateInputs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mtbench",
			Subsystem: "http",
			Name:      "translate_inputs",
			Help:      "Sentences per /translate request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		},
		[]string{"mode"},
	)

	translateInbandErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mtbench",
			Subsystem: "http",
			Name:      "translate_inband_errors_total",
			Help:      "/translate failures reported as a trailing NDJSON error line after results were streamed.",
		},
	)

	backpressureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mtbench",
			Subsystem: "http",
			Name:      "backpressure_total",
			Help:      "Requests rejected with 429.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight,
		translateInputs, translateInbandErrors, backpressureTotal)
}

// statusRecorder captures the response status. A handler that writes without
// calling WriteHeader gets 200, like net/http.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(p)
}

// Flush keeps NDJSON streaming working through the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware instruments requests for Prometheus. Mounted inside a chi
// router, requests are labeled by route pattern; unmatched ones by "other".
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInflight.Inc()
		defer httpInflight.Dec()

		sr := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sr, r)
		if sr.status == 0 {
			sr.status = http.StatusOK
		}
		route := routeLabel(r)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sr.status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routeLabel returns the matched chi pattern. chi fills it while routing, so
// it is only meaningful after the handler ran. Raw paths are never used as
// labels.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "other"
}

func observeTranslate(offline bool, inputs int) {
	mode := "online"
	if offline {
		mode = "offline"
	}
	translateInputs.WithLabelValues(mode).Observe(float64(inputs))
}

// IncrementBackpressure is called when returning 429 to the client
func IncrementBackpressure(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	backpressureTotal.WithLabelValues(reason).Inc()
}
