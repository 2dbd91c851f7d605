package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded on PageFetches.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics represents the collection of all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Dev server HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Paged views
	PageFetches       *prometheus.CounterVec
	PageFetchDuration *prometheus.HistogramVec
	PageDiscarded     *prometheus.CounterVec

	// Live counter channel
	LiveConnects      *prometheus.CounterVec
	LiveFrames        prometheus.Counter
	LiveFramesDropped prometheus.Counter
	LiveState         prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them on reg. Pass
// prometheus.NewRegistry() in tests to keep runs independent.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{gatherer: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ammonit_http_requests_total",
			Help: "Total number of HTTP requests served by the dev backend",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ammonit_http_request_duration_seconds",
			Help:    "Duration of dev backend HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.PageFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ammonit_page_fetches_total",
			Help: "Page fetches issued by paged views",
		},
		[]string{"collection", "outcome"},
	)

	m.PageFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ammonit_page_fetch_duration_seconds",
			Help:    "Latency of page fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	m.PageDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ammonit_page_results_discarded_total",
			Help: "Page results dropped because a newer request superseded them",
		},
		[]string{"collection"},
	)

	m.LiveConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ammonit_live_connects_total",
			Help: "WebSocket connection attempts by the live counter channel",
		},
		[]string{"outcome"},
	)

	m.LiveFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ammonit_live_frames_total",
			Help: "Counter frames delivered to the subscriber",
		},
	)

	m.LiveFramesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ammonit_live_frames_dropped_total",
			Help: "Inbound frames dropped because they could not be decoded",
		},
	)

	m.LiveState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ammonit_live_state",
			Help: "Current live channel state (0=connecting, 1=open, 2=closed unexpectedly, 3=closed)",
		},
	)

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PageFetches,
		m.PageFetchDuration,
		m.PageDiscarded,
		m.LiveConnects,
		m.LiveFrames,
		m.LiveFramesDropped,
		m.LiveState,
	)

	return m
}

// ObserveFetch records one finished page fetch.
func (m *Metrics) ObserveFetch(collection string, err error, took time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.PageFetches.WithLabelValues(collection, outcome).Inc()
	m.PageFetchDuration.WithLabelValues(collection).Observe(took.Seconds())
}

// Discarded records a superseded page result.
func (m *Metrics) Discarded(collection string) {
	if m == nil {
		return
	}
	m.PageDiscarded.WithLabelValues(collection).Inc()
}

// LiveConnect records a dial attempt of the live channel.
func (m *Metrics) LiveConnect(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.LiveConnects.WithLabelValues(outcome).Inc()
}

// LiveFrame records a delivered (ok=true) or dropped frame.
func (m *Metrics) LiveFrame(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.LiveFrames.Inc()
		return
	}
	m.LiveFramesDropped.Inc()
}

// SetLiveState publishes the numeric value of the live channel state.
func (m *Metrics) SetLiveState(state int) {
	if m == nil {
		return
	}
	m.LiveState.Set(float64(state))
}

// RequestTrackingMiddleware records count and latency of HTTP requests.
// route labels the request so path parameters do not explode cardinality.
func (m *Metrics) RequestTrackingMiddleware(route func(*http.Request) string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		label := r.URL.Path
		if route != nil {
			label = route(r)
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, label, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
	})
}

// responseWriter is a wrapper to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades through the wrapper. A hijacked request
// is recorded as 101.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, buf, err := http.NewResponseController(rw.ResponseWriter).Hijack()
	if err == nil {
		rw.statusCode = http.StatusSwitchingProtocols
	}
	return conn, buf, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
