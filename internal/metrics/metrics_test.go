package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New(prometheus.NewRegistry())

	// Verify all metrics are initialized
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.PageFetches)
	assert.NotNil(t, m.PageFetchDuration)
	assert.NotNil(t, m.PageDiscarded)
	assert.NotNil(t, m.LiveConnects)
	assert.NotNil(t, m.LiveFrames)
	assert.NotNil(t, m.LiveFramesDropped)
	assert.NotNil(t, m.LiveState)
}

func TestRequestTrackingMiddleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	route := func(*http.Request) string { return "/api/v1/{collection}/" }

	ts := httptest.NewServer(m.RequestTrackingMiddleware(route, handler))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/users/")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/{collection}/", "418")))
}

func TestRequestTrackingMiddleware_AllowsHijack(t *testing.T) {
	m := New(prometheus.NewRegistry())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, buf, err := http.NewResponseController(w).Hijack()
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		buf.WriteString("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n")
		buf.Flush()
	})
	route := func(*http.Request) string { return "/api/v1/machines/ws" }

	ts := httptest.NewServer(m.RequestTrackingMiddleware(route, handler))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/machines/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/machines/ws", "101")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPageMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFetch("users", nil, 20*time.Millisecond)
	m.ObserveFetch("users", errors.New("boom"), time.Millisecond)
	m.ObserveFetch("users", nil, time.Millisecond)
	m.Discarded("users")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PageFetches.WithLabelValues("users", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageFetches.WithLabelValues("users", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageDiscarded.WithLabelValues("users")))
}

func TestLiveMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LiveConnect(nil)
	m.LiveConnect(errors.New("refused"))
	m.LiveFrame(true)
	m.LiveFrame(true)
	m.LiveFrame(false)
	m.SetLiveState(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveConnects.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveConnects.WithLabelValues(OutcomeError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LiveFrames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveFramesDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveState))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveFetch("users", nil, time.Second)
		m.Discarded("users")
		m.LiveConnect(nil)
		m.LiveFrame(false)
		m.SetLiveState(3)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.RequestTrackingMiddleware(nil, next))
}

func TestMetricsHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveFetch("clients", nil, time.Millisecond)
	m.LiveFrame(true)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "ammonit_page_fetches_total")
	assert.Contains(t, body, "ammonit_live_frames_total")
}
