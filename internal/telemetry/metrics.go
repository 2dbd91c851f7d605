package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsMu      sync.Mutex
	metricsRunning bool
)

// StartMetricsServer serves h on /metrics, or the default Prometheus
// registry when h is nil. Calling it again while a server is running is a
// no-op.
func StartMetricsServer(port int, h http.Handler) error {
	metricsMu.Lock()
	if metricsRunning {
		metricsMu.Unlock()
		return nil
	}
	metricsRunning = true
	metricsMu.Unlock()

	mux := http.NewServeMux()
	if h == nil {
		h = promhttp.Handler()
	}
	mux.Handle("/metrics", h)

	addr := fmt.Sprintf(":%d", port)
	LogInfo("Starting metrics server", "addr", addr)
	err := http.ListenAndServe(addr, mux)

	metricsMu.Lock()
	metricsRunning = false
	metricsMu.Unlock()
	return err
}
