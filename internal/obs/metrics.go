// Package obs holds the observability plumbing shared by every component:
// the JSON line logger, Prometheus HTTP metrics and build info.
package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Init registers the HTTP metrics in the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration)
}

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CanonicalPath collapses per-row identifiers in the metric path label so
// label cardinality stays bounded.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "api" && parts[1] == "equipos" && !isStaticEquipoLeaf(parts[2]):
		return "/api/equipos/:id"
	case len(parts) == 4 && parts[0] == "api" && parts[1] == "ordenes" && parts[3] == "estado":
		return "/api/ordenes/:id/estado"
	case len(parts) == 4 && parts[0] == "api" && parts[1] == "partes" && parts[3] == "detalle":
		return "/api/partes/:parte_id/detalle"
	case len(parts) == 4 && parts[0] == "api" && parts[1] == "partes" && parts[2] == "lista":
		return "/api/partes/lista/:id"
	case len(parts) == 4 && parts[0] == "api" && parts[1] == "usuarios" && parts[3] == "role":
		return "/api/usuarios/:id/role"
	case len(parts) == 4 && parts[0] == "api" && parts[1] == "usuarios" && parts[3] == "permisos":
		return "/api/usuarios/:id/permisos"
	}
	return path
}

func isStaticEquipoLeaf(leaf string) bool {
	return leaf == "lista" || leaf == "tipos"
}

// Instrument wraps a handler with request counting, latency and in-flight
// tracking.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code written downstream.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
