// Package httpapi is the HTTP layer: routing, middleware, request and
// response shapes. Domain rules live in the service packages.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"flotanet.org/internal/audit"
	"flotanet.org/internal/auth"
	"flotanet.org/internal/dashboard"
	"flotanet.org/internal/fleet"
	"flotanet.org/internal/obs"
	"flotanet.org/internal/orders"
	"flotanet.org/internal/worklog"
)

// ReadyProbe checks the dependencies the readiness endpoint reports on.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Services groups the domain services the API serves.
type Services struct {
	Auth      *auth.Service
	Fleet     *fleet.Service
	Orders    *orders.Service
	Worklog   *worklog.Service
	Dashboard *dashboard.Service
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth      *auth.Service
	fleet     *fleet.Service
	orders    *orders.Service
	worklog   *worklog.Service
	dashboard *dashboard.Service
	access    audit.AccessRecorder

	rateBurst  int
	ratePerSec int
}

func New(rp ReadyProbe, version string, svcs Services, access audit.AccessRecorder) *API {
	if access == nil {
		access = audit.NopRecorder{}
	}
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		auth:       svcs.Auth,
		fleet:      svcs.Fleet,
		orders:     svcs.Orders,
		worklog:    svcs.Worklog,
		dashboard:  svcs.Dashboard,
		access:     access,
		rateBurst:  20,
		ratePerSec: 10,
	}

	// health/ready/info
	a.mux.HandleFunc("/health", a.Health)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth and user management
	a.mux.HandleFunc("/api/login", a.handleLogin)
	a.mux.HandleFunc("/api/usuarios", a.handleUsuarios)
	a.mux.HandleFunc("/api/usuarios/", a.handleUsuarioSubtree)

	// fleet catalog
	a.mux.HandleFunc("/api/equipos", a.handleEquipos)
	a.mux.HandleFunc("/api/equipos/", a.handleEquipoSubtree)
	a.mux.HandleFunc("/api/obras", a.handleObras)
	a.mux.HandleFunc("/api/obras/", a.handleObraSubtree)
	a.mux.HandleFunc("/api/tareas", a.handleTareas)

	// service orders
	a.mux.HandleFunc("/api/ordenes", a.handleOrdenes)
	a.mux.HandleFunc("/api/ordenes/", a.handleOrdenSubtree)

	// daily logs and locations
	a.mux.HandleFunc("/api/partes", a.handlePartes)
	a.mux.HandleFunc("/api/partes/", a.handleParteSubtree)
	a.mux.HandleFunc("/api/ubicaciones", a.handleUbicaciones)

	// dashboard
	a.mux.HandleFunc("/api/dashboard", a.handleDashboard)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// SetRateLimit overrides the default per-IP limiter. Call before Handler.
func (a *API) SetRateLimit(burst, perSec int) {
	if burst > 0 {
		a.rateBurst = burst
	}
	if perSec > 0 {
		a.ratePerSec = perSec
	}
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = a.accessLog(h)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	return RequestID(h)
}

// accessIdentity carries the authenticated caller from withAuth back out to
// the access log, which wraps it and therefore never sees the context the
// claims are attached to. accessLog plants an empty carrier, withAuth fills
// it once the token parses.
type accessIdentity struct {
	userID   *int64
	username string
}

type accessIdentityKey struct{}

// accessLog persists one row per request. Recorder failures are logged and
// never break the response.
func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		ident := &accessIdentity{}
		r = r.WithContext(context.WithValue(r.Context(), accessIdentityKey{}, ident))
		start := time.Now()
		next.ServeHTTP(sw, r)

		rec := audit.AccessRecord{
			CreatedAt:      start.UTC(),
			UserID:         ident.userID,
			Username:       ident.username,
			Event:          "request",
			Method:         r.Method,
			Route:          obs.CanonicalPath(r.URL.Path),
			Status:         sw.code,
			ResponseTimeMS: time.Since(start).Milliseconds(),
			IP:             clientIP(r),
			HostHeader:     r.Host,
			UserAgent:      r.UserAgent(),
			Referer:        r.Referer(),
			RequestID:      RequestIDFromContext(r.Context()),
		}
		if err := a.access.RecordAccess(r.Context(), rec); err != nil {
			obs.LogRequest(map[string]any{
				"ts":    time.Now().UTC().Format(time.RFC3339Nano),
				"level": "error",
				"msg":   "access_log_write_failed",
				"error": err.Error(),
			})
		}
	})
}

// --- service endpoints ---

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "flotanet-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "flotanet-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
