package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"flotanet.org/internal/audit"
	"flotanet.org/internal/auth"
	"flotanet.org/internal/dashboard"
	"flotanet.org/internal/fleet"
	"flotanet.org/internal/orders"
	"flotanet.org/internal/worklog"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	authSvc *auth.Service
	t       *testing.T
}

type stubStats struct{}

func (stubStats) Collect(context.Context, dashboard.Filter) (dashboard.Stats, error) {
	return dashboard.Stats{TotalOrdenes: 3, Abiertas: 2, Cerradas: 1}, nil
}

type captureRecorder struct {
	mu   sync.Mutex
	rows []audit.AccessRecord
}

func (c *captureRecorder) RecordAccess(_ context.Context, rec audit.AccessRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, rec)
	return nil
}

func (c *captureRecorder) byRoute(route string) (audit.AccessRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.rows) - 1; i >= 0; i-- {
		if c.rows[i].Route == route {
			return c.rows[i], true
		}
	}
	return audit.AccessRecord{}, false
}

func newTestAPI(t *testing.T) *apiClient {
	return newTestAPIWithRecorder(t, nil)
}

func newTestAPIWithRecorder(t *testing.T, access audit.AccessRecorder) *apiClient {
	t.Helper()

	t.Setenv("FLOTANET_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	authSvc := auth.NewService(auth.NewInMemoryIdentities())
	svcs := Services{
		Auth:      authSvc,
		Fleet:     fleet.NewService(fleet.NewInMemory()),
		Orders:    orders.NewService(orders.NewInMemory(nil)),
		Worklog:   worklog.NewService(worklog.NewInMemory(nil)),
		Dashboard: dashboard.NewService(stubStats{}),
	}
	api := New(ReadyProbe{}, "test", svcs, access)
	api.rateBurst = 100
	api.ratePerSec = 100

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		authSvc: authSvc,
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u := path
	if params != nil {
		u += "?" + params.Encode()
	}
	return c.do(http.MethodGet, u, nil, headers)
}

// seedUser creates an account directly through the service and returns a
// fresh token obtained over HTTP.
func (c *apiClient) seedUser(username, password, role string) (int64, string) {
	c.t.Helper()
	id, err := c.authSvc.Register(context.Background(), auth.RegisterInput{
		FullName: "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Role:     role,
	})
	if err != nil {
		c.t.Fatalf("seed user %s: %v", username, err)
	}
	return id, c.login(username, password)
}

func (c *apiClient) login(username, password string) string {
	c.t.Helper()
	resp := c.post("/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload.Token
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestLoginFlow(t *testing.T) {
	c := newTestAPI(t)
	c.seedUser("maria", "s3cret-pass", "admin")

	resp := c.post("/api/login", map[string]string{
		"username": "maria",
		"password": "s3cret-pass",
	}, nil)
	payload := decode[loginResponse](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload.User.Username != "maria" || payload.User.Role != "admin" {
		t.Fatalf("unexpected user payload: %+v", payload.User)
	}

	bad := c.post("/api/login", map[string]string{
		"username": "maria",
		"password": "wrong",
	}, nil)
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", bad.StatusCode)
	}

	unknown := c.post("/api/login", map[string]string{
		"username": "ghost",
		"password": "whatever",
	}, nil)
	defer unknown.Body.Close()
	if unknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", unknown.StatusCode)
	}
}

func TestRegisterRequiresTokenAndRejectsDuplicates(t *testing.T) {
	c := newTestAPI(t)
	_, token := c.seedUser("admin1", "admin-pass", "admin")

	noToken := c.post("/api/usuarios", map[string]string{
		"full_name": "Pedro Gomez",
		"username":  "pgomez",
		"email":     "pgomez@example.com",
		"password":  "pass-123",
	}, nil)
	defer noToken.Body.Close()
	if noToken.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", noToken.StatusCode)
	}

	created := c.post("/api/usuarios", map[string]string{
		"full_name": "Pedro Gomez",
		"username":  "pgomez",
		"email":     "pgomez@example.com",
		"password":  "pass-123",
	}, bearerHeader(token))
	body := decode[map[string]any](t, created)
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.StatusCode)
	}
	if body["usuarioId"] == nil {
		t.Fatalf("expected usuarioId in response: %v", body)
	}

	dup := c.post("/api/usuarios", map[string]string{
		"full_name": "Pedro Again",
		"username":  "pgomez",
		"email":     "other@example.com",
		"password":  "pass-123",
	}, bearerHeader(token))
	defer dup.Body.Close()
	if dup.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", dup.StatusCode)
	}

	missing := c.post("/api/usuarios", map[string]string{
		"username": "nobody",
	}, bearerHeader(token))
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", missing.StatusCode)
	}
}

func TestExpiredTokenRejectedWithExpiredWording(t *testing.T) {
	c := newTestAPI(t)

	now := time.Now().Add(-2 * time.Hour)
	claims := auth.Claims{
		UserID:   9,
		Username: "late",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "flotanet",
			Subject:   "late",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	resp := c.get("/api/ordenes/lista", nil, bearerHeader(signed))
	body := decode[map[string]any](t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != "token expired" {
		t.Fatalf("expected expired wording, got %v", body["error"])
	}
}

func TestOrderVisibility(t *testing.T) {
	c := newTestAPI(t)
	_, adminToken := c.seedUser("jefe", "admin-pass", "admin")
	_, op1Token := c.seedUser("op1", "op1-pass-1", "user")
	_, op2Token := c.seedUser("op2", "op2-pass-1", "user")

	for _, token := range []string{op1Token, op1Token, op2Token} {
		resp := c.post("/api/ordenes", map[string]any{
			"obra_id":     1,
			"equipo_id":   1,
			"descripcion": "engrase general",
		}, bearerHeader(token))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 creating order, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	adminList := c.get("/api/ordenes/lista", nil, bearerHeader(adminToken))
	adminRows := decode[[]orders.Resumen](t, adminList)
	if len(adminRows) != 3 {
		t.Fatalf("admin should see all 3 orders, got %d", len(adminRows))
	}

	opList := c.get("/api/ordenes/lista", nil, bearerHeader(op1Token))
	opRows := decode[[]orders.Resumen](t, opList)
	if len(opRows) != 2 {
		t.Fatalf("op1 should see only its 2 orders, got %d", len(opRows))
	}

	noToken := c.get("/api/ordenes/lista", nil, nil)
	defer noToken.Body.Close()
	if noToken.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", noToken.StatusCode)
	}
}

func TestOrderEstadoTransitions(t *testing.T) {
	c := newTestAPI(t)
	_, token := c.seedUser("op3", "op3-pass-1", "user")

	created := c.post("/api/ordenes", map[string]any{
		"obra_id":     2,
		"equipo_id":   4,
		"descripcion": "cambio de filtro",
	}, bearerHeader(token))
	body := decode[map[string]any](t, created)
	id := int64(body["ordenId"].(float64))

	patch := func(estado string) *http.Response {
		return c.do(http.MethodPatch, "/api/ordenes/"+jsonNumber(id)+"/estado",
			map[string]string{"estado": estado}, bearerHeader(token))
	}

	closed := patch(" CERRADA ")
	defer closed.Body.Close()
	if closed.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 closing order, got %d", closed.StatusCode)
	}

	invalid := patch("rota")
	defer invalid.Body.Close()
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid estado, got %d", invalid.StatusCode)
	}

	missing := c.do(http.MethodPatch, "/api/ordenes/9999/estado",
		map[string]string{"estado": "pausada"}, bearerHeader(token))
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", missing.StatusCode)
	}
}

func TestPublicRoutes(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/health", "/readyz", "/v1/info", "/api/equipos", "/api/obras", "/api/tareas"} {
		resp := c.get(path, nil, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for public path %s, got %d", path, resp.StatusCode)
		}
	}

	resp := c.post("/api/ubicaciones", map[string]any{
		"entity":    "parte",
		"entity_id": 1,
		"lat":       -34.6,
		"lng":       -58.4,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for tokenless location stamp, got %d", resp.StatusCode)
	}
}

func TestDashboardRequiresTokenAndValidatesFecha(t *testing.T) {
	c := newTestAPI(t)
	_, token := c.seedUser("viewer", "viewer-pass", "user")

	noToken := c.get("/api/dashboard", nil, nil)
	defer noToken.Body.Close()
	if noToken.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", noToken.StatusCode)
	}

	bad := c.get("/api/dashboard", url.Values{"fecha": {"14-03-2026"}}, bearerHeader(token))
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed fecha, got %d", bad.StatusCode)
	}

	ok := c.get("/api/dashboard", url.Values{"fecha": {"2026-03-14"}}, bearerHeader(token))
	stats := decode[dashboard.Stats](t, ok)
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", ok.StatusCode)
	}
	if stats.TotalOrdenes != 3 {
		t.Fatalf("unexpected stats payload: %+v", stats)
	}
}

func TestParteDetalleFlow(t *testing.T) {
	c := newTestAPI(t)
	_, token := c.seedUser("op4", "op4-pass-1", "user")

	created := c.post("/api/partes", map[string]any{
		"obra_id":   1,
		"equipo_id": 2,
	}, bearerHeader(token))
	body := decode[map[string]any](t, created)
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating parte, got %d", created.StatusCode)
	}
	parteID := jsonNumber(int64(body["id"].(float64)))

	detalle := c.post("/api/partes/"+parteID+"/detalle", map[string]any{
		"tarea_id": 1,
		"hora":     "08:30",
	}, bearerHeader(token))
	defer detalle.Body.Close()
	if detalle.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 adding detalle, got %d", detalle.StatusCode)
	}

	list := c.get("/api/partes/lista/"+parteID, nil, bearerHeader(token))
	detalles := decode[[]worklog.Detalle](t, list)
	if len(detalles) != 1 || detalles[0].Hora != "08:30" {
		t.Fatalf("unexpected detalles: %+v", detalles)
	}

	orphan := c.post("/api/partes/9999/detalle", map[string]any{
		"tarea_id": 1,
		"hora":     "09:00",
	}, bearerHeader(token))
	defer orphan.Body.Close()
	if orphan.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown parte, got %d", orphan.StatusCode)
	}
}

func TestAccessLogRecordsAuthenticatedUser(t *testing.T) {
	recorder := &captureRecorder{}
	c := newTestAPIWithRecorder(t, recorder)
	id, token := c.seedUser("auditada", "audit-pass", "user")

	resp := c.get("/api/ordenes/lista", nil, bearerHeader(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	row, ok := recorder.byRoute("/api/ordenes/lista")
	if !ok {
		t.Fatalf("no access row recorded for /api/ordenes/lista")
	}
	if row.UserID == nil || *row.UserID != id {
		t.Fatalf("access row missing user id: %+v", row)
	}
	if row.Username != "auditada" {
		t.Fatalf("access row missing username: %+v", row)
	}
	if row.Status != http.StatusOK || row.Method != http.MethodGet {
		t.Fatalf("unexpected access row: %+v", row)
	}

	// tokenless traffic stays anonymous
	public := c.get("/health", nil, nil)
	public.Body.Close()
	anon, ok := recorder.byRoute("/health")
	if !ok {
		t.Fatalf("no access row recorded for /health")
	}
	if anon.UserID != nil || anon.Username != "" {
		t.Fatalf("anonymous row carries identity: %+v", anon)
	}
}

func jsonNumber(id int64) string {
	return strconv.FormatInt(id, 10)
}
