package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"flotanet.org/internal/auth"
	"flotanet.org/internal/orders"
)

func (a *API) handleOrdenes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createOrden(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) createOrden(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// the order always belongs to the caller, not to whoever the body names
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		req.UsuarioID = claims.UserID
	}
	id, err := a.orders.Create(r.Context(), req)
	if err != nil {
		handleOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ordenId": id})
}

// handleOrdenSubtree serves /api/ordenes/lista and /api/ordenes/{id}/estado.
func (a *API) handleOrdenSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/ordenes/"), "/")

	if path == "lista" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listOrdenes(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) == 2 && parts[1] == "estado" {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.cambiarEstado(w, r, parts[0])
		return
	}
	writeError(w, r, http.StatusNotFound, "resource not found")
}

// listOrdenes applies the visibility rule: admins and holders of the
// grant-all tag see every order, everyone else only their own.
func (a *API) listOrdenes(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	decision := auth.Decide(claims, auth.ActionOrdersList)
	rows, err := a.orders.List(r.Context(), decision)
	if err != nil {
		handleOrderError(w, r, err)
		return
	}
	if rows == nil {
		rows = []orders.Resumen{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) cambiarEstado(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseID(rawID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	var req struct {
		Estado string `json:"estado"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.orders.CambiarEstado(r.Context(), id, req.Estado); err != nil {
		handleOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ordenId": id,
		"estado":  strings.ToLower(strings.TrimSpace(req.Estado)),
	})
}

func handleOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orders.ErrInvalidEstado):
		writeError(w, r, http.StatusBadRequest, "estado must be abierta, pausada or cerrada")
	case errors.Is(err, orders.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "orden not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
