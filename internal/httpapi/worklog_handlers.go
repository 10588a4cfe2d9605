package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"flotanet.org/internal/auth"
	"flotanet.org/internal/worklog"
)

func (a *API) handlePartes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.crearParte(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) crearParte(w http.ResponseWriter, r *http.Request) {
	var req worklog.Parte
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		req.UsuarioID = claims.UserID
	}
	id, err := a.worklog.CrearParte(r.Context(), req)
	if err != nil {
		handleWorklogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleParteSubtree serves /api/partes/lista, /api/partes/lista/{id},
// /api/partes/tareas and /api/partes/{parte_id}/detalle.
func (a *API) handleParteSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/partes/"), "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "lista":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		partes, err := a.worklog.Partes(r.Context())
		if err != nil {
			handleWorklogError(w, r, err)
			return
		}
		if partes == nil {
			partes = []worklog.Parte{}
		}
		writeJSON(w, http.StatusOK, partes)

	case len(parts) == 2 && parts[0] == "lista":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		id, err := parseID(parts[1])
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		detalles, err := a.worklog.DetallesPorParte(r.Context(), id)
		if err != nil {
			handleWorklogError(w, r, err)
			return
		}
		if detalles == nil {
			detalles = []worklog.Detalle{}
		}
		writeJSON(w, http.StatusOK, detalles)

	case path == "tareas":
		// the task catalog the mobile client shows when filling a parte
		a.handleTareas(w, r)

	case len(parts) == 2 && parts[1] == "detalle":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		parteID, err := parseID(parts[0])
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		var req worklog.Detalle
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		req.ParteID = parteID
		id, err := a.worklog.AgregarDetalle(r.Context(), req)
		if err != nil {
			handleWorklogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})

	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleUbicaciones(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.registrarUbicacion(w, r)
	case http.MethodGet:
		a.listUbicaciones(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) registrarUbicacion(w http.ResponseWriter, r *http.Request) {
	var req worklog.Ubicacion
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// the route is public; a token is honored when present
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		uid := claims.UserID
		req.UsuarioID = &uid
	}
	id, err := a.worklog.RegistrarUbicacion(r.Context(), req)
	if err != nil {
		handleWorklogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (a *API) listUbicaciones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entity := strings.TrimSpace(q.Get("entity"))
	if entity == "" {
		writeError(w, r, http.StatusBadRequest, "entity query parameter is required")
		return
	}
	entityID, err := parseID(q.Get("entity_id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "entity_id query parameter is required")
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), 0, 1, 500)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ubicaciones, err := a.worklog.UbicacionesPorEntidad(r.Context(), entity, entityID, limit)
	if err != nil {
		handleWorklogError(w, r, err)
		return
	}
	if ubicaciones == nil {
		ubicaciones = []worklog.Ubicacion{}
	}
	writeJSON(w, http.StatusOK, ubicaciones)
}

func handleWorklogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, worklog.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, worklog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
