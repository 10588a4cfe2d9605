package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"flotanet.org/internal/fleet"
)

func (a *API) handleEquipos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEquipos(w, r)
	case http.MethodPost:
		if !a.requireAdmin(w, r) {
			return
		}
		a.createEquipo(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleEquipoSubtree serves /api/equipos/lista, /api/equipos/tipos and
// /api/equipos/{id}.
func (a *API) handleEquipoSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/equipos/"), "/")
	switch path {
	case "", "lista":
		a.listEquipos(w, r)
	case "tipos":
		tipos, err := a.fleet.TiposEquipo(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		if tipos == nil {
			tipos = []string{}
		}
		writeJSON(w, http.StatusOK, tipos)
	default:
		id, err := parseID(path)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		e, err := a.fleet.Equipo(r.Context(), id)
		if err != nil {
			handleFleetError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (a *API) listEquipos(w http.ResponseWriter, r *http.Request) {
	equipos, err := a.fleet.Equipos(r.Context(), strings.TrimSpace(r.URL.Query().Get("tipo")))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if equipos == nil {
		equipos = []fleet.Equipo{}
	}
	writeJSON(w, http.StatusOK, equipos)
}

func (a *API) createEquipo(w http.ResponseWriter, r *http.Request) {
	var req fleet.Equipo
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id, err := a.fleet.CreateEquipo(r.Context(), req)
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"equipoId": id})
}

func (a *API) handleObras(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listObras(w, r)
	case http.MethodPost:
		if !a.requireAdmin(w, r) {
			return
		}
		a.createObra(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleObraSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/obras/"), "/")
	if path != "" && path != "lista" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	a.listObras(w, r)
}

func (a *API) listObras(w http.ResponseWriter, r *http.Request) {
	obras, err := a.fleet.Obras(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if obras == nil {
		obras = []fleet.Obra{}
	}
	writeJSON(w, http.StatusOK, obras)
}

func (a *API) createObra(w http.ResponseWriter, r *http.Request) {
	var req fleet.Obra
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id, err := a.fleet.CreateObra(r.Context(), req)
	if err != nil {
		handleFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"obraId": id})
}

func (a *API) handleTareas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	tareas, err := a.fleet.Tareas(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if tareas == nil {
		tareas = []fleet.Tarea{}
	}
	writeJSON(w, http.StatusOK, tareas)
}

func handleFleetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fleet.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, fleet.ErrConflict):
		writeError(w, r, http.StatusBadRequest, "already exists")
	case errors.Is(err, fleet.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
