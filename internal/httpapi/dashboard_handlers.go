package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"flotanet.org/internal/dashboard"
)

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := r.URL.Query()
	f := dashboard.Filter{Fecha: strings.TrimSpace(q.Get("fecha"))}
	if raw := strings.TrimSpace(q.Get("obra_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, http.StatusBadRequest, "obra_id must be a positive integer")
			return
		}
		f.ObraID = id
	}
	if raw := strings.TrimSpace(q.Get("equipo_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, http.StatusBadRequest, "equipo_id must be a positive integer")
			return
		}
		f.EquipoID = id
	}

	stats, err := a.dashboard.Stats(r.Context(), f)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidFilter) {
			writeError(w, r, http.StatusBadRequest, "fecha must be YYYY-MM-DD")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
