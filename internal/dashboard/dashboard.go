// Package dashboard aggregates operational stats for the browser dashboard:
// order counters, activity rankings and the latest daily logs with their
// last known location.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidFilter = errors.New("dashboard: invalid filter")

// Filter narrows the parte-based aggregates. Zero values mean "no filter".
type Filter struct {
	Fecha    string // YYYY-MM-DD
	ObraID   int64
	EquipoID int64
}

// OrdenReciente is one row of the latest-orders panel.
type OrdenReciente struct {
	ID          int64     `json:"id"`
	Descripcion string    `json:"descripcion"`
	HoraInicio  time.Time `json:"hora_inicio"`
	Estado      string    `json:"estado"`
	Usuario     string    `json:"usuario"`
	NombreObra  string    `json:"nombre_obra"`
}

// RankingEntry is one row of a count ranking.
type RankingEntry struct {
	Nombre   string `json:"nombre"`
	Cantidad int64  `json:"cantidad"`
}

// UbicacionResumen is the most recent location stamp of a daily log.
type UbicacionResumen struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	PrecisionM *float64  `json:"precision_m,omitempty"`
	Fuente     string    `json:"fuente"`
	CapturedAt time.Time `json:"captured_at"`
}

// ParteReciente is one row of the latest-partes panel.
type ParteReciente struct {
	ID           int64             `json:"id"`
	Fecha        string            `json:"fecha"`
	FullName     string            `json:"full_name"`
	NombreObra   string            `json:"nombre_obra"`
	NombreEquipo string            `json:"nombre_equipo"`
	Ubicacion    *UbicacionResumen `json:"ubicacion,omitempty"`
}

// Stats is the full dashboard payload.
type Stats struct {
	TotalOrdenes  int64 `json:"totalOrdenes"`
	Abiertas      int64 `json:"abiertas"`
	Pausadas      int64 `json:"pausadas"`
	Cerradas      int64 `json:"cerradas"`
	TotalUsuarios int64 `json:"totalUsuarios"`

	UltimasOrdenes  []OrdenReciente `json:"ultimasOrdenes"`
	RankingUsuarios []RankingEntry  `json:"rankingUsuarios"`
	// TiempoPromedio is the average open-to-close time of closed orders,
	// in whole minutes.
	TiempoPromedio int64 `json:"tiempoPromedio"`

	UltimosPartes   []ParteReciente `json:"ultimosPartes"`
	RankingEquipos  []RankingEntry  `json:"rankingEquipos"`
	CantidadPorObra []RankingEntry  `json:"cantidadPorObra"`
	PromedioTareas  int64           `json:"promedioTareas"`
}

// StatsStore produces the aggregate in one round trip group.
type StatsStore interface {
	Collect(ctx context.Context, f Filter) (Stats, error)
}

// Service validates the filter before delegating to the store.
type Service struct {
	store StatsStore
}

// NewService constructs a dashboard Service.
func NewService(store StatsStore) *Service {
	return &Service{store: store}
}

// Stats returns the aggregate for the given filter.
func (s *Service) Stats(ctx context.Context, f Filter) (Stats, error) {
	f.Fecha = strings.TrimSpace(f.Fecha)
	if f.Fecha != "" {
		if _, err := time.Parse("2006-01-02", f.Fecha); err != nil {
			return Stats{}, ErrInvalidFilter
		}
	}
	if f.ObraID < 0 || f.EquipoID < 0 {
		return Stats{}, ErrInvalidFilter
	}
	return s.store.Collect(ctx, f)
}
