// Package worklog implements the daily task logs ("partes diarios"): the
// header an operator opens per machine and site, the per-task detail lines,
// and the geolocation stamps ("ubicaciones") tied to them.
package worklog

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("worklog: not found")
	ErrInvalidInput = errors.New("worklog: invalid input")
)

// EntityParte is the entity label location stamps use for daily logs.
const EntityParte = "parte"

// Parte is the header of one daily log.
type Parte struct {
	ID              int64     `json:"id"`
	UsuarioID       int64     `json:"usuario_id"`
	ObraID          int64     `json:"obra_id"`
	EquipoID        int64     `json:"equipo_id"`
	Fecha           time.Time `json:"fecha"`
	HorometroInicio *float64  `json:"horometro_inicio,omitempty"`
	Observaciones   string    `json:"observaciones,omitempty"`
}

// Detalle is one task line inside a daily log.
type Detalle struct {
	ID          int64    `json:"id"`
	ParteID     int64    `json:"parte_id"`
	TareaID     int64    `json:"tarea_id"`
	TareaNombre string   `json:"nombre,omitempty"`
	Hora        string   `json:"hora"`
	HorometroKM *float64 `json:"horometro_km,omitempty"`
}

// Ubicacion is a geolocation stamp for some entity, normally a parte.
type Ubicacion struct {
	ID         int64     `json:"id"`
	Entity     string    `json:"entity"`
	EntityID   int64     `json:"entity_id"`
	UsuarioID  *int64    `json:"usuario_id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	PrecisionM *float64  `json:"precision_m,omitempty"`
	Fuente     string    `json:"fuente"`
	CapturedAt time.Time `json:"captured_at"`
}
