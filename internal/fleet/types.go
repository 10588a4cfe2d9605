// Package fleet holds the slow-moving catalog data of the system: the
// construction equipment ("equipos"), the work sites ("obras") and the task
// catalog ("tareas") that daily logs reference.
package fleet

import "errors"

var (
	ErrNotFound     = errors.New("fleet: not found")
	ErrConflict     = errors.New("fleet: already exists")
	ErrInvalidInput = errors.New("fleet: invalid input")
)

// Equipo is one machine in the fleet.
type Equipo struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre_equipo"`
	Tipo        string `json:"tipo"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Obra is a work site equipment gets assigned to.
type Obra struct {
	ID      int64  `json:"id"`
	CodObra string `json:"cod_obra,omitempty"`
	Nombre  string `json:"nombre_obra"`
}

// Tarea is one entry of the task catalog referenced by daily log details.
type Tarea struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}
