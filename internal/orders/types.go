// Package orders implements the service-order workflow: operators open an
// order against a machine on a work site, optionally request spare parts,
// and administrators follow it through pausada/cerrada.
package orders

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("orders: not found")
	ErrInvalidInput  = errors.New("orders: invalid input")
	ErrInvalidEstado = errors.New("orders: invalid estado")
)

// Order states. No other labels are accepted anywhere; the original system
// let arbitrary strings through the estado update, which this rework closes.
const (
	EstadoAbierta = "abierta"
	EstadoPausada = "pausada"
	EstadoCerrada = "cerrada"
)

// ValidEstado reports whether the label is one of the known states.
func ValidEstado(estado string) bool {
	switch estado {
	case EstadoAbierta, EstadoPausada, EstadoCerrada:
		return true
	}
	return false
}

// Repuesto is a spare part requested on an order.
type Repuesto struct {
	ID       int64  `json:"id,omitempty"`
	OrdenID  int64  `json:"orden_id,omitempty"`
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
}

// Orden is one service order.
type Orden struct {
	ID                int64      `json:"id"`
	ObraID            int64      `json:"obra_id"`
	EquipoID          int64      `json:"equipo_id"`
	UsuarioID         int64      `json:"usuario_id"`
	Descripcion       string     `json:"descripcion"`
	Fecha             string     `json:"fecha"`
	HoraInicio        time.Time  `json:"hora_inicio"`
	HoraFin           *time.Time `json:"hora_fin,omitempty"`
	Kilometro         *float64   `json:"kilometro,omitempty"`
	HorasUso          *float64   `json:"horas_uso,omitempty"`
	Estado            string     `json:"estado"`
	RequiereRepuestos bool       `json:"requiere_repuestos"`
	Repuestos         []Repuesto `json:"repuestos,omitempty"`
}

// Resumen is the joined row shape the listing endpoint returns: the order
// plus the display fields of its obra, equipo and usuario.
type Resumen struct {
	ID          int64      `json:"id"`
	Descripcion string     `json:"descripcion"`
	HoraInicio  time.Time  `json:"hora_inicio"`
	HoraFin     *time.Time `json:"hora_fin,omitempty"`
	Estado      string     `json:"estado"`

	ObraID     int64  `json:"obra_id"`
	CodObra    string `json:"cod_obra,omitempty"`
	NombreObra string `json:"nombre_obra"`

	EquipoID     int64  `json:"equipo_id"`
	NombreEquipo string `json:"nombre_equipo"`
	TipoEquipo   string `json:"tipo_equipo"`

	UsuarioID     int64  `json:"usuario_id"`
	NombreUsuario string `json:"nombre_usuario"`
	FullName      string `json:"full_name"`
}

// CreateInput carries the fields accepted when opening an order.
type CreateInput struct {
	ObraID            int64      `json:"obra_id"`
	EquipoID          int64      `json:"equipo_id"`
	UsuarioID         int64      `json:"usuario_id"`
	Descripcion       string     `json:"descripcion"`
	Estado            string     `json:"estado"`
	Kilometro         *float64   `json:"kilometro"`
	HorasUso          *float64   `json:"horas_uso"`
	RequiereRepuestos bool       `json:"requiere_repuestos"`
	Repuestos         []Repuesto `json:"repuestos"`
}
