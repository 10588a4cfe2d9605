package fleet

import (
	"context"
	"strings"
)

// Store describes the persistence operations the fleet catalog needs.
type Store interface {
	ListEquipos(ctx context.Context, tipo string) ([]Equipo, error)
	ListTiposEquipo(ctx context.Context) ([]string, error)
	GetEquipo(ctx context.Context, id int64) (Equipo, error)
	CreateEquipo(ctx context.Context, e *Equipo) (int64, error)

	ListObras(ctx context.Context) ([]Obra, error)
	CreateObra(ctx context.Context, o *Obra) (int64, error)

	ListTareas(ctx context.Context) ([]Tarea, error)
	CreateTarea(ctx context.Context, t *Tarea) (int64, error)
}

// Service wraps Store with input validation.
type Service struct {
	store Store
}

// NewService constructs a fleet Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Equipos lists the fleet, optionally narrowed by tipo.
func (s *Service) Equipos(ctx context.Context, tipo string) ([]Equipo, error) {
	return s.store.ListEquipos(ctx, strings.TrimSpace(tipo))
}

// TiposEquipo lists the distinct non-empty equipment types.
func (s *Service) TiposEquipo(ctx context.Context) ([]string, error) {
	return s.store.ListTiposEquipo(ctx)
}

// Equipo fetches a single machine by id.
func (s *Service) Equipo(ctx context.Context, id int64) (Equipo, error) {
	if id <= 0 {
		return Equipo{}, ErrInvalidInput
	}
	return s.store.GetEquipo(ctx, id)
}

// CreateEquipo adds a machine to the catalog.
func (s *Service) CreateEquipo(ctx context.Context, e Equipo) (int64, error) {
	e.Nombre = strings.TrimSpace(e.Nombre)
	e.Tipo = strings.TrimSpace(e.Tipo)
	e.Descripcion = strings.TrimSpace(e.Descripcion)
	if e.Nombre == "" {
		return 0, ErrInvalidInput
	}
	return s.store.CreateEquipo(ctx, &e)
}

// Obras lists every work site.
func (s *Service) Obras(ctx context.Context) ([]Obra, error) {
	return s.store.ListObras(ctx)
}

// CreateObra adds a work site.
func (s *Service) CreateObra(ctx context.Context, o Obra) (int64, error) {
	o.CodObra = strings.TrimSpace(o.CodObra)
	o.Nombre = strings.TrimSpace(o.Nombre)
	if o.Nombre == "" {
		return 0, ErrInvalidInput
	}
	return s.store.CreateObra(ctx, &o)
}

// Tareas lists the task catalog ordered by name.
func (s *Service) Tareas(ctx context.Context) ([]Tarea, error) {
	return s.store.ListTareas(ctx)
}

// CreateTarea adds a task to the catalog.
func (s *Service) CreateTarea(ctx context.Context, t Tarea) (int64, error) {
	t.Nombre = strings.TrimSpace(t.Nombre)
	if t.Nombre == "" {
		return 0, ErrInvalidInput
	}
	return s.store.CreateTarea(ctx, &t)
}
