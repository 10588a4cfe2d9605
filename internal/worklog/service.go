package worklog

import (
	"context"
	"strings"
	"time"
)

const (
	defaultUbicacionLimit = 50
	maxUbicacionLimit     = 500
)

// Store describes daily-log persistence.
type Store interface {
	CreateParte(ctx context.Context, p *Parte) (int64, error)
	ListPartes(ctx context.Context) ([]Parte, error)
	GetParte(ctx context.Context, id int64) (Parte, error)
	AddDetalle(ctx context.Context, d *Detalle) (int64, error)
	DetallesPorParte(ctx context.Context, parteID int64) ([]Detalle, error)

	CreateUbicacion(ctx context.Context, u *Ubicacion) (int64, error)
	UbicacionesPorEntidad(ctx context.Context, entity string, entityID int64, limit int) ([]Ubicacion, error)
}

// Service wraps Store with validation.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a worklog Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source (useful for tests).
func (s *Service) WithClock(fn func() time.Time) *Service {
	if fn != nil {
		s.now = fn
	}
	return s
}

// CrearParte opens a daily log header. Fecha is stamped server-side.
func (s *Service) CrearParte(ctx context.Context, p Parte) (int64, error) {
	if p.UsuarioID <= 0 || p.ObraID <= 0 || p.EquipoID <= 0 {
		return 0, ErrInvalidInput
	}
	p.Observaciones = strings.TrimSpace(p.Observaciones)
	if p.Fecha.IsZero() {
		p.Fecha = s.now().UTC()
	}
	return s.store.CreateParte(ctx, &p)
}

// Partes lists every daily log header.
func (s *Service) Partes(ctx context.Context) ([]Parte, error) {
	return s.store.ListPartes(ctx)
}

// AgregarDetalle appends a task line to an existing daily log.
func (s *Service) AgregarDetalle(ctx context.Context, d Detalle) (int64, error) {
	d.Hora = strings.TrimSpace(d.Hora)
	if d.ParteID <= 0 || d.TareaID <= 0 || d.Hora == "" {
		return 0, ErrInvalidInput
	}
	if _, err := s.store.GetParte(ctx, d.ParteID); err != nil {
		return 0, err
	}
	return s.store.AddDetalle(ctx, &d)
}

// DetallesPorParte lists the task lines of one daily log, each carrying the
// task name from the catalog.
func (s *Service) DetallesPorParte(ctx context.Context, parteID int64) ([]Detalle, error) {
	if parteID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.store.DetallesPorParte(ctx, parteID)
}

// RegistrarUbicacion stores a geolocation stamp. Fuente defaults to "gps".
func (s *Service) RegistrarUbicacion(ctx context.Context, u Ubicacion) (int64, error) {
	u.Entity = strings.ToLower(strings.TrimSpace(u.Entity))
	u.Fuente = strings.ToLower(strings.TrimSpace(u.Fuente))
	if u.Entity == "" || u.EntityID <= 0 {
		return 0, ErrInvalidInput
	}
	if u.Lat < -90 || u.Lat > 90 || u.Lng < -180 || u.Lng > 180 {
		return 0, ErrInvalidInput
	}
	if u.Fuente == "" {
		u.Fuente = "gps"
	}
	if u.CapturedAt.IsZero() {
		u.CapturedAt = s.now().UTC()
	}
	return s.store.CreateUbicacion(ctx, &u)
}

// UbicacionesPorEntidad lists stamps for one entity, most recent first.
// A non-positive limit falls back to the default; oversized limits clamp.
func (s *Service) UbicacionesPorEntidad(ctx context.Context, entity string, entityID int64, limit int) ([]Ubicacion, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	if entity == "" || entityID <= 0 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultUbicacionLimit
	}
	if limit > maxUbicacionLimit {
		limit = maxUbicacionLimit
	}
	return s.store.UbicacionesPorEntidad(ctx, entity, entityID, limit)
}
