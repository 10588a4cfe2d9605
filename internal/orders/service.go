package orders

import (
	"context"
	"strings"
	"time"

	"flotanet.org/internal/auth"
)

// Store describes order persistence. Create must persist the spare-part
// lines atomically with the order itself.
type Store interface {
	Create(ctx context.Context, o *Orden) (int64, error)
	List(ctx context.Context, ownerID int64) ([]Resumen, error) // ownerID 0 = all rows
	Get(ctx context.Context, id int64) (Orden, error)
	SetEstado(ctx context.Context, id int64, estado string, horaFin *time.Time) error
}

// Service wraps Store with validation and the visibility rule.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs an order Service.
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

// Create opens a service order. Fecha and hora_inicio are stamped
// server-side; the estado defaults to abierta.
func (s *Service) Create(ctx context.Context, in CreateInput) (int64, error) {
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	if in.ObraID <= 0 || in.EquipoID <= 0 || in.UsuarioID <= 0 || in.Descripcion == "" {
		return 0, ErrInvalidInput
	}
	estado := strings.ToLower(strings.TrimSpace(in.Estado))
	if estado == "" {
		estado = EstadoAbierta
	}
	if !ValidEstado(estado) {
		return 0, ErrInvalidEstado
	}

	repuestos := make([]Repuesto, 0, len(in.Repuestos))
	if in.RequiereRepuestos {
		for _, r := range in.Repuestos {
			r.Nombre = strings.TrimSpace(r.Nombre)
			if r.Nombre == "" || r.Cantidad <= 0 {
				return 0, ErrInvalidInput
			}
			repuestos = append(repuestos, r)
		}
	}

	now := s.now().UTC()
	orden := Orden{
		ObraID:            in.ObraID,
		EquipoID:          in.EquipoID,
		UsuarioID:         in.UsuarioID,
		Descripcion:       in.Descripcion,
		Fecha:             now.Format("2006-01-02"),
		HoraInicio:        now,
		Kilometro:         in.Kilometro,
		HorasUso:          in.HorasUso,
		Estado:            estado,
		RequiereRepuestos: in.RequiereRepuestos,
		Repuestos:         repuestos,
	}
	return s.store.Create(ctx, &orden)
}

// List returns orders visible under the given decision: every row for
// ScopeAll, only the caller's rows otherwise. The same Decision type gates
// any future row-filtered listing; handlers never recompute "isAdmin".
func (s *Service) List(ctx context.Context, decision auth.Decision) ([]Resumen, error) {
	if decision.ViewAll() {
		return s.store.List(ctx, 0)
	}
	if decision.OwnerID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.store.List(ctx, decision.OwnerID)
}

// Get fetches one order with its spare-part lines.
func (s *Service) Get(ctx context.Context, id int64) (Orden, error) {
	if id <= 0 {
		return Orden{}, ErrInvalidInput
	}
	return s.store.Get(ctx, id)
}

// CambiarEstado moves an order to a new state. Closing stamps hora_fin.
func (s *Service) CambiarEstado(ctx context.Context, id int64, estado string) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	estado = strings.ToLower(strings.TrimSpace(estado))
	if !ValidEstado(estado) {
		return ErrInvalidEstado
	}
	var horaFin *time.Time
	if estado == EstadoCerrada {
		t := s.now().UTC()
		horaFin = &t
	}
	return s.store.SetEstado(ctx, id, estado, horaFin)
}
