package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory is a Store kept in process memory, used by tests and local runs.
// Display names for the joined listing come from a DisplayResolver so the
// package stays decoupled from the identity and fleet stores.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	ordenes map[int64]Orden
	resolve DisplayResolver
}

// DisplayResolver supplies the joined display fields for a listing row.
// The zero value leaves them blank.
type DisplayResolver func(o Orden) (obraNombre, obraCod, equipoNombre, equipoTipo, username, fullName string)

// NewInMemory creates an empty order store.
func NewInMemory(resolve DisplayResolver) *InMemory {
	return &InMemory{ordenes: make(map[int64]Orden), resolve: resolve}
}

func (s *InMemory) Create(ctx context.Context, o *Orden) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	o.ID = s.nextID
	for i := range o.Repuestos {
		o.Repuestos[i].OrdenID = o.ID
		o.Repuestos[i].ID = int64(i + 1)
	}
	s.ordenes[o.ID] = *o
	return o.ID, nil
}

func (s *InMemory) List(ctx context.Context, ownerID int64) ([]Resumen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Resumen, 0, len(s.ordenes))
	for _, o := range s.ordenes {
		if ownerID != 0 && o.UsuarioID != ownerID {
			continue
		}
		row := Resumen{
			ID:          o.ID,
			Descripcion: o.Descripcion,
			HoraInicio:  o.HoraInicio,
			HoraFin:     o.HoraFin,
			Estado:      o.Estado,
			ObraID:      o.ObraID,
			EquipoID:    o.EquipoID,
			UsuarioID:   o.UsuarioID,
		}
		if s.resolve != nil {
			row.NombreObra, row.CodObra, row.NombreEquipo, row.TipoEquipo, row.NombreUsuario, row.FullName = s.resolve(o)
		}
		out = append(out, row)
	}
	// newest first, matching the SQL listing
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *InMemory) Get(ctx context.Context, id int64) (Orden, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.ordenes[id]
	if !ok {
		return Orden{}, ErrNotFound
	}
	return o, nil
}

func (s *InMemory) SetEstado(ctx context.Context, id int64, estado string, horaFin *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.ordenes[id]
	if !ok {
		return ErrNotFound
	}
	o.Estado = estado
	if horaFin != nil {
		o.HoraFin = horaFin
	}
	s.ordenes[id] = o
	return nil
}
