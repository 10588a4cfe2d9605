package worklog

import (
	"context"
	"sort"
	"sync"
)

// TareaNombreResolver supplies task names for detail listings. The zero
// value leaves them blank.
type TareaNombreResolver func(tareaID int64) string

// InMemory is a Store kept in process memory, used by tests and local runs.
type InMemory struct {
	mu          sync.RWMutex
	nextID      int64
	partes      map[int64]Parte
	detalles    map[int64][]Detalle
	ubicaciones []Ubicacion
	tareaNombre TareaNombreResolver
}

// NewInMemory creates an empty worklog store.
func NewInMemory(resolve TareaNombreResolver) *InMemory {
	return &InMemory{
		partes:      make(map[int64]Parte),
		detalles:    make(map[int64][]Detalle),
		tareaNombre: resolve,
	}
}

func (s *InMemory) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) CreateParte(ctx context.Context, p *Parte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextSeq()
	s.partes[p.ID] = *p
	return p.ID, nil
}

func (s *InMemory) ListPartes(ctx context.Context) ([]Parte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Parte, 0, len(s.partes))
	for _, p := range s.partes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) GetParte(ctx context.Context, id int64) (Parte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partes[id]
	if !ok {
		return Parte{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemory) AddDetalle(ctx context.Context, d *Detalle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.nextSeq()
	if s.tareaNombre != nil {
		d.TareaNombre = s.tareaNombre(d.TareaID)
	}
	s.detalles[d.ParteID] = append(s.detalles[d.ParteID], *d)
	return d.ID, nil
}

func (s *InMemory) DetallesPorParte(ctx context.Context, parteID int64) ([]Detalle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Detalle, len(s.detalles[parteID]))
	copy(out, s.detalles[parteID])
	return out, nil
}

func (s *InMemory) CreateUbicacion(ctx context.Context, u *Ubicacion) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.nextSeq()
	s.ubicaciones = append(s.ubicaciones, *u)
	return u.ID, nil
}

func (s *InMemory) UbicacionesPorEntidad(ctx context.Context, entity string, entityID int64, limit int) ([]Ubicacion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Ubicacion
	for _, u := range s.ubicaciones {
		if u.Entity == entity && u.EntityID == entityID {
			out = append(out, u)
		}
	}
	// most recent first
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
