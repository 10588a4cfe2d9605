package fleet

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemory is a Store kept in process memory, used by tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	equipos map[int64]Equipo
	obras   map[int64]Obra
	tareas  map[int64]Tarea
}

// NewInMemory creates an empty catalog.
func NewInMemory() *InMemory {
	return &InMemory{
		equipos: make(map[int64]Equipo),
		obras:   make(map[int64]Obra),
		tareas:  make(map[int64]Tarea),
	}
}

func (s *InMemory) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) ListEquipos(ctx context.Context, tipo string) ([]Equipo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Equipo, 0, len(s.equipos))
	for _, e := range s.equipos {
		if tipo != "" && e.Tipo != tipo {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (s *InMemory) ListTiposEquipo(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var tipos []string
	for _, e := range s.equipos {
		tipo := strings.TrimSpace(e.Tipo)
		if tipo == "" {
			continue
		}
		if _, ok := seen[tipo]; ok {
			continue
		}
		seen[tipo] = struct{}{}
		tipos = append(tipos, tipo)
	}
	sort.Strings(tipos)
	return tipos, nil
}

func (s *InMemory) GetEquipo(ctx context.Context, id int64) (Equipo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.equipos[id]
	if !ok {
		return Equipo{}, ErrNotFound
	}
	return e, nil
}

func (s *InMemory) CreateEquipo(ctx context.Context, e *Equipo) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.equipos {
		if existing.Nombre == e.Nombre {
			return 0, ErrConflict
		}
	}
	e.ID = s.nextSeq()
	s.equipos[e.ID] = *e
	return e.ID, nil
}

func (s *InMemory) ListObras(ctx context.Context) ([]Obra, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Obra, 0, len(s.obras))
	for _, o := range s.obras {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) CreateObra(ctx context.Context, o *Obra) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.nextSeq()
	s.obras[o.ID] = *o
	return o.ID, nil
}

func (s *InMemory) ListTareas(ctx context.Context) ([]Tarea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tarea, 0, len(s.tareas))
	for _, t := range s.tareas {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (s *InMemory) CreateTarea(ctx context.Context, t *Tarea) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextSeq()
	s.tareas[t.ID] = *t
	return t.ID, nil
}
