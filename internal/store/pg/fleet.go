package pg

import (
	"context"
	"database/sql"
	"errors"

	"flotanet.org/internal/fleet"
)

var _ fleet.Store = (*Store)(nil)

func (s *Store) ListEquipos(ctx context.Context, tipo string) ([]fleet.Equipo, error) {
	query := `
		select id, nombre_equipo, tipo, coalesce(descripcion, '')
		from equipos
		order by nombre_equipo`
	args := []any{}
	if tipo != "" {
		query = `
		select id, nombre_equipo, tipo, coalesce(descripcion, '')
		from equipos
		where tipo = $1
		order by nombre_equipo`
		args = append(args, tipo)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.Equipo
	for rows.Next() {
		var e fleet.Equipo
		if err := rows.Scan(&e.ID, &e.Nombre, &e.Tipo, &e.Descripcion); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListTiposEquipo(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `select distinct tipo from equipos order by tipo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tipos []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tipos = append(tipos, t)
	}
	return tipos, rows.Err()
}

func (s *Store) GetEquipo(ctx context.Context, id int64) (fleet.Equipo, error) {
	var e fleet.Equipo
	err := s.db.QueryRowContext(ctx, `
		select id, nombre_equipo, tipo, coalesce(descripcion, '')
		from equipos
		where id = $1
	`, id).Scan(&e.ID, &e.Nombre, &e.Tipo, &e.Descripcion)
	if errors.Is(err, sql.ErrNoRows) {
		return fleet.Equipo{}, fleet.ErrNotFound
	}
	if err != nil {
		return fleet.Equipo{}, err
	}
	return e, nil
}

func (s *Store) CreateEquipo(ctx context.Context, e *fleet.Equipo) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into equipos (nombre_equipo, tipo, descripcion)
		values ($1, $2, $3)
		returning id
	`, e.Nombre, e.Tipo, nullIfEmpty(e.Descripcion)).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return 0, fleet.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListObras(ctx context.Context) ([]fleet.Obra, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, coalesce(cod_obra, ''), nombre_obra
		from obras
		order by nombre_obra
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.Obra
	for rows.Next() {
		var o fleet.Obra
		if err := rows.Scan(&o.ID, &o.CodObra, &o.Nombre); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) CreateObra(ctx context.Context, o *fleet.Obra) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into obras (cod_obra, nombre_obra)
		values ($1, $2)
		returning id
	`, nullIfEmpty(o.CodObra), o.Nombre).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return 0, fleet.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListTareas(ctx context.Context) ([]fleet.Tarea, error) {
	rows, err := s.db.QueryContext(ctx, `select id, nombre from tareas order by nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.Tarea
	for rows.Next() {
		var t fleet.Tarea
		if err := rows.Scan(&t.ID, &t.Nombre); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateTarea(ctx context.Context, t *fleet.Tarea) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into tareas (nombre) values ($1) returning id
	`, t.Nombre).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return 0, fleet.ErrConflict
		}
		return 0, err
	}
	return id, nil
}
