package pg

import (
	"context"
	"database/sql"
	"errors"

	"flotanet.org/internal/worklog"
)

var _ worklog.Store = (*Store)(nil)

func (s *Store) CreateParte(ctx context.Context, p *worklog.Parte) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into partes_diarios (usuario_id, obra_id, equipo_id, fecha, horometro_inicio, observaciones)
		values ($1, $2, $3, $4, $5, $6)
		returning id
	`, p.UsuarioID, p.ObraID, p.EquipoID, p.Fecha, p.HorometroInicio,
		nullIfEmpty(p.Observaciones)).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return 0, worklog.ErrInvalidInput
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListPartes(ctx context.Context) ([]worklog.Parte, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, usuario_id, obra_id, equipo_id, fecha, horometro_inicio, coalesce(observaciones, '')
		from partes_diarios
		order by fecha desc, id desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []worklog.Parte
	for rows.Next() {
		var p worklog.Parte
		if err := rows.Scan(&p.ID, &p.UsuarioID, &p.ObraID, &p.EquipoID, &p.Fecha,
			&p.HorometroInicio, &p.Observaciones); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetParte(ctx context.Context, id int64) (worklog.Parte, error) {
	var p worklog.Parte
	err := s.db.QueryRowContext(ctx, `
		select id, usuario_id, obra_id, equipo_id, fecha, horometro_inicio, coalesce(observaciones, '')
		from partes_diarios
		where id = $1
	`, id).Scan(&p.ID, &p.UsuarioID, &p.ObraID, &p.EquipoID, &p.Fecha,
		&p.HorometroInicio, &p.Observaciones)
	if errors.Is(err, sql.ErrNoRows) {
		return worklog.Parte{}, worklog.ErrNotFound
	}
	if err != nil {
		return worklog.Parte{}, err
	}
	return p, nil
}

func (s *Store) AddDetalle(ctx context.Context, d *worklog.Detalle) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into detalle_partes_diarios (parte_id, tarea_id, hora, horometro_km)
		values ($1, $2, $3, $4)
		returning id
	`, d.ParteID, d.TareaID, d.Hora, d.HorometroKM).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return 0, worklog.ErrInvalidInput
		}
		return 0, err
	}
	return id, nil
}

// DetallesPorParte joins the task catalog so each line carries its task name.
func (s *Store) DetallesPorParte(ctx context.Context, parteID int64) ([]worklog.Detalle, error) {
	rows, err := s.db.QueryContext(ctx, `
		select d.id, d.parte_id, d.tarea_id, t.nombre, d.hora, d.horometro_km
		from detalle_partes_diarios d
		join tareas t on t.id = d.tarea_id
		where d.parte_id = $1
		order by d.hora, d.id
	`, parteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []worklog.Detalle
	for rows.Next() {
		var d worklog.Detalle
		if err := rows.Scan(&d.ID, &d.ParteID, &d.TareaID, &d.TareaNombre, &d.Hora, &d.HorometroKM); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateUbicacion(ctx context.Context, u *worklog.Ubicacion) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into ubicaciones (entity, entity_id, usuario_id, lat, lng, precision_m, fuente, captured_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id
	`, u.Entity, u.EntityID, u.UsuarioID, u.Lat, u.Lng, u.PrecisionM, u.Fuente, u.CapturedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) UbicacionesPorEntidad(ctx context.Context, entity string, entityID int64, limit int) ([]worklog.Ubicacion, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, entity, entity_id, usuario_id, lat, lng, precision_m, fuente, captured_at
		from ubicaciones
		where entity = $1 and entity_id = $2
		order by captured_at desc
		limit $3
	`, entity, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []worklog.Ubicacion
	for rows.Next() {
		var u worklog.Ubicacion
		if err := rows.Scan(&u.ID, &u.Entity, &u.EntityID, &u.UsuarioID,
			&u.Lat, &u.Lng, &u.PrecisionM, &u.Fuente, &u.CapturedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
