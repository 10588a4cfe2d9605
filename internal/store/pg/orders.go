package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"flotanet.org/internal/orders"
)

var _ orders.Store = (*Store)(nil)

// Create inserts the order and its requested spare parts in one transaction
// so a failed repuesto insert never leaves a half-written order behind.
func (s *Store) Create(ctx context.Context, o *orders.Orden) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		insert into ordenes_servicio
			(obra_id, equipo_id, usuario_id, descripcion, fecha, hora_inicio,
			 kilometro, horas_uso, estado, requiere_repuestos)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		returning id
	`, o.ObraID, o.EquipoID, o.UsuarioID, o.Descripcion, o.Fecha, o.HoraInicio,
		o.Kilometro, o.HorasUso, o.Estado, o.RequiereRepuestos).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return 0, orders.ErrInvalidInput
		}
		return 0, err
	}

	for _, r := range o.Repuestos {
		if _, err := tx.ExecContext(ctx, `
			insert into repuestos_orden (orden_id, nombre, cantidad)
			values ($1, $2, $3)
		`, id, r.Nombre, r.Cantidad); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// List returns joined order rows, newest first. ownerID 0 returns all rows.
func (s *Store) List(ctx context.Context, ownerID int64) ([]orders.Resumen, error) {
	query := `
		select o.id, o.descripcion, o.hora_inicio, o.hora_fin, o.estado,
		       ob.id, coalesce(ob.cod_obra, ''), ob.nombre_obra,
		       e.id, e.nombre_equipo, e.tipo,
		       u.id, u.username, u.full_name
		from ordenes_servicio o
		join obras ob on ob.id = o.obra_id
		join equipos e on e.id = o.equipo_id
		join usuarios u on u.id = o.usuario_id`
	args := []any{}
	if ownerID != 0 {
		query += `
		where o.usuario_id = $1`
		args = append(args, ownerID)
	}
	query += `
		order by o.hora_inicio desc, o.id desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Resumen
	for rows.Next() {
		var (
			r       orders.Resumen
			horaFin sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Descripcion, &r.HoraInicio, &horaFin, &r.Estado,
			&r.ObraID, &r.CodObra, &r.NombreObra,
			&r.EquipoID, &r.NombreEquipo, &r.TipoEquipo,
			&r.UsuarioID, &r.NombreUsuario, &r.FullName); err != nil {
			return nil, err
		}
		if horaFin.Valid {
			t := horaFin.Time
			r.HoraFin = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (orders.Orden, error) {
	var (
		o       orders.Orden
		horaFin sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, obra_id, equipo_id, usuario_id, descripcion, fecha,
		       hora_inicio, hora_fin, kilometro, horas_uso, estado, requiere_repuestos
		from ordenes_servicio
		where id = $1
	`, id).Scan(&o.ID, &o.ObraID, &o.EquipoID, &o.UsuarioID, &o.Descripcion, &o.Fecha,
		&o.HoraInicio, &horaFin, &o.Kilometro, &o.HorasUso, &o.Estado, &o.RequiereRepuestos)
	if errors.Is(err, sql.ErrNoRows) {
		return orders.Orden{}, orders.ErrNotFound
	}
	if err != nil {
		return orders.Orden{}, err
	}
	if horaFin.Valid {
		t := horaFin.Time
		o.HoraFin = &t
	}

	rows, err := s.db.QueryContext(ctx, `
		select id, orden_id, nombre, cantidad
		from repuestos_orden
		where orden_id = $1
		order by id
	`, id)
	if err != nil {
		return orders.Orden{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var r orders.Repuesto
		if err := rows.Scan(&r.ID, &r.OrdenID, &r.Nombre, &r.Cantidad); err != nil {
			return orders.Orden{}, err
		}
		o.Repuestos = append(o.Repuestos, r)
	}
	return o, rows.Err()
}

func (s *Store) SetEstado(ctx context.Context, id int64, estado string, horaFin *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update ordenes_servicio
		set estado = $2, hora_fin = coalesce($3, hora_fin)
		where id = $1
	`, id, estado, horaFin)
	if err != nil {
		return err
	}
	return requireAffected(res, orders.ErrNotFound)
}
