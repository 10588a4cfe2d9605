package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flotanet.org/internal/dashboard"
)

var _ dashboard.StatsStore = (*Store)(nil)

// Collect gathers the dashboard aggregate. Each panel is one query. The
// filter narrows the parte-based panels only; the order panels always span
// the whole table.
func (s *Store) Collect(ctx context.Context, f dashboard.Filter) (dashboard.Stats, error) {
	var stats dashboard.Stats

	parteWhere, parteArgs := filterClause(f, "p")

	err := s.db.QueryRowContext(ctx, `
		select count(*),
		       count(*) filter (where o.estado = 'abierta'),
		       count(*) filter (where o.estado = 'pausada'),
		       count(*) filter (where o.estado = 'cerrada')
		from ordenes_servicio o
	`).Scan(&stats.TotalOrdenes, &stats.Abiertas, &stats.Pausadas, &stats.Cerradas)
	if err != nil {
		return dashboard.Stats{}, err
	}

	if err := s.db.QueryRowContext(ctx, `select count(*) from usuarios`).Scan(&stats.TotalUsuarios); err != nil {
		return dashboard.Stats{}, err
	}

	if stats.UltimasOrdenes, err = s.collectUltimasOrdenes(ctx); err != nil {
		return dashboard.Stats{}, err
	}
	if stats.RankingUsuarios, err = s.collectRanking(ctx, `
		select u.username, count(*) as cantidad
		from ordenes_servicio o
		join usuarios u on u.id = o.usuario_id
		group by u.username
		order by cantidad desc, u.username
		limit 3
	`, nil); err != nil {
		return dashboard.Stats{}, err
	}

	// Average open-to-close time of closed orders, whole minutes.
	var avgMinutes sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		select avg(extract(epoch from (o.hora_fin - o.hora_inicio)) / 60)
		from ordenes_servicio o
		where o.estado = 'cerrada' and o.hora_fin is not null
	`).Scan(&avgMinutes)
	if err != nil {
		return dashboard.Stats{}, err
	}
	if avgMinutes.Valid {
		stats.TiempoPromedio = int64(avgMinutes.Float64)
	}

	if stats.UltimosPartes, err = s.collectUltimosPartes(ctx, parteWhere, parteArgs); err != nil {
		return dashboard.Stats{}, err
	}
	if stats.RankingEquipos, err = s.collectRanking(ctx, fmt.Sprintf(`
		select e.nombre_equipo, count(*) as cantidad
		from partes_diarios p
		join equipos e on e.id = p.equipo_id
		%s
		group by e.nombre_equipo
		order by cantidad desc, e.nombre_equipo
		limit 3
	`, parteWhere), parteArgs); err != nil {
		return dashboard.Stats{}, err
	}
	if stats.CantidadPorObra, err = s.collectRanking(ctx, fmt.Sprintf(`
		select ob.nombre_obra, count(*) as cantidad
		from partes_diarios p
		join obras ob on ob.id = p.obra_id
		%s
		group by ob.nombre_obra
		order by cantidad desc, ob.nombre_obra
	`, parteWhere), parteArgs); err != nil {
		return dashboard.Stats{}, err
	}

	var avgTareas sql.NullFloat64
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		select avg(n) from (
			select count(d.id) as n
			from partes_diarios p
			left join detalle_partes_diarios d on d.parte_id = p.id
			%s
			group by p.id
		) per_parte
	`, parteWhere), parteArgs...).Scan(&avgTareas)
	if err != nil {
		return dashboard.Stats{}, err
	}
	if avgTareas.Valid {
		stats.PromedioTareas = int64(avgTareas.Float64)
	}

	return stats, nil
}

func (s *Store) collectUltimasOrdenes(ctx context.Context) ([]dashboard.OrdenReciente, error) {
	rows, err := s.db.QueryContext(ctx, `
		select o.id, o.descripcion, o.hora_inicio, o.estado, u.username, ob.nombre_obra
		from ordenes_servicio o
		join usuarios u on u.id = o.usuario_id
		join obras ob on ob.id = o.obra_id
		order by o.hora_inicio desc, o.id desc
		limit 20
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.OrdenReciente
	for rows.Next() {
		var r dashboard.OrdenReciente
		if err := rows.Scan(&r.ID, &r.Descripcion, &r.HoraInicio, &r.Estado, &r.Usuario, &r.NombreObra); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// collectUltimosPartes joins the latest location stamp of each daily log via
// a lateral subquery.
func (s *Store) collectUltimosPartes(ctx context.Context, where string, args []any) ([]dashboard.ParteReciente, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select p.id, to_char(p.fecha, 'YYYY-MM-DD'), u.full_name, ob.nombre_obra, e.nombre_equipo,
		       loc.lat, loc.lng, loc.precision_m, loc.fuente, loc.captured_at
		from partes_diarios p
		join usuarios u on u.id = p.usuario_id
		join obras ob on ob.id = p.obra_id
		join equipos e on e.id = p.equipo_id
		left join lateral (
			select ub.lat, ub.lng, ub.precision_m, ub.fuente, ub.captured_at
			from ubicaciones ub
			where ub.entity = 'parte' and ub.entity_id = p.id
			order by ub.captured_at desc
			limit 1
		) loc on true
		%s
		order by p.fecha desc, p.id desc
		limit 10
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.ParteReciente
	for rows.Next() {
		var (
			p          dashboard.ParteReciente
			lat, lng   sql.NullFloat64
			precision  sql.NullFloat64
			fuente     sql.NullString
			capturedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Fecha, &p.FullName, &p.NombreObra, &p.NombreEquipo,
			&lat, &lng, &precision, &fuente, &capturedAt); err != nil {
			return nil, err
		}
		if lat.Valid && lng.Valid {
			loc := &dashboard.UbicacionResumen{
				Lat:        lat.Float64,
				Lng:        lng.Float64,
				Fuente:     fuente.String,
				CapturedAt: capturedAt.Time,
			}
			if precision.Valid {
				v := precision.Float64
				loc.PrecisionM = &v
			}
			p.Ubicacion = loc
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) collectRanking(ctx context.Context, query string, args []any) ([]dashboard.RankingEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.RankingEntry
	for rows.Next() {
		var e dashboard.RankingEntry
		if err := rows.Scan(&e.Nombre, &e.Cantidad); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// filterClause builds the WHERE clause the parte-based panels share.
func filterClause(f dashboard.Filter, alias string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Fecha != "" {
		args = append(args, f.Fecha)
		conds = append(conds, fmt.Sprintf("%s.fecha = $%d", alias, len(args)))
	}
	if f.ObraID != 0 {
		args = append(args, f.ObraID)
		conds = append(conds, fmt.Sprintf("%s.obra_id = $%d", alias, len(args)))
	}
	if f.EquipoID != 0 {
		args = append(args, f.EquipoID)
		conds = append(conds, fmt.Sprintf("%s.equipo_id = $%d", alias, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "where " + strings.Join(conds, " and "), args
}
