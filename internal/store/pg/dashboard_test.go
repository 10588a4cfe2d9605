package pg

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"flotanet.org/internal/dashboard"
)

// The order panels span the whole table regardless of the filter; only the
// parte-based panels carry the fecha/obra/equipo clause. The end-of-query
// anchors pin both the panel limits and the absence of a WHERE on the order
// queries.
func TestCollectStats(t *testing.T) {
	store, mock := newMockStore(t)

	inicio := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`count\(\*\) filter \(where o\.estado = 'cerrada'\) from ordenes_servicio o$`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "abiertas", "pausadas", "cerradas"}).
			AddRow(int64(7), int64(3), int64(1), int64(3)))
	mock.ExpectQuery(`^select count\(\*\) from usuarios$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery(`join obras ob on ob\.id = o\.obra_id order by o\.hora_inicio desc, o\.id desc limit 20$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "descripcion", "hora_inicio", "estado", "username", "nombre_obra"}).
			AddRow(int64(12), "engrase general", inicio, "abierta", "jperez", "Ruta 3"))
	mock.ExpectQuery(`group by u\.username order by cantidad desc, u\.username limit 3$`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "cantidad"}).AddRow("jperez", int64(4)))
	mock.ExpectQuery(`from ordenes_servicio o where o\.estado = 'cerrada' and o\.hora_fin is not null$`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(90.5))
	mock.ExpectQuery(`\) loc on true where p\.fecha = \$1 order by p\.fecha desc, p\.id desc limit 10$`).
		WithArgs("2026-03-14").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "fecha", "full_name", "nombre_obra", "nombre_equipo",
			"lat", "lng", "precision_m", "fuente", "captured_at",
		}).AddRow(int64(21), "2026-03-14", "Juan Perez", "Ruta 3", "Pala P1",
			-34.6, -58.4, nil, "gps", inicio))
	mock.ExpectQuery(`where p\.fecha = \$1 group by e\.nombre_equipo order by cantidad desc, e\.nombre_equipo limit 3$`).
		WithArgs("2026-03-14").
		WillReturnRows(sqlmock.NewRows([]string{"nombre_equipo", "cantidad"}).AddRow("Pala P1", int64(6)))
	mock.ExpectQuery(`where p\.fecha = \$1 group by ob\.nombre_obra order by cantidad desc, ob\.nombre_obra$`).
		WithArgs("2026-03-14").
		WillReturnRows(sqlmock.NewRows([]string{"nombre_obra", "cantidad"}).AddRow("Ruta 3", int64(6)))
	mock.ExpectQuery(`left join detalle_partes_diarios d on d\.parte_id = p\.id where p\.fecha = \$1 group by p\.id`).
		WithArgs("2026-03-14").
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(2.4))

	stats, err := store.Collect(context.Background(), dashboard.Filter{Fecha: "2026-03-14"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if stats.TotalOrdenes != 7 || stats.Abiertas != 3 || stats.Pausadas != 1 || stats.Cerradas != 3 {
		t.Fatalf("unexpected order counters: %+v", stats)
	}
	if stats.TotalUsuarios != 5 {
		t.Fatalf("unexpected totalUsuarios: %d", stats.TotalUsuarios)
	}
	if stats.TiempoPromedio != 90 {
		t.Fatalf("unexpected tiempoPromedio: %d", stats.TiempoPromedio)
	}
	if stats.PromedioTareas != 2 {
		t.Fatalf("unexpected promedioTareas: %d", stats.PromedioTareas)
	}
	if len(stats.UltimasOrdenes) != 1 || stats.UltimasOrdenes[0].Usuario != "jperez" {
		t.Fatalf("unexpected ultimasOrdenes: %+v", stats.UltimasOrdenes)
	}
	if len(stats.UltimosPartes) != 1 {
		t.Fatalf("unexpected ultimosPartes: %+v", stats.UltimosPartes)
	}
	parte := stats.UltimosPartes[0]
	if parte.Ubicacion == nil || parte.Ubicacion.Fuente != "gps" || parte.Ubicacion.PrecisionM != nil {
		t.Fatalf("unexpected ubicacion on parte: %+v", parte.Ubicacion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
