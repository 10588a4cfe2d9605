package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewInMemory())
	ctx := context.Background()

	for _, e := range []Equipo{
		{Nombre: "Excavadora CAT 320", Tipo: "excavadora"},
		{Nombre: "Retro JCB 3CX", Tipo: "retroexcavadora"},
		{Nombre: "Excavadora Komatsu PC200", Tipo: "excavadora"},
		{Nombre: "Camion Volvo FMX"},
	} {
		_, err := svc.CreateEquipo(ctx, e)
		require.NoError(t, err)
	}
	return svc
}

func TestEquiposListAndFilter(t *testing.T) {
	svc := seedCatalog(t)
	ctx := context.Background()

	all, err := svc.Equipos(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	excavadoras, err := svc.Equipos(ctx, "excavadora")
	require.NoError(t, err)
	require.Len(t, excavadoras, 2)
	// list comes back ordered by name
	assert.Equal(t, "Excavadora CAT 320", excavadoras[0].Nombre)
}

func TestTiposEquipoDistinctSorted(t *testing.T) {
	svc := seedCatalog(t)

	tipos, err := svc.TiposEquipo(context.Background())
	require.NoError(t, err)
	// empty tipo is dropped, duplicates collapse
	assert.Equal(t, []string{"excavadora", "retroexcavadora"}, tipos)
}

func TestEquipoByID(t *testing.T) {
	svc := seedCatalog(t)
	ctx := context.Background()

	e, err := svc.Equipo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Excavadora CAT 320", e.Nombre)

	_, err = svc.Equipo(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Equipo(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateEquipoValidation(t *testing.T) {
	svc := NewService(NewInMemory())
	ctx := context.Background()

	_, err := svc.CreateEquipo(ctx, Equipo{Nombre: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateEquipo(ctx, Equipo{Nombre: "Grua Terex"})
	require.NoError(t, err)
	_, err = svc.CreateEquipo(ctx, Equipo{Nombre: "Grua Terex"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestObrasAndTareas(t *testing.T) {
	svc := NewService(NewInMemory())
	ctx := context.Background()

	_, err := svc.CreateObra(ctx, Obra{Nombre: "Ruta 40 Tramo Norte", CodObra: "R40-N"})
	require.NoError(t, err)
	_, err = svc.CreateObra(ctx, Obra{Nombre: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	obras, err := svc.Obras(ctx)
	require.NoError(t, err)
	require.Len(t, obras, 1)
	assert.Equal(t, "R40-N", obras[0].CodObra)

	for _, nombre := range []string{"Zanjeo", "Carga", "Nivelacion"} {
		_, err := svc.CreateTarea(ctx, Tarea{Nombre: nombre})
		require.NoError(t, err)
	}
	tareas, err := svc.Tareas(ctx)
	require.NoError(t, err)
	require.Len(t, tareas, 3)
	assert.Equal(t, "Carga", tareas[0].Nombre)
}
