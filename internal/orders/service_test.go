package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flotanet.org/internal/auth"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func newTestService() *Service {
	return NewService(NewInMemory(nil)).WithClock(fixedClock)
}

func TestCreateStampsDateAndDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{
		ObraID: 1, EquipoID: 2, UsuarioID: 3,
		Descripcion: " Cambio de aceite ",
	})
	require.NoError(t, err)

	o, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Cambio de aceite", o.Descripcion)
	assert.Equal(t, EstadoAbierta, o.Estado)
	assert.Equal(t, "2026-03-14", o.Fecha)
	assert.Equal(t, fixedClock(), o.HoraInicio)
	assert.Nil(t, o.HoraFin)
}

func TestCreateRequiredFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []CreateInput{
		{EquipoID: 2, UsuarioID: 3, Descripcion: "x"},
		{ObraID: 1, UsuarioID: 3, Descripcion: "x"},
		{ObraID: 1, EquipoID: 2, Descripcion: "x"},
		{ObraID: 1, EquipoID: 2, UsuarioID: 3, Descripcion: "  "},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	_, err := svc.Create(ctx, CreateInput{
		ObraID: 1, EquipoID: 2, UsuarioID: 3, Descripcion: "x", Estado: "rota",
	})
	assert.ErrorIs(t, err, ErrInvalidEstado)
}

func TestCreateWithRepuestos(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{
		ObraID: 1, EquipoID: 2, UsuarioID: 3, Descripcion: "Correa rota",
		RequiereRepuestos: true,
		Repuestos: []Repuesto{
			{Nombre: "Correa alternador", Cantidad: 1},
			{Nombre: "Filtro aire", Cantidad: 2},
		},
	})
	require.NoError(t, err)

	o, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, o.Repuestos, 2)
	assert.True(t, o.RequiereRepuestos)
	assert.Equal(t, id, o.Repuestos[0].OrdenID)

	// a blank or zero-quantity line rejects the whole order
	_, err = svc.Create(ctx, CreateInput{
		ObraID: 1, EquipoID: 2, UsuarioID: 3, Descripcion: "x",
		RequiereRepuestos: true,
		Repuestos:         []Repuesto{{Nombre: "", Cantidad: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListVisibility(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, usuario := range []int64{10, 10, 20} {
		_, err := svc.Create(ctx, CreateInput{
			ObraID: 1, EquipoID: 2, UsuarioID: usuario, Descripcion: "trabajo",
		})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, auth.Decision{Scope: auth.ScopeAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// newest first
	assert.Greater(t, all[0].ID, all[1].ID)

	own, err := svc.List(ctx, auth.Decision{Scope: auth.ScopeOwn, OwnerID: 10})
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, row := range own {
		assert.Equal(t, int64(10), row.UsuarioID)
	}

	_, err = svc.List(ctx, auth.Decision{Scope: auth.ScopeOwn})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCambiarEstado(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{
		ObraID: 1, EquipoID: 2, UsuarioID: 3, Descripcion: "x",
	})
	require.NoError(t, err)

	require.NoError(t, svc.CambiarEstado(ctx, id, "pausada"))
	o, _ := svc.Get(ctx, id)
	assert.Equal(t, EstadoPausada, o.Estado)
	assert.Nil(t, o.HoraFin)

	require.NoError(t, svc.CambiarEstado(ctx, id, " CERRADA "))
	o, _ = svc.Get(ctx, id)
	assert.Equal(t, EstadoCerrada, o.Estado)
	require.NotNil(t, o.HoraFin)
	assert.Equal(t, fixedClock(), *o.HoraFin)

	assert.ErrorIs(t, svc.CambiarEstado(ctx, id, "perdida"), ErrInvalidEstado)
	assert.ErrorIs(t, svc.CambiarEstado(ctx, 999, "cerrada"), ErrNotFound)
}
