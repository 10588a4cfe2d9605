package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	got   Filter
	stats Stats
}

func (s *stubStore) Collect(ctx context.Context, f Filter) (Stats, error) {
	s.got = f
	return s.stats, nil
}

func TestStatsPassesFilterThrough(t *testing.T) {
	store := &stubStore{stats: Stats{TotalOrdenes: 3, Abiertas: 2, Cerradas: 1}}
	svc := NewService(store)

	stats, err := svc.Stats(context.Background(), Filter{Fecha: " 2026-03-14 ", ObraID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrdenes)
	assert.Equal(t, "2026-03-14", store.got.Fecha)
	assert.Equal(t, int64(2), store.got.ObraID)
}

func TestStatsRejectsBadFilter(t *testing.T) {
	svc := NewService(&stubStore{})

	_, err := svc.Stats(context.Background(), Filter{Fecha: "14/03/2026"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = svc.Stats(context.Background(), Filter{ObraID: -1})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
