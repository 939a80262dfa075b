package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/toycar/internal/model"
	"github.com/udisondev/toycar/internal/prize"
)

func resolveInto(t *testing.T, s *Scene, recs ...model.PlacementRecord) []*prize.Prize {
	t.Helper()
	r := prize.NewResolver(nil, s, prize.Options{})
	ps, err := r.Resolve(recs, nil)
	require.NoError(t, err)
	return ps
}

func TestScene_AttachDetach(t *testing.T) {
	s := New()
	ps := resolveInto(t, s, model.At(1, 2, 3), model.At(4, 5, 6))

	require.Equal(t, 2, s.Len())

	pos, ok := s.PositionOf(ps[0])
	require.True(t, ok)
	assert.Equal(t, model.NewVec3(1, 2, 3), pos)

	require.NoError(t, s.Detach(ps[0]))
	assert.Equal(t, 1, s.Len())

	_, ok = s.PositionOf(ps[0])
	assert.False(t, ok)
	assert.ErrorIs(t, s.Detach(ps[0]), ErrNotAttached)
}

func TestScene_AttachTwice(t *testing.T) {
	s := New()
	ps := resolveInto(t, s, model.At(0, 0, 0))

	assert.ErrorIs(t, s.Attach(ps[0]), ErrAlreadyAttached)
	assert.Equal(t, 1, s.Len())
}

func TestScene_VisibleSkipsFinalPrize(t *testing.T) {
	s := New()
	ps := resolveInto(t, s, model.At(0, 0, 0), model.At(1, 0, 0))

	vis := s.Visible()
	require.Len(t, vis, 1)
	assert.Same(t, ps[0], vis[0])

	ps[1].Reveal()
	assert.Len(t, s.Visible(), 2)
}

func TestScene_ResolverClearEmptiesWorld(t *testing.T) {
	s := New()
	r := prize.NewResolver(nil, s, prize.Options{})

	_, err := r.Resolve([]model.PlacementRecord{{}, {}, {}}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	report := r.Clear()
	assert.Equal(t, 3, report.Removed)
	assert.Zero(t, s.Len())
}
