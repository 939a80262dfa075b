package loading

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/toycar/internal/model"
	"github.com/udisondev/toycar/internal/placement"
	"github.com/udisondev/toycar/internal/prize"
	"github.com/udisondev/toycar/internal/scene"
	"github.com/udisondev/toycar/internal/world"
)

// gatedSource держит Load до release; entered сообщает о входе.
type gatedSource struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedSource() *gatedSource {
	return &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedSource) Load(ctx context.Context, _ string) placement.Batch {
	s.once.Do(func() { close(s.entered) })
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return placement.Batch{
		Records: []model.PlacementRecord{model.At(1, 1, 1), model.At(2, 1, 2)},
		Stage:   placement.StageRemote,
	}
}

type emptyCatalog struct{}

func (emptyCatalog) Lookup(string) (prize.Model, bool) { return nil, false }

func TestLoadLevel_OvertakenByClear(t *testing.T) {
	src := newGatedSource()
	sc := scene.New()
	w := world.New(src, emptyCatalog{}, sc, world.Options{})
	s := &recordingSurface{}
	o := New(w, s, nil)

	errc := make(chan error, 1)
	go func() { errc <- o.LoadLevel(context.Background(), 2) }()

	select {
	case <-src.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("source was not called")
	}

	w.ClearCurrentScene()
	close(src.release)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, world.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("LoadLevel blocked on a superseded pass")
	}

	assert.Empty(t, s.errorDialogs())
	assert.Zero(t, sc.Len(), "stale placements must not reach the scene")
	assert.Zero(t, w.Level())
	assert.Equal(t, PhaseIdle, o.State().Phase)

	// следующий проход проходит без ожидания кнопки
	require.NoError(t, o.LoadLevel(context.Background(), 3))
	assert.Equal(t, 3, w.Level())
	assert.Equal(t, 2, sc.Len())
}
