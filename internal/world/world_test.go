package world

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/toycar/internal/model"
	"github.com/udisondev/toycar/internal/placement"
	"github.com/udisondev/toycar/internal/prize"
	"github.com/udisondev/toycar/internal/scene"
)

type stubSource struct {
	batch placement.Batch
	urls  []string
	// block, если задан, держит Load до закрытия канала.
	block   chan struct{}
	entered chan struct{}
}

func (s *stubSource) Load(ctx context.Context, levelURL string) placement.Batch {
	s.urls = append(s.urls, levelURL)
	if s.block != nil {
		close(s.entered)
		<-s.block
	}
	return s.batch
}

type noCatalog struct{}

func (noCatalog) Lookup(string) (prize.Model, bool) { return nil, false }

func threeRecords() placement.Batch {
	return placement.Batch{
		Records: []model.PlacementRecord{model.At(1, 1, 1), model.At(2, 1, 2), model.At(3, 1, 3)},
		Stage:   placement.StageLocal,
	}
}

func newTestWorld(src Source) (*World, *scene.Scene) {
	sc := scene.New()
	w := New(src, noCatalog{}, sc, Options{
		LevelURL:   func(level int) string { return "http://content/api/levels/" + strconv.Itoa(level) },
		RobotStart: model.NewVec3(0, 1.5, 0),
	})
	return w, sc
}

func TestLoadLevel(t *testing.T) {
	src := &stubSource{batch: threeRecords()}
	w, sc := newTestWorld(src)

	require.NoError(t, w.LoadLevel(context.Background(), 2))

	assert.Equal(t, 2, w.Level())
	assert.Equal(t, placement.StageLocal, w.Stage())
	assert.Equal(t, []string{"http://content/api/levels/2"}, src.urls)
	assert.Equal(t, 3, sc.Len())

	prizes := w.Prizes()
	require.Len(t, prizes, 3)
	assert.True(t, prizes[2].IsFinal())
	assert.False(t, prizes[0].IsFinal())
}

func TestLoadLevel_ReloadReplacesPrizes(t *testing.T) {
	w, sc := newTestWorld(&stubSource{batch: threeRecords()})

	for range 3 {
		require.NoError(t, w.LoadLevel(context.Background(), 1))
		assert.Equal(t, 3, sc.Len())
	}
}

func TestLoadLevel_NilLevelURL(t *testing.T) {
	src := &stubSource{batch: threeRecords()}
	w := New(src, noCatalog{}, scene.New(), Options{})

	require.NoError(t, w.LoadLevel(context.Background(), 1))
	assert.Equal(t, []string{""}, src.urls)
}

func TestLoadLevel_InvalidLevel(t *testing.T) {
	src := &stubSource{batch: threeRecords()}
	w, _ := newTestWorld(src)

	err := w.LoadLevel(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Empty(t, src.urls)
}

func TestLoadLevel_CanceledContext(t *testing.T) {
	w, sc := newTestWorld(&stubSource{batch: threeRecords()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.LoadLevel(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sc.Len())
	assert.Equal(t, 0, w.Level())
}

func TestLoadLevel_SupersededByClear(t *testing.T) {
	src := &stubSource{
		batch:   threeRecords(),
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	w, sc := newTestWorld(src)

	errc := make(chan error, 1)
	go func() { errc <- w.LoadLevel(context.Background(), 1) }()

	<-src.entered
	report := w.ClearCurrentScene()
	assert.Equal(t, 0, report.Removed)
	close(src.block)

	err := <-errc
	assert.True(t, errors.Is(err, ErrSuperseded))
	assert.Equal(t, 0, sc.Len())
	assert.Empty(t, w.Prizes())
}

func TestClearCurrentScene(t *testing.T) {
	w, sc := newTestWorld(&stubSource{batch: threeRecords()})
	require.NoError(t, w.LoadLevel(context.Background(), 1))

	report := w.ClearCurrentScene()
	assert.Equal(t, 3, report.Removed)
	assert.NoError(t, report.Err())
	assert.Equal(t, 0, sc.Len())
	assert.Equal(t, 0, w.Level())

	// повторная очистка пустой сцены безопасна
	assert.Equal(t, 0, w.ClearCurrentScene().Removed)
}

func TestCollect_RevealsFinalPrize(t *testing.T) {
	w, _ := newTestWorld(&stubSource{batch: threeRecords()})
	require.NoError(t, w.LoadLevel(context.Background(), 1))

	prizes := w.Prizes()
	final := prizes[2]
	require.False(t, final.Visible())

	assert.False(t, w.Collect(prizes[0], 2))
	assert.False(t, w.Collect(prizes[0], 2), "second collect is a no-op")
	assert.False(t, final.Visible())

	assert.True(t, w.Collect(prizes[1], 2))
	assert.True(t, final.Visible())
}

func TestRobotPosition(t *testing.T) {
	w, _ := newTestWorld(&stubSource{})
	assert.Equal(t, model.NewVec3(0, 1.5, 0), w.RobotPosition())

	w.ResetRobotPosition(model.NewVec3(-17, 1.5, -67))
	assert.Equal(t, model.NewVec3(-17, 1.5, -67), w.RobotPosition())
}

type silentSound struct{}

func (silentSound) Play() {}

func TestCoinSound(t *testing.T) {
	w := New(&stubSource{}, noCatalog{}, scene.New(), Options{CoinSound: silentSound{}})
	assert.Equal(t, silentSound{}, w.CoinSound())
}

func TestNearestPrize(t *testing.T) {
	w, _ := newTestWorld(&stubSource{batch: threeRecords()})
	require.NoError(t, w.LoadLevel(context.Background(), 1))

	from := model.NewVec3(3, 1, 3)

	p, ok := w.NearestPrize(from)
	require.True(t, ok)
	assert.Equal(t, model.NewVec3(2, 1, 2), p.Position, "hidden final prize is skipped")

	w.Collect(p, 5)
	p, ok = w.NearestPrize(from)
	require.True(t, ok)
	assert.Equal(t, model.NewVec3(1, 1, 1), p.Position)

	w.Collect(p, 5)
	_, ok = w.NearestPrize(from)
	assert.False(t, ok)
}
