// Package scene is a headless scene graph for prize visuals, backed by a
// donburi ECS world. Each attached prize becomes one entity tagged Prize with
// Transform and Renderable components.
package scene

import (
	"errors"
	"sync"

	"github.com/yohamta/donburi"

	"github.com/udisondev/toycar/internal/model"
	"github.com/udisondev/toycar/internal/prize"
)

var (
	ErrAlreadyAttached = errors.New("prize already attached")
	ErrNotAttached     = errors.New("prize not attached")
)

// TransformData holds an entity's world position.
type TransformData struct {
	Position model.Vec3
}

// RenderableData links an entity back to its prize; visibility is read live.
type RenderableData struct {
	Prize *prize.Prize
}

var (
	Transform  = donburi.NewComponentType[TransformData]()
	Renderable = donburi.NewComponentType[RenderableData]()
	PrizeTag   = donburi.NewTag().SetName("Prize")
)

// Scene implements prize.Scene. Thread-safe for concurrent access.
type Scene struct {
	mu       sync.Mutex
	world    donburi.World
	entities map[*prize.Prize]donburi.Entity
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		world:    donburi.NewWorld(),
		entities: make(map[*prize.Prize]donburi.Entity, 16),
	}
}

// Attach implements prize.Scene.
func (s *Scene) Attach(p *prize.Prize) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[p]; ok {
		return ErrAlreadyAttached
	}

	entity := s.world.Create(PrizeTag, Transform, Renderable)
	entry := s.world.Entry(entity)
	Transform.Set(entry, &TransformData{Position: p.Position})
	Renderable.Set(entry, &RenderableData{Prize: p})

	s.entities[p] = entity
	return nil
}

// Detach implements prize.Scene.
func (s *Scene) Detach(p *prize.Prize) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[p]
	if !ok {
		return ErrNotAttached
	}
	delete(s.entities, p)

	if s.world.Valid(entity) {
		s.world.Remove(entity)
	}
	return nil
}

// Len returns the number of prize entities in the scene.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	PrizeTag.Each(s.world, func(*donburi.Entry) { n++ })
	return n
}

// Visible returns the prizes that would be drawn this frame.
func (s *Scene) Visible() []*prize.Prize {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*prize.Prize
	PrizeTag.Each(s.world, func(e *donburi.Entry) {
		r := Renderable.Get(e)
		if r.Prize != nil && r.Prize.Visible() {
			out = append(out, r.Prize)
		}
	})
	return out
}

// PositionOf returns the transform of an attached prize.
func (s *Scene) PositionOf(p *prize.Prize) (model.Vec3, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[p]
	if !ok || !s.world.Valid(entity) {
		return model.Vec3{}, false
	}
	return Transform.Get(s.world.Entry(entity)).Position, true
}
