package prize

import (
	"github.com/udisondev/toycar/internal/model"
)

// Role classifies a prize. Explicit roles from content are carried verbatim,
// so values other than the two constants are possible.
type Role string

const (
	RoleDefault    Role = "default"
	RoleFinalPrize Role = "finalPrize"
)

// Prize is a collectible resolved from a placement record.
type Prize struct {
	Model    Model
	Position model.Vec3
	Role     Role
	// Owned is true when Model was synthesized for this prize and must be
	// disposed with it. Catalog models are shared and never disposed here.
	Owned bool

	sound     Sound
	collected bool
	visible   bool
}

func newPrize(m Model, pos model.Vec3, role Role, owned bool, sound Sound) *Prize {
	return &Prize{
		Model:    m,
		Position: pos,
		Role:     role,
		Owned:    owned,
		sound:    sound,
		visible:  role != RoleFinalPrize,
	}
}

// IsFinal reports whether this is the level's final prize.
func (p *Prize) IsFinal() bool { return p.Role == RoleFinalPrize }

// Visible reports whether the prize model is shown.
func (p *Prize) Visible() bool { return p.visible }

// Collected reports whether the prize was collected.
func (p *Prize) Collected() bool { return p.collected }

// Reveal makes a hidden prize visible (final prize unlocked).
func (p *Prize) Reveal() { p.visible = true }

// Collect marks the prize collected and plays the coin sound.
// Returns false if it was already collected.
func (p *Prize) Collect() bool {
	if p.collected {
		return false
	}
	p.collected = true
	p.visible = false
	if p.sound != nil {
		p.sound.Play()
	}
	return true
}

func (p *Prize) release() {
	if !p.Owned {
		return
	}
	if d, ok := p.Model.(Disposer); ok {
		d.Dispose()
	}
}
