package prize

// Model is an opaque handle to a renderable model or scene fragment.
type Model interface {
	Name() string
}

// Disposer is implemented by models whose geometry/material must be released
// explicitly. Only models owned by a prize are ever disposed.
type Disposer interface {
	Dispose()
}

// Catalog is the read-only view of the resource cache.
type Catalog interface {
	Lookup(key string) (Model, bool)
}

// KeyLister is optionally implemented by a Catalog to enable near-miss
// diagnostics for unmatched model hints.
type KeyLister interface {
	Keys() []string
}

// Scene receives prize visuals.
type Scene interface {
	Attach(p *Prize) error
	Detach(p *Prize) error
}

// Sound is played when a prize is collected.
type Sound interface {
	Play()
}

// Placeholder shape defaults.
const (
	PlaceholderRadius   = 0.5
	PlaceholderSegments = 12
	PlaceholderColor    = 0xffcc00
)

// Placeholder is the sphere synthesized when no catalog model matches.
// It is owned by exactly one prize and disposed when that prize is cleared.
type Placeholder struct {
	Radius   float64
	Segments int
	Color    uint32

	disposed bool
}

// NewPlaceholder creates a yellow sphere placeholder.
func NewPlaceholder() *Placeholder {
	return &Placeholder{
		Radius:   PlaceholderRadius,
		Segments: PlaceholderSegments,
		Color:    PlaceholderColor,
	}
}

// Name implements Model.
func (p *Placeholder) Name() string { return "placeholder" }

// Dispose implements Disposer.
func (p *Placeholder) Dispose() { p.disposed = true }

// Disposed reports whether Dispose was called.
func (p *Placeholder) Disposed() bool { return p.disposed }
