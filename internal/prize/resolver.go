package prize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agnivade/levenshtein"

	"github.com/udisondev/toycar/internal/model"
)

// maxSuggestDistance bounds the edit distance for "did you mean" hints.
const maxSuggestDistance = 3

// Options configures a Resolver.
type Options struct {
	// BaseModelKey, when set, is tried after record and hint lookups and
	// before a placeholder is synthesized.
	BaseModelKey string
	// Sound is attached to every resolved prize (may be nil).
	Sound Sound
}

// ClearReport describes a best-effort clear. Warnings never abort the clear.
type ClearReport struct {
	Removed  int
	Warnings []error
}

// Err joins all warnings, nil if there were none.
func (r ClearReport) Err() error {
	return errors.Join(r.Warnings...)
}

// Resolver turns placement records into prizes attached to a scene.
// Not safe for concurrent use: the owner serializes Clear/Resolve.
type Resolver struct {
	catalog Catalog
	scene   Scene
	opts    Options

	prizes []*Prize
}

// NewResolver creates a Resolver over a read-only catalog and a scene.
func NewResolver(catalog Catalog, scene Scene, opts Options) *Resolver {
	return &Resolver{
		catalog: catalog,
		scene:   scene,
		opts:    opts,
	}
}

// Prizes returns the prizes of the current pass.
func (r *Resolver) Prizes() []*Prize {
	out := make([]*Prize, len(r.prizes))
	copy(out, r.prizes)
	return out
}

// Clear detaches every prize of the previous pass and releases owned models.
func (r *Resolver) Clear() ClearReport {
	var report ClearReport
	for _, p := range r.prizes {
		if err := r.scene.Detach(p); err != nil {
			report.Warnings = append(report.Warnings, fmt.Errorf("detaching prize at %v: %w", p.Position, err))
		}
		p.release()
		report.Removed++
	}
	r.prizes = nil
	return report
}

// Resolve clears the previous pass and creates one prize per record.
// Records without a role get "default", except the last one which becomes
// the final prize. An empty record list yields no prizes.
func (r *Resolver) Resolve(records []model.PlacementRecord, hints []string) ([]*Prize, error) {
	if report := r.Clear(); len(report.Warnings) > 0 {
		slog.Warn("clearing previous prizes", "removed", report.Removed, "err", report.Err())
	}

	if len(records) == 0 {
		return nil, nil
	}

	last := len(records) - 1
	for i, rec := range records {
		role := Role(rec.Role)
		if role == "" {
			role = RoleDefault
			if i == last {
				role = RoleFinalPrize
			}
		}

		m, owned := r.chooseModel(rec, hints)
		p := newPrize(m, rec.Position(), role, owned, r.opts.Sound)

		if err := r.scene.Attach(p); err != nil {
			p.release()
			return r.Prizes(), fmt.Errorf("attaching prize %d %s: %w", i, rec, err)
		}
		r.prizes = append(r.prizes, p)
	}

	slog.Debug("prizes resolved", "count", len(r.prizes))
	return r.Prizes(), nil
}

// chooseModel: record hints → hint list → base model → owned placeholder.
func (r *Resolver) chooseModel(rec model.PlacementRecord, hints []string) (Model, bool) {
	recHints := rec.ModelHints()
	for _, key := range recHints {
		if m, ok := r.lookup(key); ok {
			return m, false
		}
	}
	if len(recHints) > 0 {
		r.suggest(recHints)
	}

	for _, key := range hints {
		if m, ok := r.lookup(key); ok {
			return m, false
		}
	}

	if r.opts.BaseModelKey != "" {
		if m, ok := r.lookup(r.opts.BaseModelKey); ok {
			return m, false
		}
	}

	return NewPlaceholder(), true
}

func (r *Resolver) lookup(key string) (Model, bool) {
	if r.catalog == nil || key == "" {
		return nil, false
	}
	m, ok := r.catalog.Lookup(key)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// suggest logs the closest catalog key for unmatched record hints.
func (r *Resolver) suggest(hints []string) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	lister, ok := r.catalog.(KeyLister)
	if !ok {
		return
	}
	keys := lister.Keys()
	for _, h := range hints {
		best, bestDist := "", maxSuggestDistance+1
		for _, k := range keys {
			if d := levenshtein.ComputeDistance(h, k); d < bestDist {
				best, bestDist = k, d
			}
		}
		if best != "" {
			slog.Debug("model hint not in catalog", "hint", h, "closest", best, "distance", bestDist)
		}
	}
}
