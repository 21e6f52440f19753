// Package precursor finds the ions a mass may have been built from, both
// through the fragmentation hierarchy and through same-level complements.
package precursor

import (
	"log/slog"
	"slices"

	"github.com/ChrisMcGann/recma/pkg/config"
	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/logging"
)

// Resolver resolves precursor subtrees for a mass.
type Resolver struct {
	tolerance float64
	precision int
	adducts   []float64
	sameLevel bool
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates a Resolver from the matching settings of cfg.
func New(cfg *config.Config, opts ...Option) *Resolver {
	r := &Resolver{
		tolerance: cfg.MassTolerance,
		precision: cfg.RoundingPrecision,
		adducts:   slices.Clone(cfg.AdductMasses),
		sameLevel: cfg.SameLevelMatching,
		logger:    logging.Discard(),
	}
	if len(r.adducts) == 0 {
		r.adducts = []float64{0}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Precursors returns the merged subtrees of every ion in tree that could be
// target, directly or as an adduct. Each candidate contributes its children
// and, for every child, the same-level precursors of the remaining mass.
// When no ion matches and same-level matching is enabled, the same-level
// precursors of target are returned instead. Only entries strictly lighter
// than target are kept.
func (r *Resolver) Precursors(tree *core.Tree, target float64) *core.Tree {
	candidates := r.candidates(tree, target)

	if len(candidates) == 0 {
		if !r.sameLevel {
			return core.NewTree()
		}
		return r.SameLevel(tree, target)
	}

	var parts []*core.Tree
	for _, p := range candidates {
		if p.Node.Status != core.Decomposed {
			continue
		}
		children := p.Node.Children
		parts = append(parts, children)
		if !r.sameLevel {
			continue
		}
		for _, c := range children.Masses() {
			if found := r.SameLevel(children, p.Mass-c); found.Len() > 0 {
				parts = append(parts, found)
			}
		}
	}

	merged := Unify(parts...)
	r.logger.Debug("precursor.resolved",
		"target", target,
		"candidates", len(candidates),
		"precursors", merged.Len(),
	)
	return lighterThan(merged, target)
}

// candidates returns the entries within tolerance of target plus an adduct.
func (r *Resolver) candidates(tree *core.Tree, target float64) []core.Entry {
	var out []core.Entry
	for _, e := range tree.Entries() {
		for _, a := range r.adducts {
			if core.WithinTolerance(e.Mass, target+a, r.tolerance) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// SameLevel returns the ions of tree that, joined with another ion of the
// same tree, could make up mass. An ion i qualifies when mass - i, adjusted
// by an adduct offset, matches a different ion. Ions keep their subtrees.
func (r *Resolver) SameLevel(tree *core.Tree, mass float64) *core.Tree {
	entries := tree.Entries()
	var found []core.Entry
	for i, ion := range entries {
		if r.complementOf(entries, i, mass) {
			found = append(found, ion)
		}
	}
	return lighterThan(core.NewTree(found...), mass)
}

func (r *Resolver) complementOf(entries []core.Entry, i int, mass float64) bool {
	for _, a := range r.adducts {
		target := mass - entries[i].Mass + a
		for j, other := range entries {
			if j != i && core.WithinTolerance(other.Mass, target, r.tolerance) {
				return true
			}
		}
	}
	return false
}

// Common returns the masses both a and b could be built from, in ascending
// order. Masses are matched by their rounded value.
func (r *Resolver) Common(tree *core.Tree, a, b float64) []float64 {
	fromB := make(map[float64]bool)
	for _, m := range r.Precursors(tree, b).Masses() {
		fromB[core.RoundFloat(m, r.precision)] = true
	}

	var common []float64
	for _, m := range r.Precursors(tree, a).Masses() {
		if fromB[core.RoundFloat(m, r.precision)] {
			common = append(common, m)
		}
	}
	return common
}

func lighterThan(tree *core.Tree, target float64) *core.Tree {
	return tree.Filter(func(e core.Entry) bool {
		return e.Mass > 0 && e.Mass < target
	})
}
