package estimator

import (
	"fmt"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
)

// run holds the state of one top-level Estimate call.
type run struct {
	*Estimator
	memo           *memo
	maxDepth       int
	detailed       bool
	decompositions []Decomposition
	err            error
}

func (e *Estimator) newRun(detailed bool) *run {
	return &run{
		Estimator: e,
		memo:      newMemo(),
		maxDepth:  e.cfg.MaxDepth,
		detailed:  detailed,
	}
}

// visit returns the memoized estimate of mass within tree. Once the run
// has failed every call returns the bare bound and the error is reported by
// the caller.
func (r *run) visit(tree *core.Tree, mass float64, depth int) uncertainty.Estimate {
	if r.err != nil {
		return r.bounds.Bound(mass, false)
	}
	if depth > r.maxDepth {
		r.err = fmt.Errorf("%w: %d levels at mass %g", ErrDepthExceeded, r.maxDepth, mass)
		return r.bounds.Bound(mass, false)
	}

	key := memoKey{mass: r.cfg.RoundMass(mass), tree: tree.Signature()}
	if est, ok := r.memo.get(key); ok {
		return est
	}
	est := r.compute(tree, mass, depth)
	r.memo.put(key, est)
	return est
}

// children returns the fragments of mass. A mass found in tree uses its own
// node; a mass missing from tree falls back to its resolved precursors.
func (r *run) children(tree *core.Tree, mass float64) (*core.Tree, bool) {
	if entry, ok := tree.Lookup(mass, r.cfg.MassTolerance); ok {
		if entry.Node.Status != core.Decomposed || entry.Node.Children.Len() == 0 {
			return nil, false
		}
		return entry.Node.Children, true
	}
	resolved := r.resolver.Precursors(tree, mass)
	return resolved, resolved.Len() > 0
}

func (r *run) compute(tree *core.Tree, mass float64, depth int) uncertainty.Estimate {
	children, ok := r.children(tree, mass)
	if !ok {
		return r.bounds.Bound(mass, false)
	}

	best := r.bounds.Bound(mass, true)
	masses := children.Masses()
	for i, child := range masses {
		complement := r.cfg.RoundMass(mass - child + r.cfg.ComplementAdduct)
		skipped := !r.splittable(mass, child) || !r.splittable(mass, complement)
		r.progress(ProgressEvent{
			Mass:    mass,
			Child:   child,
			Index:   i,
			Total:   len(masses),
			Depth:   depth,
			Skipped: skipped,
		})
		if skipped {
			continue
		}
		best = uncertainty.Min(r.key, best, r.decompose(children, mass, child, complement, depth))
	}

	r.logger.Debug("estimate.node",
		"mass", mass,
		"depth", depth,
		"children", len(masses),
		"central", best.Central(r.key),
	)
	return best
}

// splittable reports whether part is a usable piece of mass: above the
// fragment floor and strictly lighter than mass.
func (r *run) splittable(mass, part float64) bool {
	return part > r.cfg.MinimumFragmentMass && part > 0 && part < mass
}

// decompose returns the best estimate of mass built from child and
// complement. The two-way split is always a candidate; every shared
// precursor p adds a three-way split {child-p, complement-p, p} that builds
// p only once.
func (r *run) decompose(children *core.Tree, mass, child, complement float64, depth int) uncertainty.Estimate {
	best := uncertainty.Sum(r.cfg.OneStep,
		r.visit(children, child, depth+1),
		r.visit(children, complement, depth+1),
	)
	r.record(Decomposition{Mass: mass, Child: child, Complement: complement, Depth: depth, Estimate: best})
	selected := len(r.decompositions) - 1

	for _, shared := range r.resolver.Common(children, child, complement) {
		if shared <= r.cfg.MinimumFragmentMass {
			continue
		}
		a := r.cfg.RoundMass(child - shared)
		b := r.cfg.RoundMass(complement - shared)
		if min(a, b, shared) <= r.cfg.MinimumFragmentMass {
			continue
		}

		candidate := uncertainty.Sum(r.cfg.CorrectionSteps,
			r.visit(children, a, depth+1),
			r.visit(children, b, depth+1),
			r.visit(children, shared, depth+1),
		)
		r.record(Decomposition{
			Mass:       mass,
			Child:      child,
			Complement: complement,
			Shared:     shared,
			Corrected:  true,
			Depth:      depth,
			Estimate:   candidate,
		})
		if uncertainty.Less(candidate, best, r.key) {
			best = candidate
			selected = len(r.decompositions) - 1
		}
	}

	if r.detailed {
		r.decompositions[selected].Selected = true
	}
	return best
}

func (r *run) record(d Decomposition) {
	if r.detailed {
		r.decompositions = append(r.decompositions, d)
	}
}
