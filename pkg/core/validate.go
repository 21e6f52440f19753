package core

import (
	"fmt"
	"math"
)

// InvalidTreeError reports a fragmentation tree that cannot be estimated.
type InvalidTreeError struct {
	Mass   float64 // Offending ion mass
	Parent float64 // Parent ion mass (0 for top-level ions)
	Reason string
}

func (e *InvalidTreeError) Error() string {
	if e.Parent != 0 {
		return fmt.Sprintf("invalid tree at %g (parent %g): %s", e.Mass, e.Parent, e.Reason)
	}
	return fmt.Sprintf("invalid tree at %g: %s", e.Mass, e.Reason)
}

// ValidateTree checks that every mass is positive and finite, that no child
// is heavier than its parent by tolerance or more, and that the tree has no
// cycles and is at most maxDepth levels deep. Children heavier than their
// parent by less than tolerance are accepted as measurement noise.
func ValidateTree(t *Tree, tolerance float64, maxDepth int) error {
	return validateLevel(t, 0, tolerance, maxDepth, 1, map[*Tree]bool{})
}

func validateLevel(t *Tree, parent, tolerance float64, maxDepth, depth int, path map[*Tree]bool) error {
	if t == nil {
		return nil
	}
	if path[t] {
		return &InvalidTreeError{Parent: parent, Reason: "cyclic reference"}
	}
	if depth > maxDepth {
		return &InvalidTreeError{Parent: parent, Reason: fmt.Sprintf("tree deeper than %d levels", maxDepth)}
	}
	path[t] = true
	defer delete(path, t)

	for _, e := range t.entries {
		if math.IsNaN(e.Mass) || math.IsInf(e.Mass, 0) {
			return &InvalidTreeError{Mass: e.Mass, Parent: parent, Reason: "mass is not finite"}
		}
		if e.Mass <= 0 {
			return &InvalidTreeError{Mass: e.Mass, Parent: parent, Reason: "mass must be positive"}
		}
		if parent > 0 && e.Mass-parent >= tolerance {
			return &InvalidTreeError{Mass: e.Mass, Parent: parent, Reason: "child heavier than parent"}
		}
		if e.Node.Status == Decomposed {
			if err := validateLevel(e.Node.Children, e.Mass, tolerance, maxDepth, depth+1, path); err != nil {
				return err
			}
		}
	}
	return nil
}
