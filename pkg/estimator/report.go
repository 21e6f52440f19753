package estimator

import (
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
)

// Decomposition is one candidate split evaluated while estimating Mass.
type Decomposition struct {
	Mass       float64 // Mass being decomposed
	Child      float64 // Observed child mass
	Complement float64 // Mass - Child, rounded
	Shared     float64 // Shared precursor credited once; 0 for a two-way split
	Corrected  bool    // True for a three-way split around Shared
	Selected   bool    // Best candidate for this child
	Depth      int
	Estimate   uncertainty.Estimate
}

// Report describes how an estimate was reached.
type Report struct {
	Mass     float64
	Estimate uncertainty.Estimate
	// Direct is the mass-only bound of the requested mass.
	Direct uncertainty.Estimate
	// Consensus narrows Estimate with Direct; both bound the same index.
	Consensus uncertainty.Estimate
	// Decompositions lists every evaluated split, in evaluation order.
	Decompositions []Decomposition
	// Nodes is the number of distinct (mass, tree) estimates computed.
	Nodes int
	// MemoHits counts estimates served from the per-call cache.
	MemoHits int
}

// Corrected returns the decompositions that credited a shared precursor.
func (r *Report) Corrected() []Decomposition {
	var out []Decomposition
	for _, d := range r.Decompositions {
		if d.Corrected {
			out = append(out, d)
		}
	}
	return out
}

// For returns the decompositions of mass through child.
func (r *Report) For(mass, child float64) []Decomposition {
	var out []Decomposition
	for _, d := range r.Decompositions {
		if d.Mass == mass && d.Child == child {
			out = append(out, d)
		}
	}
	return out
}
