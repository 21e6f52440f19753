// Package bound provides base-case assembly index estimates computed from a
// bare mass, without looking at fragmentation data.
package bound

import (
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/ChrisMcGann/recma/pkg/uncertainty"
	"golang.org/x/sync/errgroup"
)

// Strategy estimates the assembly index of a mass from the mass alone.
type Strategy interface {
	// Bound returns the estimate for mass.
	Bound(mass float64) uncertainty.Estimate
	// Zero returns the estimate of something that needs no joining step.
	Zero() uncertainty.Estimate
}

// Regression bounds the index between a logarithmic lower bound and a
// linear upper bound:
//
//	lower = log2(max(mass*LowerScale, 1))
//	upper = max(UpperSlope*mass + UpperIntercept, 0)
type Regression struct {
	LowerScale     float64
	UpperSlope     float64
	UpperIntercept float64
}

// DefaultRegression returns the empirical MW regression constants.
func DefaultRegression() Regression {
	return Regression{LowerScale: 0.05, UpperSlope: 0.05, UpperIntercept: 2.5}
}

func (r Regression) Bound(mass float64) uncertainty.Estimate {
	lower := math.Log2(math.Max(mass*r.LowerScale, 1.0))
	upper := math.Max(r.UpperSlope*mass+r.UpperIntercept, 0.0)
	return uncertainty.NewInterval(lower, upper)
}

func (r Regression) Zero() uncertainty.Estimate {
	return uncertainty.Point(0)
}

// Linear is the single-value MW upper bound Slope*mass + Intercept, reported
// as a degenerate interval.
type Linear struct {
	Slope     float64
	Intercept float64
}

// DefaultLinear returns the 0.05*MW + 2.5 upper bound.
func DefaultLinear() Linear {
	return Linear{Slope: 0.05, Intercept: 2.5}
}

func (l Linear) Bound(mass float64) uncertainty.Estimate {
	return uncertainty.Point(math.Max(l.Slope*mass+l.Intercept, 0))
}

func (l Linear) Zero() uncertainty.Estimate {
	return uncertainty.Point(0)
}

// LinearParam is a distribution parameter that varies linearly with mass.
type LinearParam struct {
	Intercept float64
	Slope     float64
}

// At evaluates the parameter at mass.
func (p LinearParam) At(mass float64) float64 {
	return p.Intercept + p.Slope*mass
}

// SkewNormal draws Count samples from a skew-normal distribution whose
// shape, location and scale are linear in mass. Draws below zero are
// clamped to zero. Draws are generated in parallel chunks; every chunk has
// its own generator seeded from Seed, the mass and the chunk index, so the
// result depends only on those.
type SkewNormal struct {
	Shape    LinearParam
	Location LinearParam
	Scale    LinearParam
	Count    int
	Seed     uint64
}

// DefaultSkewNormal returns the empirical skew-normal fit with count draws.
func DefaultSkewNormal(count int, seed uint64) SkewNormal {
	return SkewNormal{
		Shape:    LinearParam{Intercept: 1.5, Slope: 0.002},
		Location: LinearParam{Intercept: 0.5, Slope: 0.045},
		Scale:    LinearParam{Intercept: 0.5, Slope: 0.008},
		Count:    count,
		Seed:     seed,
	}
}

// drawsPerChunk is the minimum number of draws handed to one goroutine.
const drawsPerChunk = 256

func (s SkewNormal) Bound(mass float64) uncertainty.Estimate {
	alpha := s.Shape.At(mass)
	loc := s.Location.At(mass)
	scale := math.Max(s.Scale.At(mass), 0)
	delta := alpha / math.Sqrt(1+alpha*alpha)
	rest := math.Sqrt(1 - delta*delta)

	values := make([]float64, s.Count)
	chunks := (s.Count + drawsPerChunk - 1) / drawsPerChunk

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for c := range chunks {
		start := c * drawsPerChunk
		end := min(start+drawsPerChunk, s.Count)
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(s.Seed^math.Float64bits(mass), uint64(c)))
			for i := start; i < end; i++ {
				u0 := rng.NormFloat64()
				u1 := delta*u0 + rest*rng.NormFloat64()
				if u0 < 0 {
					u1 = -u1
				}
				values[i] = math.Max(loc+scale*u1, 0)
			}
			return nil
		})
	}
	_ = g.Wait()

	return uncertainty.NewSamples(values)
}

func (s SkewNormal) Zero() uncertainty.Estimate {
	return uncertainty.Zeros(s.Count)
}
