package uncertainty

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Quantiles reported as the lower and upper bound of a sample set.
const (
	LowerQuantile = 0.05
	UpperQuantile = 0.95
)

// Samples is an estimate represented by draws from a distribution.
// Summary statistics are computed once at construction.
type Samples struct {
	values []float64
	sorted []float64
	mean   float64
}

// NewSamples copies values into a new sample set.
func NewSamples(values []float64) Samples {
	s := Samples{values: slices.Clone(values)}
	s.sorted = slices.Clone(values)
	slices.Sort(s.sorted)
	if len(values) > 0 {
		s.mean = stat.Mean(s.values, nil)
	}
	return s
}

// Zeros returns n samples that are all zero.
func Zeros(n int) Samples {
	return NewSamples(make([]float64, n))
}

// Len returns the number of draws.
func (s Samples) Len() int { return len(s.values) }

// Values returns a copy of the draws in generation order.
func (s Samples) Values() []float64 { return slices.Clone(s.values) }

// Combine adds draws index by index, which convolves the two distributions.
// A shorter set is reused cyclically. Non-sample estimates are added as a
// constant at their mean.
func (s Samples) Combine(other Estimate) Estimate {
	o, ok := other.(Samples)
	if !ok {
		return s.Shift(other.Mean())
	}
	n := max(len(s.values), len(o.values))
	if len(s.values) == 0 || len(o.values) == 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = s.values[i%len(s.values)] + o.values[i%len(o.values)]
	}
	return NewSamples(out)
}

// Shift adds steps to every draw.
func (s Samples) Shift(steps float64) Estimate {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v + steps
	}
	return NewSamples(out)
}

// Narrow keeps whichever estimate has the smaller central value.
func (s Samples) Narrow(other Estimate, key Key) Estimate {
	return Min(key, s, other)
}

// Central returns the upper quantile, the median, or the mean.
func (s Samples) Central(key Key) float64 {
	switch key {
	case Upper:
		return s.Upper()
	case Midpoint:
		return s.quantile(0.5)
	default:
		return s.mean
	}
}

func (s Samples) Lower() float64 { return s.quantile(LowerQuantile) }
func (s Samples) Upper() float64 { return s.quantile(UpperQuantile) }
func (s Samples) Mean() float64  { return s.mean }

func (s Samples) quantile(p float64) float64 {
	if len(s.sorted) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, s.sorted, nil)
}

func (s Samples) String() string {
	return fmt.Sprintf("samples(n=%d, mean=%.3f, [%.3f, %.3f])", len(s.values), s.mean, s.Lower(), s.Upper())
}
