// Package uncertainty provides the two representations of a bounded
// assembly index estimate: a closed interval and a sample set.
package uncertainty

import (
	"fmt"
)

// Key selects the central tendency used to compare estimates.
type Key int

const (
	// Upper compares by the upper bound (the 95th percentile for samples).
	Upper Key = iota
	// Midpoint compares by the interval midpoint (the median for samples).
	Midpoint
	// Mean compares by the mean.
	Mean
)

func (k Key) String() string {
	switch k {
	case Upper:
		return "upper"
	case Midpoint:
		return "midpoint"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// ParseKey converts a configuration value into a Key.
func ParseKey(s string) (Key, error) {
	switch s {
	case "upper":
		return Upper, nil
	case "midpoint":
		return Midpoint, nil
	case "mean":
		return Mean, nil
	default:
		return 0, fmt.Errorf("unknown central key %q", s)
	}
}

// Estimate is a bound on an assembly index value. Implementations are
// immutable; every operation returns a new value.
type Estimate interface {
	// Combine adds two estimates of independent parts.
	Combine(other Estimate) Estimate
	// Shift adds a fixed number of joining steps.
	Shift(steps float64) Estimate
	// Narrow conjoins two estimates of the same quantity.
	Narrow(other Estimate, key Key) Estimate
	// Central returns the value estimates are ordered by.
	Central(key Key) float64
	Lower() float64
	Upper() float64
	Mean() float64
}

// Less reports whether a sorts before b under key.
func Less(a, b Estimate, key Key) bool {
	return a.Central(key) < b.Central(key)
}

// Min returns the estimate with the smallest central value. Ties keep the
// earliest estimate.
func Min(key Key, first Estimate, rest ...Estimate) Estimate {
	best := first
	for _, e := range rest {
		if Less(e, best, key) {
			best = e
		}
	}
	return best
}

// Sum combines estimates left to right and adds steps.
func Sum(steps float64, first Estimate, rest ...Estimate) Estimate {
	total := first
	for _, e := range rest {
		total = total.Combine(e)
	}
	return total.Shift(steps)
}
