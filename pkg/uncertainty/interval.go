package uncertainty

import (
	"fmt"
	"math"
)

// Interval is a closed bound [Lo, Hi] on an assembly index.
type Interval struct {
	Lo, Hi float64
}

// NewInterval returns the interval spanning a and b in either order.
func NewInterval(a, b float64) Interval {
	return Interval{Lo: math.Min(a, b), Hi: math.Max(a, b)}
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval {
	return Interval{Lo: v, Hi: v}
}

// Combine adds the bounds of both estimates.
func (i Interval) Combine(other Estimate) Estimate {
	return Interval{Lo: i.Lo + other.Lower(), Hi: i.Hi + other.Upper()}
}

// Shift moves both bounds by steps.
func (i Interval) Shift(steps float64) Estimate {
	return Interval{Lo: i.Lo + steps, Hi: i.Hi + steps}
}

// Narrow intersects the two intervals. Disjoint intervals cannot both hold,
// so the smaller one under key is kept.
func (i Interval) Narrow(other Estimate, key Key) Estimate {
	lo := math.Max(i.Lo, other.Lower())
	hi := math.Min(i.Hi, other.Upper())
	if lo > hi {
		return Min(key, i, other)
	}
	return Interval{Lo: lo, Hi: hi}
}

// Central returns the upper bound, or the midpoint for Midpoint and Mean.
func (i Interval) Central(key Key) float64 {
	if key == Upper {
		return i.Hi
	}
	return i.Mean()
}

func (i Interval) Lower() float64 { return i.Lo }
func (i Interval) Upper() float64 { return i.Hi }
func (i Interval) Mean() float64  { return (i.Lo + i.Hi) / 2 }

func (i Interval) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", i.Lo, i.Hi)
}
