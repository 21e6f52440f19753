package bound

import (
	"math"
	"testing"

	"github.com/ChrisMcGann/recma/pkg/uncertainty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegressionBound(t *testing.T) {
	r := DefaultRegression()

	tests := []struct {
		name   string
		mass   float64
		wantLo float64
		wantHi float64
	}{
		{"precursor", 371.2, math.Log2(371.2 * 0.05), 0.05*371.2 + 2.5},
		{"small mass clamps log at zero", 10, 0, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Bound(tt.mass)
			assert.InDelta(t, tt.wantLo, got.Lower(), 1e-9)
			assert.InDelta(t, tt.wantHi, got.Upper(), 1e-9)
		})
	}
}

func TestRegressionUpperClampsAtZero(t *testing.T) {
	r := Regression{LowerScale: 0.05, UpperSlope: 0.05, UpperIntercept: -10}
	got := r.Bound(20)
	assert.Equal(t, 0.0, got.Upper())
	assert.Equal(t, 0.0, got.Lower())
}

func TestLinearBound(t *testing.T) {
	got := DefaultLinear().Bound(100)
	assert.Equal(t, uncertainty.Point(7.5), got)
}

func TestSkewNormalIsReproducible(t *testing.T) {
	s := DefaultSkewNormal(1000, 42)

	a := s.Bound(371.2).(uncertainty.Samples)
	b := s.Bound(371.2).(uncertainty.Samples)
	require.Equal(t, 1000, a.Len())
	assert.Equal(t, a.Values(), b.Values())

	other := DefaultSkewNormal(1000, 43).Bound(371.2).(uncertainty.Samples)
	assert.NotEqual(t, a.Values(), other.Values())
}

func TestSkewNormalSamplesFollowMassParameters(t *testing.T) {
	s := DefaultSkewNormal(4000, 7)

	small := s.Bound(100).(uncertainty.Samples)
	large := s.Bound(400).(uncertainty.Samples)

	for _, v := range small.Values() {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	// The location grows with mass, so heavier ions get larger estimates.
	assert.Greater(t, large.Mean(), small.Mean())
	// Positive shape skews draws above the location.
	assert.Greater(t, large.Mean(), s.Location.At(400))
}

func TestSkewNormalZero(t *testing.T) {
	z := DefaultSkewNormal(16, 1).Zero().(uncertainty.Samples)
	assert.Equal(t, 16, z.Len())
	assert.Equal(t, 0.0, z.Upper())
}
