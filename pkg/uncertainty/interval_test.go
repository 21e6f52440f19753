package uncertainty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalCombineAndShift(t *testing.T) {
	a := Interval{Lo: 1, Hi: 4}
	b := Interval{Lo: 2, Hi: 3}

	assert.Equal(t, Interval{Lo: 3, Hi: 7}, a.Combine(b))
	assert.Equal(t, Interval{Lo: 2, Hi: 5}, a.Shift(1))
	assert.Equal(t, Interval{Lo: 4, Hi: 8}, Sum(1, a, b))
}

func TestIntervalCentral(t *testing.T) {
	i := Interval{Lo: 2, Hi: 6}
	assert.Equal(t, 6.0, i.Central(Upper))
	assert.Equal(t, 4.0, i.Central(Midpoint))
	assert.Equal(t, 4.0, i.Central(Mean))
}

func TestIntervalNarrow(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want Interval
	}{
		{"overlap", Interval{1, 5}, Interval{3, 8}, Interval{3, 5}},
		{"nested", Interval{1, 10}, Interval{2, 3}, Interval{2, 3}},
		{"disjoint keeps smaller", Interval{6, 7}, Interval{1, 2}, Interval{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Narrow(tt.b, Upper))
		})
	}
}

func TestMinKeepsFirstOnTie(t *testing.T) {
	first := Interval{Lo: 1, Hi: 5}
	second := Interval{Lo: 0, Hi: 5}
	assert.Equal(t, first, Min(Upper, first, second))
	assert.Equal(t, second, Min(Midpoint, first, second))
}

func TestNewIntervalOrdersBounds(t *testing.T) {
	assert.Equal(t, Interval{Lo: 1, Hi: 3}, NewInterval(3, 1))
	assert.Equal(t, Interval{Lo: 2, Hi: 2}, Point(2))
}

func TestParseKey(t *testing.T) {
	for _, k := range []Key{Upper, Midpoint, Mean} {
		got, err := ParseKey(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKey("median")
	assert.Error(t, err)
}
