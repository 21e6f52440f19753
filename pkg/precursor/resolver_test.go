package precursor

import (
	"testing"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestPrecursorsOfObservedIon(t *testing.T) {
	r := New(testConfig())
	tree := core.NewTree(core.Entry{Mass: 371.2, Node: core.DecomposedNode(ms3Children())})

	got := r.Precursors(tree, 371.2)
	assert.True(t, got.Equal(ms3Children()), "got %s", got)
}

func TestPrecursorsMatchesWithinTolerance(t *testing.T) {
	r := New(testConfig())

	// 221.1 is 0.2 Da from the observed 221.3.
	got := r.Precursors(ms3Children(), 221.1)
	assert.Equal(t, []float64{72.3, 99.7}, got.Masses())

	cfg := testConfig()
	cfg.MassTolerance = 0.01
	assert.Equal(t, 0, New(cfg).Precursors(ms3Children(), 221.1).Len())
}

func TestPrecursorsMatchesAdduct(t *testing.T) {
	r := New(testConfig())
	tree := core.NewTree(decomposed(151.108, leaf(72.3)))

	got := r.Precursors(tree, 150.1)
	assert.Equal(t, []float64{72.3}, got.Masses())
}

func TestPrecursorsSkipsUnexpandedCandidates(t *testing.T) {
	r := New(testConfig())
	tree := core.NewTree(leaf(150.1), unknown(221.3))

	assert.Equal(t, 0, r.Precursors(tree, 150.1).Len())
	assert.Equal(t, 0, r.Precursors(tree, 221.3).Len())
}

func TestPrecursorsFallsBackToSameLevel(t *testing.T) {
	tree := core.NewTree(leaf(50), leaf(100), leaf(120))

	r := New(testConfig())
	got := r.Precursors(tree, 150)
	assert.Equal(t, []float64{50, 100}, got.Masses())

	cfg := testConfig()
	cfg.SameLevelMatching = false
	assert.Equal(t, 0, New(cfg).Precursors(tree, 150).Len())
}

func TestPrecursorsAddsSameLevelOfChildren(t *testing.T) {
	// Under 300, the children 100 and 150 add up to 250, so 300 - 50 resolves
	// to them and they are joined to the direct children.
	tree := core.NewTree(decomposed(300, leaf(50), leaf(100), leaf(150)))

	got := New(testConfig()).Precursors(tree, 300)
	assert.Equal(t, []float64{50, 100, 150}, got.Masses())
}

func TestSameLevel(t *testing.T) {
	tests := []struct {
		name    string
		adducts []float64
		tree    *core.Tree
		mass    float64
		want    []float64
	}{
		{
			name:    "exact complement",
			adducts: []float64{0},
			tree:    core.NewTree(leaf(50), leaf(100), leaf(120)),
			mass:    150,
			want:    []float64{50, 100},
		},
		{
			name:    "complement needs a proton",
			adducts: []float64{0, core.MassH},
			tree:    core.NewTree(leaf(50), leaf(100)),
			mass:    149,
			want:    []float64{50, 100},
		},
		{
			name:    "no proton offset configured",
			adducts: []float64{0},
			tree:    core.NewTree(leaf(50), leaf(100)),
			mass:    149,
			want:    nil,
		},
		{
			name:    "an ion is not its own complement",
			adducts: []float64{0},
			tree:    core.NewTree(leaf(75)),
			mass:    150,
			want:    nil,
		},
		{
			name:    "heavier ions are dropped",
			adducts: []float64{0},
			tree:    core.NewTree(leaf(50), leaf(200)),
			mass:    150,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.MassTolerance = 0.05
			cfg.AdductMasses = tt.adducts
			got := New(cfg).SameLevel(tt.tree, tt.mass)
			if tt.want == nil {
				assert.Equal(t, 0, got.Len())
				return
			}
			assert.Equal(t, tt.want, got.Masses())
		})
	}
}

func TestSameLevelKeepsSubtrees(t *testing.T) {
	cfg := testConfig()
	cfg.AdductMasses = []float64{0}
	tree := core.NewTree(decomposed(100, leaf(40)), leaf(50))

	got := New(cfg).SameLevel(tree, 150)
	node, ok := got.Get(100)
	assert.True(t, ok)
	assert.Equal(t, core.Decomposed, node.Status)
	assert.Equal(t, []float64{40}, node.Children.Masses())
}

func TestCommon(t *testing.T) {
	r := New(testConfig())

	assert.Equal(t, []float64{72.3}, r.Common(ms3Children(), 150.1, 221.1))
	assert.Empty(t, r.Common(ms3Children(), 150.1, 60))
}
