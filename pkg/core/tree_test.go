package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTree is the MS3 sample tree {371.2: {150.1: {72.3, 89.1}, 221.3: {72.3, 99.7}}}.
func mockTree() *Tree {
	return NewTree(Entry{Mass: 371.2, Node: DecomposedNode(NewTree(
		Entry{Mass: 150.1, Node: DecomposedNode(NewTree(
			Entry{Mass: 72.3, Node: LeafNode()},
			Entry{Mass: 89.1, Node: LeafNode()},
		))},
		Entry{Mass: 221.3, Node: DecomposedNode(NewTree(
			Entry{Mass: 72.3, Node: LeafNode()},
			Entry{Mass: 99.7, Node: LeafNode()},
		))},
	))})
}

func TestNewTreeSortsAndReplacesDuplicates(t *testing.T) {
	tree := NewTree(
		Entry{Mass: 200, Node: UnknownNode()},
		Entry{Mass: 100, Node: UnknownNode()},
		Entry{Mass: 200, Node: LeafNode()},
	)

	assert.Equal(t, []float64{100, 200}, tree.Masses())
	node, ok := tree.Get(200)
	require.True(t, ok)
	assert.Equal(t, Leaf, node.Status)
}

func TestNewTreeNormalizesChildren(t *testing.T) {
	tree := NewTree(
		Entry{Mass: 10, Node: Node{Status: Decomposed}},
		Entry{Mass: 20, Node: Node{Status: Leaf, Children: NewTree(Entry{Mass: 5})}},
	)

	n10, _ := tree.Get(10)
	assert.NotNil(t, n10.Children)
	assert.Equal(t, 0, n10.Children.Len())

	n20, _ := tree.Get(20)
	assert.Nil(t, n20.Children)
}

func TestTreeLookup(t *testing.T) {
	children, _ := mockTree().Get(371.2)
	level := children.Children

	tests := []struct {
		name      string
		mass      float64
		tolerance float64
		want      float64
		wantOK    bool
	}{
		{"exact", 150.1, 0.01, 150.1, true},
		{"within window", 221.1, 0.25, 221.3, true},
		{"outside window", 221.1, 0.01, 0, false},
		{"nearest wins", 180.0, 100, 150.1, true},
		{"below all", 10, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := level.Lookup(tt.mass, tt.tolerance)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, entry.Mass)
			}
		})
	}
}

func TestTreeSignature(t *testing.T) {
	a, b := mockTree(), mockTree()
	assert.Equal(t, a.Signature(), b.Signature())
	assert.True(t, a.Equal(b))

	other := NewTree(Entry{Mass: 371.2, Node: DecomposedNode(NewTree(
		Entry{Mass: 150.1, Node: LeafNode()},
	))})
	assert.NotEqual(t, a.Signature(), other.Signature())
	assert.False(t, a.Equal(other))

	// Same masses, different status.
	unknown := NewTree(Entry{Mass: 1, Node: UnknownNode()})
	leaf := NewTree(Entry{Mass: 1, Node: LeafNode()})
	assert.NotEqual(t, unknown.Signature(), leaf.Signature())

	var empty *Tree
	assert.Equal(t, NewTree().Signature(), empty.Signature())
}

func TestTreeFilter(t *testing.T) {
	root, _ := mockTree().Get(371.2)
	light := root.Children.Filter(func(e Entry) bool { return e.Mass < 200 })
	assert.Equal(t, []float64{150.1}, light.Masses())
	assert.Equal(t, 2, root.Children.Len(), "filter must not modify the source")
}

func TestTreeDepthAndString(t *testing.T) {
	tree := mockTree()
	assert.Equal(t, 3, tree.Depth())
	assert.Equal(t, "{371.2: {150.1: {72.3: leaf, 89.1: leaf}, 221.3: {72.3: leaf, 99.7: leaf}}}", tree.String())
}
