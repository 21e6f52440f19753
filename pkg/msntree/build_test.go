package msntree

import (
	"testing"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(mass float64, node core.Node) core.Entry {
	return core.Entry{Mass: mass, Node: node}
}

func nested(entries ...core.Entry) core.Node {
	return core.DecomposedNode(core.NewTree(entries...))
}

func ms3Peaks() []core.Peak {
	return []core.Peak{
		{ID: "p1", Level: 1, MZ: 371.2, Intensity: 1000},
		{ID: "c1", Level: 2, MZ: 150.1, Intensity: 500, ParentID: "p1"},
		{ID: "c2", Level: 2, MZ: 221.3, Intensity: 300, ParentID: "p1"},
		{ID: "c3", Level: 2, MZ: 60.0, Intensity: 30, ParentID: "p1"},
		{Level: 3, MZ: 72.3, Intensity: 40, ParentID: "c1"},
		{Level: 3, MZ: 89.1, Intensity: 20, PrecursorMZ: 150.12},
		{Level: 3, MZ: 72.3, Intensity: 50, ParentID: "c2"},
		{Level: 3, MZ: 99.7, Intensity: 10, PrecursorMZ: 221.28},
	}
}

func TestBuild(t *testing.T) {
	result, err := Build(ms3Peaks(), DefaultOptions())
	require.NoError(t, err)

	want := core.NewTree(entry(371.2, nested(
		entry(60.0, core.LeafNode()),
		entry(150.1, nested(entry(72.3, core.UnknownNode()), entry(89.1, core.UnknownNode()))),
		entry(221.3, nested(entry(72.3, core.UnknownNode()), entry(99.7, core.UnknownNode()))),
	)))
	assert.True(t, result.Tree.Equal(want), "got %s", result.Tree)
	assert.Equal(t, 3, result.MaxLevel)
	assert.Empty(t, result.Unlinked)
}

func TestBuildMaxLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLevel = 2

	result, err := Build(ms3Peaks(), opts)
	require.NoError(t, err)

	want := core.NewTree(entry(371.2, nested(
		entry(60.0, core.UnknownNode()),
		entry(150.1, core.UnknownNode()),
		entry(221.3, core.UnknownNode()),
	)))
	assert.True(t, result.Tree.Equal(want), "got %s", result.Tree)
}

func TestBuildUnlinked(t *testing.T) {
	peaks := append(ms3Peaks(),
		core.Peak{Level: 2, MZ: 120.0, Intensity: 5, ParentID: "missing"},
		core.Peak{Level: 3, MZ: 50.0, Intensity: 5, PrecursorMZ: 300.0},
		core.Peak{Level: 3, MZ: 40.0, Intensity: 5},
	)

	result, err := Build(peaks, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, result.Unlinked, 3)

	level, ok := result.Tree.Get(371.2)
	require.True(t, ok)
	assert.Equal(t, []float64{60.0, 150.1, 221.3}, level.Children.Masses())
}

func TestBuildSinglePrecursor(t *testing.T) {
	peaks := []core.Peak{
		{Level: 1, MZ: 371.2, Intensity: 10},
		{Level: 2, MZ: 150.1, Intensity: 5},
		{Level: 2, MZ: 221.3, Intensity: 5},
	}

	result, err := Build(peaks, DefaultOptions())
	require.NoError(t, err)
	want := core.NewTree(entry(371.2, nested(
		entry(150.1, core.UnknownNode()),
		entry(221.3, core.UnknownNode()),
	)))
	assert.True(t, result.Tree.Equal(want), "got %s", result.Tree)
}

func TestBuildOnlyMS1(t *testing.T) {
	result, err := Build([]core.Peak{{Level: 1, MZ: 371.2, Intensity: 1}}, Options{})
	require.NoError(t, err)

	node, ok := result.Tree.Get(371.2)
	require.True(t, ok)
	assert.Equal(t, core.Unknown, node.Status)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build([]core.Peak{{Level: 2, MZ: 150.1, Intensity: 1}}, DefaultOptions())
	assert.ErrorContains(t, err, "no MS1 peaks")

	_, err = Build([]core.Peak{{Level: 1, MZ: -1}}, DefaultOptions())
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}
