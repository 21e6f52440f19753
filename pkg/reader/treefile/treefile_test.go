package treefile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms3Tree() *core.Tree {
	return core.NewTree(core.Entry{Mass: 371.2, Node: core.DecomposedNode(core.NewTree(
		core.Entry{Mass: 150.1, Node: core.DecomposedNode(core.NewTree(
			core.Entry{Mass: 72.3, Node: core.UnknownNode()},
			core.Entry{Mass: 89.1, Node: core.UnknownNode()},
		))},
		core.Entry{Mass: 221.3, Node: core.DecomposedNode(core.NewTree(
			core.Entry{Mass: 72.3, Node: core.UnknownNode()},
			core.Entry{Mass: 99.7, Node: core.LeafNode()},
		))},
	))})
}

func TestReadYAML(t *testing.T) {
	input := `
371.2:
  150.1:
    72.3: ~
    89.1: null
  221.3:
    72.3:
    99.7: {}
`
	tree, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, tree.Equal(ms3Tree()), "got %s", tree)
}

func TestReadJSON(t *testing.T) {
	input := `{"371.2": {"150.1": {"72.3": null, "89.1": null}, "221.3": {"72.3": null, "99.7": {}}}}`

	tree, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, tree.Equal(ms3Tree()), "got %s", tree)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "empty tree file"},
		{"not a mapping", "- 371.2\n", "expected a mapping of masses"},
		{"bad mass", "abc: {}\n", `invalid mass "abc"`},
		{"bad value", "371.2: 5\n", "expected null or a mapping"},
		{"list value", "371.2: [1, 2]\n", "expected null or a mapping"},
		{"zero mass", "0: {}\n", "line 1: mass must be positive"},
		{"negative child mass", "371.2:\n  -72.3: {}\n", "line 2: mass must be positive"},
		{"duplicate mass", "371.2: {}\n371.20: ~\n", "duplicate mass 371.2"},
		{"syntax", "371.2: {\n", "failed to parse tree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ms3Tree()))

	assert.Contains(t, buf.String(), "99.7: {}")
	assert.Contains(t, buf.String(), "72.3: ~")

	tree, err := Read(&buf)
	require.NoError(t, err)
	assert.True(t, tree.Equal(ms3Tree()))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, WriteFile(path, ms3Tree()))

	tree, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, tree.Equal(ms3Tree()))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
