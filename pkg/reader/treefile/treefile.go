// Package treefile reads and writes fragmentation trees as nested YAML or
// JSON mappings keyed by mass:
//
//	371.2:
//	  150.1:
//	    72.3: {}   # fragmented, no children observed
//	    89.1: ~    # never fragmented
//
// A null value is an unknown node, an empty mapping a leaf and a non-empty
// mapping a decomposed node. JSON input is read by the same parser.
package treefile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/ChrisMcGann/recma/pkg/core"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when the input holds no document.
var ErrEmpty = errors.New("empty tree file")

// Read parses a tree from r.
func Read(r io.Reader) (*core.Tree, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmpty
	}

	root := doc.Content[0]
	if isNull(root) {
		return core.NewTree(), nil
	}
	return parseLevel(root)
}

// ReadFile parses the tree stored at path.
func ReadFile(path string) (*core.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree file: %w", err)
	}
	defer f.Close()

	tree, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

func parseLevel(n *yaml.Node) (*core.Tree, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of masses", n.Line)
	}

	seen := make(map[float64]bool, len(n.Content)/2)
	entries := make([]core.Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]

		mass, err := strconv.ParseFloat(key.Value, 64)
		if key.Kind != yaml.ScalarNode || err != nil {
			return nil, fmt.Errorf("line %d: invalid mass %q", key.Line, key.Value)
		}
		if !(mass > 0) || math.IsInf(mass, 1) {
			return nil, fmt.Errorf("line %d: mass must be positive and finite, got %q", key.Line, key.Value)
		}
		if seen[mass] {
			return nil, fmt.Errorf("line %d: duplicate mass %g", key.Line, mass)
		}
		seen[mass] = true

		node, err := parseNode(value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, core.Entry{Mass: mass, Node: node})
	}
	return core.NewTree(entries...), nil
}

func parseNode(n *yaml.Node) (core.Node, error) {
	switch {
	case isNull(n):
		return core.UnknownNode(), nil
	case n.Kind == yaml.MappingNode && len(n.Content) == 0:
		return core.LeafNode(), nil
	case n.Kind == yaml.MappingNode:
		children, err := parseLevel(n)
		if err != nil {
			return core.Node{}, err
		}
		return core.DecomposedNode(children), nil
	default:
		return core.Node{}, fmt.Errorf("line %d: expected null or a mapping, got %q", n.Line, n.Value)
	}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// Write encodes tree as YAML.
func Write(w io.Writer, tree *core.Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(levelNode(tree)); err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return enc.Close()
}

// WriteFile writes tree to path as YAML.
func WriteFile(path string, tree *core.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tree file: %w", err)
	}
	if err := Write(f, tree); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func levelNode(tree *core.Tree) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if tree.Len() == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, e := range tree.Entries() {
		key := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(e.Mass, 'f', -1, 64),
		}
		n.Content = append(n.Content, key, valueNode(e.Node))
	}
	return n
}

func valueNode(node core.Node) *yaml.Node {
	switch node.Status {
	case core.Decomposed:
		return levelNode(node.Children)
	case core.Leaf:
		return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
	}
}
