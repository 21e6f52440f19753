package precursor

import (
	"github.com/ChrisMcGann/recma/pkg/core"
)

// Unify merges fragmentation trees. Masses present in a single tree pass
// through unchanged; masses present in several are merged node by node.
// Unify of no trees is empty and Unify of one tree returns it as is.
func Unify(trees ...*core.Tree) *core.Tree {
	switch len(trees) {
	case 0:
		return core.NewTree()
	case 1:
		if trees[0] == nil {
			return core.NewTree()
		}
		return trees[0]
	}

	order := []float64{}
	nodes := make(map[float64][]core.Node)
	for _, t := range trees {
		for _, e := range t.Entries() {
			if _, ok := nodes[e.Mass]; !ok {
				order = append(order, e.Mass)
			}
			nodes[e.Mass] = append(nodes[e.Mass], e.Node)
		}
	}

	entries := make([]core.Entry, 0, len(order))
	for _, mass := range order {
		entries = append(entries, core.Entry{Mass: mass, Node: mergeNodes(nodes[mass])})
	}
	return core.NewTree(entries...)
}

// mergeNodes keeps the most informative status: decomposed beats leaf,
// leaf beats unknown. Children of decomposed nodes are unified.
func mergeNodes(nodes []core.Node) core.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	status := core.Unknown
	var children []*core.Tree
	for _, n := range nodes {
		status = max(status, n.Status)
		if n.Status == core.Decomposed {
			children = append(children, n.Children)
		}
	}
	if status != core.Decomposed {
		return core.Node{Status: status}
	}
	return core.DecomposedNode(Unify(children...))
}
