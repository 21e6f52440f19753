package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Status describes what is known about the fragmentation of an ion.
type Status int

const (
	// Unknown means fragmentation was never attempted for the ion.
	Unknown Status = iota
	// Leaf means the ion was isolated and produced no fragments.
	Leaf
	// Decomposed means the ion fragmented into the child ions of the node.
	Decomposed
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Leaf:
		return "leaf"
	case Decomposed:
		return "decomposed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Node is the child descriptor of one ion in a fragmentation tree.
type Node struct {
	Status   Status
	Children *Tree // set only when Status is Decomposed
}

// UnknownNode returns a node whose fragmentation was not attempted.
func UnknownNode() Node {
	return Node{Status: Unknown}
}

// LeafNode returns a confirmed non-fragmenting node.
func LeafNode() Node {
	return Node{Status: Leaf}
}

// DecomposedNode returns a node that fragmented into children.
func DecomposedNode(children *Tree) Node {
	if children == nil {
		children = NewTree()
	}
	return Node{Status: Decomposed, Children: children}
}

// Entry pairs an ion mass with its node.
type Entry struct {
	Mass float64
	Node Node
}

// Tree is an immutable fragmentation tree level: a set of ion masses, each
// with its own child descriptor. Entries are kept sorted by ascending mass.
type Tree struct {
	entries []Entry
	sig     uint64
}

// NewTree builds a tree from entries. When the same mass appears more than
// once the last entry wins.
func NewTree(entries ...Entry) *Tree {
	byMass := make(map[float64]int, len(entries))
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Node.Status == Decomposed && e.Node.Children == nil {
			e.Node.Children = NewTree()
		}
		if e.Node.Status != Decomposed {
			e.Node.Children = nil
		}
		if i, ok := byMass[e.Mass]; ok {
			sorted[i] = e
			continue
		}
		byMass[e.Mass] = len(sorted)
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Mass < sorted[j].Mass
	})

	t := &Tree{entries: sorted}
	t.sig = t.computeSignature()
	return t
}

// computeSignature hashes masses, statuses and child signatures. Children are
// hashed by signature, so equal content always yields equal signatures.
func (t *Tree) computeSignature() uint64 {
	d := xxhash.New()
	var buf [17]byte
	for _, e := range t.entries {
		binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(e.Mass))
		buf[8] = byte(e.Node.Status)
		var child uint64
		if e.Node.Children != nil {
			child = e.Node.Children.sig
		}
		binary.LittleEndian.PutUint64(buf[9:17], child)
		d.Write(buf[:])
	}
	return d.Sum64()
}

// Len returns the number of ions in the tree level.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Signature returns the structural hash of the tree.
func (t *Tree) Signature() uint64 {
	if t == nil {
		return emptySignature
	}
	return t.sig
}

var emptySignature = NewTree().sig

// Entries returns a copy of the entries in ascending mass order.
func (t *Tree) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Masses returns the ion masses in ascending order.
func (t *Tree) Masses() []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Mass
	}
	return out
}

// Get returns the node stored under exactly mass.
func (t *Tree) Get(mass float64) (Node, bool) {
	if t == nil {
		return Node{}, false
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Mass >= mass
	})
	if i < len(t.entries) && t.entries[i].Mass == mass {
		return t.entries[i].Node, true
	}
	return Node{}, false
}

// Lookup returns the entry whose mass is nearest to mass, provided it lies
// strictly within tolerance. Ties go to the lighter entry.
func (t *Tree) Lookup(mass, tolerance float64) (Entry, bool) {
	if t == nil || len(t.entries) == 0 {
		return Entry{}, false
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Mass >= mass
	})
	best, dist := -1, math.Inf(1)
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(t.entries) {
			continue
		}
		if d := math.Abs(t.entries[j].Mass - mass); d < dist {
			best, dist = j, d
		}
	}
	if best < 0 || dist >= tolerance {
		return Entry{}, false
	}
	return t.entries[best], true
}

// Filter returns a new tree holding only the entries for which keep is true.
func (t *Tree) Filter(keep func(Entry) bool) *Tree {
	var kept []Entry
	for _, e := range t.Entries() {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	return NewTree(kept...)
}

// Equal reports whether two trees have the same structure and masses.
func (t *Tree) Equal(other *Tree) bool {
	if t.Len() != other.Len() {
		return false
	}
	if t.Signature() != other.Signature() {
		return false
	}
	for i := range t.Len() {
		a, b := t.entries[i], other.entries[i]
		if a.Mass != b.Mass || a.Node.Status != b.Node.Status {
			return false
		}
		if a.Node.Status == Decomposed && !a.Node.Children.Equal(b.Node.Children) {
			return false
		}
	}
	return true
}

// Depth returns the number of levels in the tree, counting this one.
func (t *Tree) Depth() int {
	depth := 0
	for _, e := range t.Entries() {
		d := 1
		if e.Node.Status == Decomposed {
			d += e.Node.Children.Depth()
		}
		depth = max(depth, d)
	}
	return depth
}

// String renders the tree in a compact nested form, e.g.
// "{150.1: {72.3: leaf}, 221.3: unknown}".
func (t *Tree) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range t.Entries() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g: ", e.Mass)
		if e.Node.Status == Decomposed {
			b.WriteString(e.Node.Children.String())
		} else {
			b.WriteString(e.Node.Status.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}
