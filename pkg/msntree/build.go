// Package msntree assembles fragmentation trees from MSn peak tables.
package msntree

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/logging"
	"github.com/ChrisMcGann/recma/pkg/precursor"
)

// Options controls tree construction.
type Options struct {
	// MaxLevel is the deepest MS level included; 0 uses the deepest level
	// present. Peaks at the last included level were never fragmented.
	MaxLevel int
	// LinkTolerance is the window (Da) for matching a precursor m/z to a
	// peak one level up.
	LinkTolerance float64
	Logger        *slog.Logger
}

// DefaultOptions returns options linking within 0.05 Da up to the deepest
// level present.
func DefaultOptions() Options {
	return Options{LinkTolerance: 0.05, Logger: logging.Discard()}
}

// Result is a built tree plus the peaks that could not be placed in it.
type Result struct {
	Tree     *core.Tree
	MaxLevel int
	Unlinked []core.Peak
}

// Build links every peak to its parent one level up and nests them under
// the MS1 peaks. A peak is linked by ParentID when set, otherwise to the
// nearest parent-level peak within LinkTolerance of its PrecursorMZ, and
// otherwise to the only peak of the parent level if there is just one.
// Peaks that cannot be linked are returned in Result.Unlinked.
func Build(peaks []core.Peak, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	levels := make(map[int][]core.Peak)
	deepest := 0
	for _, p := range peaks {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("peak %s: %w", p.Name(), err)
		}
		levels[p.Level] = append(levels[p.Level], p)
		deepest = max(deepest, p.Level)
	}
	if len(levels[1]) == 0 {
		return nil, fmt.Errorf("no MS1 peaks to build a tree from")
	}

	maxLevel := deepest
	if opts.MaxLevel > 0 {
		maxLevel = min(opts.MaxLevel, deepest)
	}

	b := &builder{
		opts:     opts,
		maxLevel: maxLevel,
		levels:   levels,
		children: make(map[nodeRef][]int),
	}
	result := &Result{MaxLevel: maxLevel}
	for level := 2; level <= maxLevel; level++ {
		for i, p := range levels[level] {
			parent, ok := b.link(p)
			if !ok {
				opts.Logger.Warn("msntree.unlinked", "peak", p.Name(), "id", p.ID, "parent_id", p.ParentID)
				result.Unlinked = append(result.Unlinked, p)
				continue
			}
			b.children[parent] = append(b.children[parent], i)
		}
	}

	result.Tree = b.level(1, indices(len(levels[1])))
	opts.Logger.Debug("msntree.built",
		"peaks", len(peaks),
		"max_level", maxLevel,
		"unlinked", len(result.Unlinked),
		"depth", result.Tree.Depth(),
	)
	return result, nil
}

// nodeRef addresses a peak by level and position within that level.
type nodeRef struct {
	level int
	index int
}

type builder struct {
	opts     Options
	maxLevel int
	levels   map[int][]core.Peak
	children map[nodeRef][]int
}

// link finds the parent of p one level up.
func (b *builder) link(p core.Peak) (nodeRef, bool) {
	parents := b.levels[p.Level-1]

	if p.ParentID != "" {
		for i, parent := range parents {
			if parent.ID == p.ParentID {
				return nodeRef{level: p.Level - 1, index: i}, true
			}
		}
		return nodeRef{}, false
	}

	if p.PrecursorMZ > 0 {
		best, dist := -1, math.Inf(1)
		for i, parent := range parents {
			if d := math.Abs(parent.MZ - p.PrecursorMZ); d < b.opts.LinkTolerance && d < dist {
				best, dist = i, d
			}
		}
		if best < 0 {
			return nodeRef{}, false
		}
		return nodeRef{level: p.Level - 1, index: best}, true
	}

	if len(parents) == 1 {
		return nodeRef{level: p.Level - 1, index: 0}, true
	}
	return nodeRef{}, false
}

// level builds the tree of the given peaks of one level. Peaks with the same
// m/z are merged.
func (b *builder) level(level int, members []int) *core.Tree {
	trees := make([]*core.Tree, 0, len(members))
	for _, i := range members {
		p := b.levels[level][i]
		trees = append(trees, core.NewTree(core.Entry{Mass: p.MZ, Node: b.node(level, i)}))
	}
	return precursor.Unify(trees...)
}

func (b *builder) node(level, index int) core.Node {
	if level >= b.maxLevel {
		return core.UnknownNode()
	}
	children := b.children[nodeRef{level: level, index: index}]
	if len(children) == 0 {
		return core.LeafNode()
	}
	return core.DecomposedNode(b.level(level+1, children))
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
