package precursor

import (
	"github.com/ChrisMcGann/recma/pkg/config"
	"github.com/ChrisMcGann/recma/pkg/core"
)

func leaf(mass float64) core.Entry {
	return core.Entry{Mass: mass, Node: core.LeafNode()}
}

func unknown(mass float64) core.Entry {
	return core.Entry{Mass: mass, Node: core.UnknownNode()}
}

func decomposed(mass float64, children ...core.Entry) core.Entry {
	return core.Entry{Mass: mass, Node: core.DecomposedNode(core.NewTree(children...))}
}

// ms3Children is the level below 371.2 in the MS3 sample tree.
func ms3Children() *core.Tree {
	return core.NewTree(
		decomposed(150.1, leaf(72.3), leaf(89.1)),
		decomposed(221.3, leaf(72.3), leaf(99.7)),
	)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.MassTolerance = 0.25
	return cfg
}
