package estimator

import (
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
)

// memoKey identifies an estimate by rounded mass and the signature of the
// tree level it was computed in. Equal masses in different trees never share
// an entry.
type memoKey struct {
	mass float64
	tree uint64
}

// memo caches estimates for one top-level Estimate call. It is not safe for
// concurrent use.
type memo struct {
	entries map[memoKey]uncertainty.Estimate
	hits    int
	misses  int
}

func newMemo() *memo {
	return &memo{entries: make(map[memoKey]uncertainty.Estimate)}
}

func (m *memo) get(key memoKey) (uncertainty.Estimate, bool) {
	est, ok := m.entries[key]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return est, ok
}

func (m *memo) put(key memoKey, est uncertainty.Estimate) {
	m.entries[key] = est
}
