// Package estimator computes molecular assembly index estimates for ions in
// a fragmentation tree by recursively splitting each mass into an observed
// fragment and its complement.
package estimator

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ChrisMcGann/recma/pkg/bound"
	"github.com/ChrisMcGann/recma/pkg/config"
	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/logging"
	"github.com/ChrisMcGann/recma/pkg/precursor"
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
)

// ErrDepthExceeded is returned when recursion goes deeper than max_depth.
var ErrDepthExceeded = errors.New("recursion depth exceeded")

// ProgressEvent is passed to the progress hook once per child considered.
type ProgressEvent struct {
	Mass    float64
	Child   float64
	Index   int // Position of Child among the children of Mass
	Total   int
	Depth   int
	Skipped bool // Child or its complement is below the fragment floor
}

// Estimator estimates assembly indices. An Estimator may be reused across
// trees; every Estimate call gets its own memo.
type Estimator struct {
	cfg      *config.Config
	key      uncertainty.Key
	bounds   *bound.Estimator
	resolver *precursor.Resolver
	logger   *slog.Logger
	progress func(ProgressEvent)
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithLogger sets the logger for estimator and resolver debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) { e.logger = logger }
}

// WithProgress registers a hook called for every child iteration. The hook
// only observes; it cannot change the result.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(e *Estimator) { e.progress = fn }
}

// WithBounds replaces the base-case bound estimator.
func WithBounds(b *bound.Estimator) Option {
	return func(e *Estimator) { e.bounds = b }
}

// New creates an Estimator. It returns a *config.ConfigurationError when cfg
// is invalid.
func New(cfg *config.Config, opts ...Option) (*Estimator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := uncertainty.ParseKey(cfg.CentralKey)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "central_key", Message: err.Error()}
	}

	e := &Estimator{
		cfg:      cfg,
		key:      key,
		logger:   logging.Discard(),
		progress: func(ProgressEvent) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bounds == nil {
		if e.bounds, err = bound.FromConfig(cfg); err != nil {
			return nil, err
		}
	}
	e.resolver = precursor.New(cfg, precursor.WithLogger(e.logger))
	return e, nil
}

// Config returns the configuration the estimator was built with.
func (e *Estimator) Config() *config.Config { return e.cfg }

// Key returns the central tendency key used to compare estimates.
func (e *Estimator) Key() uncertainty.Key { return e.key }

// Bounds returns the base-case bound estimator.
func (e *Estimator) Bounds() *bound.Estimator { return e.bounds }

// Resolver returns the precursor resolver.
func (e *Estimator) Resolver() *precursor.Resolver { return e.resolver }

// Estimate returns the assembly index estimate of mass, an ion of tree.
// The tree is validated first; an invalid tree yields a
// *core.InvalidTreeError and no estimate.
func (e *Estimator) Estimate(tree *core.Tree, mass float64) (uncertainty.Estimate, error) {
	report, err := e.estimate(tree, mass, false)
	if err != nil {
		return nil, err
	}
	return report.Estimate, nil
}

// EstimateDetailed is Estimate plus a report of every evaluated split.
func (e *Estimator) EstimateDetailed(tree *core.Tree, mass float64) (*Report, error) {
	return e.estimate(tree, mass, true)
}

func (e *Estimator) estimate(tree *core.Tree, mass float64, detailed bool) (*Report, error) {
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass <= 0 {
		return nil, &core.InvalidTreeError{Mass: mass, Reason: "requested mass must be positive and finite"}
	}
	if err := core.ValidateTree(tree, e.cfg.MassTolerance, e.cfg.MaxDepth); err != nil {
		return nil, fmt.Errorf("failed to validate tree: %w", err)
	}

	r := e.newRun(detailed)
	est := r.visit(tree, mass, 0)
	if r.err != nil {
		return nil, r.err
	}

	direct := e.bounds.Bound(mass, true)
	report := &Report{
		Mass:      mass,
		Estimate:  est,
		Direct:    direct,
		Consensus: est.Narrow(direct, e.key),
		Nodes:     r.memo.misses,
		MemoHits:  r.memo.hits,
	}
	if detailed {
		report.Decompositions = r.decompositions
	}

	e.logger.Debug("estimate.done",
		"mass", mass,
		"central", est.Central(e.key),
		"lower", est.Lower(),
		"upper", est.Upper(),
		"nodes", report.Nodes,
		"memo_hits", report.MemoHits,
	)
	return report, nil
}
