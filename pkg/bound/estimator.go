package bound

import (
	"fmt"
	"sync"

	"github.com/ChrisMcGann/recma/pkg/config"
	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
)

type cacheKey struct {
	mass        float64
	hasChildren bool
}

// CacheStats counts bound cache lookups.
type CacheStats struct {
	Hits   int
	Misses int
}

// Estimator wraps a Strategy with the isotope short-circuit and a cache
// keyed by rounded mass. It is safe for concurrent use.
type Estimator struct {
	strategy     Strategy
	tolerance    float64
	precision    int
	isotopeCheck bool

	mu    sync.Mutex
	cache map[cacheKey]uncertainty.Estimate
	stats CacheStats
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithTolerance sets the isotope matching window.
func WithTolerance(tolerance float64) Option {
	return func(e *Estimator) { e.tolerance = tolerance }
}

// WithPrecision sets the decimal places used for cache keys.
func WithPrecision(precision int) Option {
	return func(e *Estimator) { e.precision = precision }
}

// WithIsotopeCheck enables or disables the isotope short-circuit.
func WithIsotopeCheck(enabled bool) Option {
	return func(e *Estimator) { e.isotopeCheck = enabled }
}

// New creates an Estimator around strategy.
func New(strategy Strategy, opts ...Option) *Estimator {
	defaults := config.Default()
	e := &Estimator{
		strategy:     strategy,
		tolerance:    defaults.MassTolerance,
		precision:    defaults.RoundingPrecision,
		isotopeCheck: defaults.IsotopeCheck,
		cache:        make(map[cacheKey]uncertainty.Estimate),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StrategyFor builds the Strategy selected by cfg.
func StrategyFor(cfg *config.Config) (Strategy, error) {
	switch cfg.EffectiveBoundModel() {
	case config.ModelRegression:
		return DefaultRegression(), nil
	case config.ModelLinear:
		return DefaultLinear(), nil
	case config.ModelSkewNormal:
		return DefaultSkewNormal(cfg.SampleCount, cfg.Seed), nil
	default:
		return nil, &config.ConfigurationError{Field: "bound_model", Message: fmt.Sprintf("unknown model %q", cfg.BoundModel)}
	}
}

// FromConfig creates an Estimator configured by cfg.
func FromConfig(cfg *config.Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := StrategyFor(cfg)
	if err != nil {
		return nil, err
	}
	return New(strategy,
		WithTolerance(cfg.MassTolerance),
		WithPrecision(cfg.RoundingPrecision),
		WithIsotopeCheck(cfg.IsotopeCheck),
	), nil
}

// Bound returns the base-case estimate for mass. A mass without observed
// children that matches an isotope needs no joining step and gets the zero
// estimate.
func (e *Estimator) Bound(mass float64, hasChildren bool) uncertainty.Estimate {
	key := cacheKey{mass: core.RoundFloat(mass, e.precision), hasChildren: hasChildren}

	e.mu.Lock()
	defer e.mu.Unlock()

	if est, ok := e.cache[key]; ok {
		e.stats.Hits++
		return est
	}
	e.stats.Misses++

	var est uncertainty.Estimate
	if !hasChildren && e.isotopeCheck && core.IsIsotope(key.mass, e.tolerance) {
		est = e.strategy.Zero()
	} else {
		est = e.strategy.Bound(key.mass)
	}
	e.cache[key] = est
	return est
}

// Stats returns the cache counters.
func (e *Estimator) Stats() CacheStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Reset drops every cached bound.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[cacheKey]uncertainty.Estimate)
	e.stats = CacheStats{}
}
