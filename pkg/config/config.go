// Package config holds the estimator configuration and loads it through viper
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/spf13/viper"
)

// Uncertainty representations
const (
	ModeInterval = "interval"
	ModeSampled  = "sampled"
)

// Central tendency keys used to compare estimates
const (
	KeyUpper    = "upper"
	KeyMidpoint = "midpoint"
	KeyMean     = "mean"
)

// Bound models available in interval mode. Sampled mode always uses the
// skew-normal model.
const (
	ModelRegression = "regression"
	ModelLinear     = "linear"
	ModelSkewNormal = "skewnormal"
)

// Config controls mass matching, recursion and bound estimation
type Config struct {
	// SameLevelMatching enables the adduct-aware same-level precursor search
	SameLevelMatching bool `mapstructure:"same_level_matching" yaml:"same_level_matching"`
	// MassTolerance is the matching window (Da) for every mass comparison
	MassTolerance float64 `mapstructure:"mass_tolerance" yaml:"mass_tolerance"`
	// RoundingPrecision is the number of decimal places used for mass keys
	RoundingPrecision int `mapstructure:"rounding_precision" yaml:"rounding_precision"`
	// AdductMasses are the offsets tried when matching precursor masses
	AdductMasses []float64 `mapstructure:"adduct_masses" yaml:"adduct_masses"`
	// ComplementAdduct is added to parent - child when computing a complement
	ComplementAdduct float64 `mapstructure:"complement_adduct" yaml:"complement_adduct"`
	// MinimumFragmentMass is the floor below which a mass is not decomposed
	MinimumFragmentMass float64 `mapstructure:"minimum_fragment_mass" yaml:"minimum_fragment_mass"`

	// UncertaintyMode is "interval" or "sampled"
	UncertaintyMode string `mapstructure:"uncertainty_mode" yaml:"uncertainty_mode"`
	// BoundModel selects the interval base-case formula: "regression" or "linear"
	BoundModel string `mapstructure:"bound_model" yaml:"bound_model"`
	// SampleCount is the number of draws per mass in sampled mode
	SampleCount int `mapstructure:"sample_count" yaml:"sample_count"`
	// Seed makes sampled bounds reproducible
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
	// IsotopeCheck enables the zero-assembly short-circuit for atomic leaves
	IsotopeCheck bool `mapstructure:"isotope_check" yaml:"isotope_check"`

	// CentralKey selects the value candidates are compared by:
	// "upper", "midpoint" or "mean"
	CentralKey string `mapstructure:"central_key" yaml:"central_key"`
	// OneStep is the joining cost of a two-way split
	OneStep float64 `mapstructure:"one_step" yaml:"one_step"`
	// CorrectionSteps is the extra joining cost of a shared-precursor split
	CorrectionSteps float64 `mapstructure:"correction_steps" yaml:"correction_steps"`
	// MaxDepth bounds tree depth and recursion depth
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		SameLevelMatching:   true,
		MassTolerance:       0.05,
		RoundingPrecision:   1,
		AdductMasses:        []float64{0.0, core.MassH},
		ComplementAdduct:    0.0,
		MinimumFragmentMass: core.MassC,
		UncertaintyMode:     ModeInterval,
		BoundModel:          ModelRegression,
		SampleCount:         1000,
		Seed:                1,
		IsotopeCheck:        true,
		CentralKey:          KeyUpper,
		OneStep:             1,
		CorrectionSteps:     1,
		MaxDepth:            64,
	}
}

// ConfigurationError reports an invalid configuration value.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns the first problem found
func (c *Config) Validate() error {
	if !(c.MassTolerance > 0) {
		return &ConfigurationError{Field: "mass_tolerance", Message: fmt.Sprintf("must be positive, got %g", c.MassTolerance)}
	}
	if c.RoundingPrecision < 0 {
		return &ConfigurationError{Field: "rounding_precision", Message: "must be non-negative"}
	}
	if c.SameLevelMatching && len(c.AdductMasses) == 0 {
		return &ConfigurationError{Field: "adduct_masses", Message: "must not be empty when same_level_matching is enabled"}
	}
	if c.MinimumFragmentMass < 0 {
		return &ConfigurationError{Field: "minimum_fragment_mass", Message: "must be non-negative"}
	}
	switch c.UncertaintyMode {
	case ModeInterval:
		if c.BoundModel != ModelRegression && c.BoundModel != ModelLinear {
			return &ConfigurationError{Field: "bound_model", Message: fmt.Sprintf("unknown interval model %q", c.BoundModel)}
		}
	case ModeSampled:
		if c.SampleCount < 1 {
			return &ConfigurationError{Field: "sample_count", Message: "must be at least 1 in sampled mode"}
		}
	default:
		return &ConfigurationError{Field: "uncertainty_mode", Message: fmt.Sprintf("unknown mode %q", c.UncertaintyMode)}
	}
	if !slices.Contains(ValidCentralKeys(), c.CentralKey) {
		return &ConfigurationError{Field: "central_key", Message: fmt.Sprintf("unknown key %q, expected one of %s", c.CentralKey, strings.Join(ValidCentralKeys(), ", "))}
	}
	if c.OneStep < 0 || c.CorrectionSteps < 0 {
		return &ConfigurationError{Field: "one_step", Message: "step costs must be non-negative"}
	}
	if c.MaxDepth < 1 {
		return &ConfigurationError{Field: "max_depth", Message: "must be at least 1"}
	}
	return nil
}

// EffectiveBoundModel returns the bound model implied by the mode
func (c *Config) EffectiveBoundModel() string {
	if c.UncertaintyMode == ModeSampled {
		return ModelSkewNormal
	}
	return c.BoundModel
}

// RoundMass rounds a mass to the configured precision
func (c *Config) RoundMass(mass float64) float64 {
	return core.RoundFloat(mass, c.RoundingPrecision)
}

// ValidCentralKeys returns the accepted central_key values
func ValidCentralKeys() []string {
	return []string{KeyUpper, KeyMidpoint, KeyMean}
}

// SetDefaults registers the defaults on a viper instance
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("same_level_matching", defaults.SameLevelMatching)
	v.SetDefault("mass_tolerance", defaults.MassTolerance)
	v.SetDefault("rounding_precision", defaults.RoundingPrecision)
	v.SetDefault("adduct_masses", defaults.AdductMasses)
	v.SetDefault("complement_adduct", defaults.ComplementAdduct)
	v.SetDefault("minimum_fragment_mass", defaults.MinimumFragmentMass)
	v.SetDefault("uncertainty_mode", defaults.UncertaintyMode)
	v.SetDefault("bound_model", defaults.BoundModel)
	v.SetDefault("sample_count", defaults.SampleCount)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("isotope_check", defaults.IsotopeCheck)
	v.SetDefault("central_key", defaults.CentralKey)
	v.SetDefault("one_step", defaults.OneStep)
	v.SetDefault("correction_steps", defaults.CorrectionSteps)
	v.SetDefault("max_depth", defaults.MaxDepth)
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.UncertaintyMode = strings.ToLower(strings.TrimSpace(cfg.UncertaintyMode))
	cfg.BoundModel = strings.ToLower(strings.TrimSpace(cfg.BoundModel))
	cfg.CentralKey = strings.ToLower(strings.TrimSpace(cfg.CentralKey))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
