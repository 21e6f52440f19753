// Package cmd provides CLI command implementations
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ChrisMcGann/recma/pkg/config"
	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by every subcommand once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	logLevel   string
	logFormat  string
	adducts    string
	adductFile string

	cfg    *config.Config
	logger *slog.Logger
}

// configFlags maps each configuration key to its command line flag.
var configFlags = map[string]string{
	"same_level_matching":   "same-level-matching",
	"mass_tolerance":        "mass-tolerance",
	"rounding_precision":    "rounding-precision",
	"complement_adduct":     "complement-adduct",
	"minimum_fragment_mass": "minimum-fragment-mass",
	"uncertainty_mode":      "uncertainty-mode",
	"bound_model":           "bound-model",
	"sample_count":          "sample-count",
	"seed":                  "seed",
	"isotope_check":         "isotope-check",
	"central_key":           "central-key",
	"one_step":              "one-step",
	"correction_steps":      "correction-steps",
	"max_depth":             "max-depth",
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "recma",
		Short: "recma - Recursive molecular assembly index estimation",
		Long: `recma estimates the molecular assembly (MA) index of ions from MSn
fragmentation trees by recursively splitting each ion into an observed
fragment and its complement, crediting shared sub-fragments once.

Supports:
- Interval bounds (MW regression or linear) and sampled skew-normal bounds
- Adduct-aware same-level precursor matching
- Building trees from MSn peak tables (CSV) or MSP spectra
- Writing detailed results to SQLite`,
		Version:           "1.0.0",
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.init(cmd) },
	}

	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (default is ./recma.yaml if present)")
	flags.StringVar(&a.logLevel, "log-level", logging.LevelInfo, "Log level: DEBUG, INFO, WARN, ERROR")
	flags.StringVar(&a.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	flags.StringVar(&a.adducts, "adducts", "", "Comma-separated adduct names or masses (e.g. 'none,H,Na')")
	flags.StringVar(&a.adductFile, "adduct-file", "", "CSV file of extra adducts (name,mass)")

	flags.Bool("same-level-matching", defaults.SameLevelMatching, "Match complements among ions of the same level")
	flags.Float64("mass-tolerance", defaults.MassTolerance, "Mass matching window in Da")
	flags.Int("rounding-precision", defaults.RoundingPrecision, "Decimal places used for mass keys")
	flags.Float64("complement-adduct", defaults.ComplementAdduct, "Offset added to parent - child")
	flags.Float64("minimum-fragment-mass", defaults.MinimumFragmentMass, "Masses at or below this are not decomposed")
	flags.String("uncertainty-mode", defaults.UncertaintyMode, "Estimate representation: interval or sampled")
	flags.String("bound-model", defaults.BoundModel, "Interval bound model: regression or linear")
	flags.Int("sample-count", defaults.SampleCount, "Draws per mass in sampled mode")
	flags.Uint64("seed", defaults.Seed, "Seed for sampled bounds")
	flags.Bool("isotope-check", defaults.IsotopeCheck, "Treat unfragmented atomic masses as zero-step")
	flags.String("central-key", defaults.CentralKey, "Value candidates are compared by: upper, midpoint, mean")
	flags.Float64("one-step", defaults.OneStep, "Joining cost of a two-way split")
	flags.Float64("correction-steps", defaults.CorrectionSteps, "Joining cost of a shared-fragment split")
	flags.Int("max-depth", defaults.MaxDepth, "Maximum tree and recursion depth")

	for key, flag := range configFlags {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newEstimateCmd(a))
	rootCmd.AddCommand(newBuildCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newBoundCmd(a))

	return rootCmd
}

// init loads the configuration from defaults, the config file, RECMA_
// environment variables and flags, in increasing precedence.
func (a *app) init(cmd *cobra.Command) error {
	a.logger = logging.New(cmd.ErrOrStderr(), a.logLevel, a.logFormat)

	config.SetDefaults(a.v)
	a.v.SetEnvPrefix("RECMA")
	a.v.AutomaticEnv()

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		a.v.SetConfigName("recma")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if a.adducts != "" {
		masses, err := a.adductDatabase().ParseAdductList(a.adducts)
		if err != nil {
			return err
		}
		a.v.Set("adduct_masses", masses)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger.Debug("config.loaded",
		"file", a.v.ConfigFileUsed(),
		"mode", cfg.UncertaintyMode,
		"model", cfg.EffectiveBoundModel(),
		"tolerance", cfg.MassTolerance,
		"adducts", cfg.AdductMasses,
	)
	return nil
}

// adductDatabase returns the built-in adducts plus those of --adduct-file
func (a *app) adductDatabase() *core.AdductDatabase {
	db := core.DefaultAdductDatabase()
	if a.adductFile == "" {
		return db
	}

	f, err := os.Open(a.adductFile)
	if err != nil {
		a.logger.Warn("adducts.open_failed", "file", a.adductFile, "error", err)
		return db
	}
	defer f.Close()

	if err := db.LoadFromCSV(f); err != nil {
		a.logger.Warn("adducts.load_failed", "file", a.adductFile, "error", err)
	}
	return db
}
