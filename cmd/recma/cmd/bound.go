package cmd

import (
	"fmt"

	"github.com/ChrisMcGann/recma/pkg/bound"
	"github.com/ChrisMcGann/recma/pkg/uncertainty"
	"github.com/spf13/cobra"
)

func newBoundCmd(a *app) *cobra.Command {
	var mass float64
	var leaf bool

	cmd := &cobra.Command{
		Use:   "bound",
		Short: "Print the mass-only assembly index bound",
		Long: `Print the base-case estimate of a mass computed without fragmentation data.
With --leaf the mass is treated as an ion that produced no fragments, which
lets the isotope check treat atomic masses as zero-step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mass <= 0 {
				return fmt.Errorf("--mass must be positive, got %g", mass)
			}
			b, err := bound.FromConfig(a.cfg)
			if err != nil {
				return err
			}
			key, err := uncertainty.ParseKey(a.cfg.CentralKey)
			if err != nil {
				return err
			}

			est := b.Bound(mass, !leaf)
			fmt.Fprintf(cmd.OutOrStdout(), "mass=%g model=%s lower=%.3f upper=%.3f mean=%.3f %s=%.3f\n",
				mass, a.cfg.EffectiveBoundModel(), est.Lower(), est.Upper(), est.Mean(), key, est.Central(key))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&mass, "mass", "m", 0, "Mass in Da (required)")
	cmd.Flags().BoolVar(&leaf, "leaf", false, "Treat the mass as an unfragmented ion")
	_ = cmd.MarkFlagRequired("mass")

	return cmd
}
