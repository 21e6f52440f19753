package cmd

import (
	"fmt"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/reader/treefile"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a tree file",
		Long: `Validate that a tree file parses and describes a well-formed fragmentation
tree: positive finite masses, children lighter than their parents and no
more than --max-depth levels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := treefile.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := core.ValidateTree(tree, a.cfg.MassTolerance, a.cfg.MaxDepth); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d root ions, depth %d)\n", args[0], tree.Len(), tree.Depth())
			return nil
		},
	}
}
