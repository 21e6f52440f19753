package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/ChrisMcGann/recma/pkg/filter"
	"github.com/ChrisMcGann/recma/pkg/msntree"
	"github.com/ChrisMcGann/recma/pkg/reader/msp"
	"github.com/ChrisMcGann/recma/pkg/reader/peaks"
	"github.com/ChrisMcGann/recma/pkg/reader/treefile"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	inputFile     string
	inputFormat   string
	outputFile    string
	maxLevel      int
	topN          int
	cutoffPercent float64
	minMZ         float64
	linkTolerance float64
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a fragmentation tree file from MSn peaks",
		Long: `Build a fragmentation tree from an MSn peak table (CSV) or MSP spectra.

Peak tables have the header level,mz,intensity and optionally id, parent_id
and precursor_mz. Each MSn peak is linked to its parent by parent_id, else by
precursor_mz within --link-tolerance. Peaks at the deepest level are written
as never fragmented (~); fragmented peaks without children as {}.

Examples:
  # Build a tree from a peak table
  recma build --in peaks.csv --out sample.yaml

  # Keep the 20 most intense fragments per precursor, up to MS3
  recma build --in spectra.msp --out sample.yaml --top-n 20 --max-level 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputFile, "in", "i", "", "Input file path (required)")
	cmd.Flags().StringVarP(&opts.inputFormat, "from", "f", "", "Input format: csv, msp (auto-detect if not specified)")
	cmd.Flags().StringVarP(&opts.outputFile, "out", "o", "-", "Output tree file ('-' for stdout)")
	cmd.Flags().IntVar(&opts.maxLevel, "max-level", 0, "Deepest MS level to include (0 = all)")
	cmd.Flags().IntVar(&opts.topN, "top-n", 0, "Keep only top N most intense peaks per precursor (0 = no limit)")
	cmd.Flags().Float64Var(&opts.cutoffPercent, "cutoff", 0, "Intensity cutoff as % of the precursor's base peak (0 = no cutoff)")
	cmd.Flags().Float64Var(&opts.minMZ, "min-mz", 0, "Drop peaks at or below this mass (0 = keep all)")
	cmd.Flags().Float64Var(&opts.linkTolerance, "link-tolerance", msntree.DefaultOptions().LinkTolerance, "Window (Da) for matching precursor m/z to a parent peak")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runBuild(cmd *cobra.Command, a *app, opts *buildOptions) error {
	// Validate input file exists
	if _, err := os.Stat(opts.inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", opts.inputFile)
	}

	// Auto-detect format if not specified
	format := strings.ToLower(opts.inputFormat)
	if format == "" {
		ext := strings.ToLower(filepath.Ext(opts.inputFile))
		switch ext {
		case ".csv":
			format = "csv"
		case ".msp":
			format = "msp"
		default:
			return fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}

	var table []core.Peak
	var err error
	switch format {
	case "csv":
		table, err = readPeakTable(opts.inputFile)
	case "msp":
		table, err = readMSP(a, opts.inputFile)
	default:
		return fmt.Errorf("invalid input format '%s', must be csv or msp", format)
	}
	if err != nil {
		return err
	}

	filterConfig := &filter.Config{
		TopN:            opts.topN,
		IntensityCutoff: opts.cutoffPercent,
		MaxLevel:        opts.maxLevel,
		MinMZ:           opts.minMZ,
	}
	kept := filterConfig.Apply(table)
	a.logger.Info("build.filtered", "peaks", len(table), "kept", len(kept))

	result, err := msntree.Build(kept, msntree.Options{
		MaxLevel:      opts.maxLevel,
		LinkTolerance: opts.linkTolerance,
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	if len(result.Unlinked) > 0 {
		a.logger.Warn("build.unlinked", "peaks", len(result.Unlinked))
	}

	if err := core.ValidateTree(result.Tree, a.cfg.MassTolerance, a.cfg.MaxDepth); err != nil {
		a.logger.Warn("build.invalid_tree", "error", err)
	}

	if opts.outputFile == "-" {
		return treefile.Write(cmd.OutOrStdout(), result.Tree)
	}
	if err := treefile.WriteFile(opts.outputFile, result.Tree); err != nil {
		return err
	}
	a.logger.Info("build.written",
		"file", opts.outputFile,
		"roots", result.Tree.Len(),
		"depth", result.Tree.Depth(),
		"max_level", result.MaxLevel,
	)
	return nil
}

func readPeakTable(path string) ([]core.Peak, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	table, err := peaks.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	return table, nil
}

func readMSP(a *app, path string) ([]core.Peak, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := msp.NewReader(f)
	var table []core.Peak
	count, skipped := 0, 0
	for reader.Next() {
		spec := reader.Spectrum()
		spec.SourceFile = path

		if err := spec.Validate(); err != nil {
			a.logger.Warn("build.invalid_spectrum", "name", spec.Name, "error", err)
			skipped++
			continue
		}

		table = append(table, spec.TablePeaks()...)
		count++
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}

	a.logger.Info("build.read_spectra", "spectra", count, "skipped", skipped)
	return table, nil
}
