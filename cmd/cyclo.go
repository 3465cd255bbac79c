package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tealer/internal"
	"github.com/gnolang/tealer/internal/detectors"
	"github.com/gnolang/tealer/lint"
)

// newCycloCmd: tealer cyclo [paths...]
func newCycloCmd(opts *rootOptions) *cobra.Command {
	var threshold int

	cycloCmd := &cobra.Command{
		Use:   "cyclo [paths...]",
		Short: "Print the cyclomatic complexity of each program",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errNoInput
			}

			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			return runCyclomaticComplexityAnalysis(ctx, cmd.OutOrStdout(), logger, args, threshold)
		},
	}
	cycloCmd.Flags().IntVar(&threshold, "threshold", detectors.DefaultComplexityThreshold, "Cyclomatic complexity threshold")
	return cycloCmd
}

// runCyclomaticComplexityAnalysis prints one line per program and fails when
// any program is above threshold.
func runCyclomaticComplexityAnalysis(ctx context.Context, out io.Writer, logger *zap.Logger, paths []string, threshold int) error {
	// only the graph is needed, so no detector runs
	engine := internal.NewEngine(
		internal.WithLogger(logger),
		internal.WithRegistry(detectors.NewRegistry()),
		internal.WithoutExports(),
	)

	reports, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)

	above := false
	for _, r := range reports {
		complexity := detectors.Complexity(r.Program)
		marker := ""
		if complexity > threshold {
			marker = " (above threshold)"
			above = true
		}
		fmt.Fprintf(out, "%s: %d%s\n", r.Filename, complexity, marker)
	}

	if err != nil {
		return err
	}
	if above {
		return errFindingsReported
	}
	return nil
}
