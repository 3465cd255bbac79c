package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/tealer/formatter"
	"github.com/gnolang/tealer/internal"
	"github.com/gnolang/tealer/internal/detectors"
	"github.com/gnolang/tealer/lint"
)

const defaultTimeout = 5 * time.Minute

var (
	errNoInput = errors.New("no input programs given")
	// errFindingsReported makes the process exit non-zero without printing
	// anything beyond the findings themselves.
	errFindingsReported = errors.New("findings reported")
)

// rootOptions holds the flags shared by the root command and its subcommands.
type rootOptions struct {
	cfgFile       string
	timeout       time.Duration
	verbose       bool
	exportDir     string
	noExport      bool
	exclude       []string
	printCFG      bool
	listDetectors bool
	progress      bool
	jsonOutput    bool
	outPath       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tealer [programs...]",
		Short: "tealer - static analyzer for TEAL programs",
		Long: `tealer builds the control flow graph of TEAL programs and runs detectors over it.
Example) tealer approval.teal clear.teal`,
		Args:             cobra.ArbitraryArgs,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.listDetectors {
				formatter.FormatDetectorList(cmd.OutOrStdout(), detectors.List())
				return nil
			}
			if len(args) == 0 {
				_ = cmd.Usage()
				return errNoInput
			}

			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			engine, err := newEngine(opts, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if opts.printCFG {
				return runPrintCFG(ctx, cmd.OutOrStdout(), engine, args)
			}
			return runDetection(ctx, cmd, logger, engine, args, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "Configuration file (default "+lint.DefaultConfigPath+")")
	pf.DurationVar(&opts.timeout, "timeout", defaultTimeout, "Set a timeout for the analysis")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&opts.exportDir, "export-dir", "", "Directory graph exports are written to")

	f := rootCmd.Flags()
	f.BoolVar(&opts.noExport, "no-export", false, "Do not write the graph exports requested by detectors")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "Comma-separated list of detectors to skip")
	f.BoolVar(&opts.printCFG, "print-cfg", false, "Export the control flow graph of each program instead of running detectors")
	f.BoolVar(&opts.listDetectors, "list-detectors", false, "List the available detectors")
	f.BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr when analyzing directories")
	f.BoolVar(&opts.jsonOutput, "json", false, "Output findings in JSON format")
	f.StringVarP(&opts.outPath, "output", "o", "", "Output path (when using JSON)")

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newCycloCmd(opts))
	return rootCmd
}

// Execute runs the command line and reports whether it succeeded.
func Execute() error {
	return execute(newRootCmd(), os.Stderr)
}

func execute(rootCmd *cobra.Command, errOut io.Writer) error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errFindingsReported) {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return err
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	config.Encoding = "console"
	return config.Build()
}

func newEngine(opts *rootOptions, logger *zap.Logger, extra ...internal.Option) (*internal.Engine, error) {
	engineOpts := []internal.Option{internal.WithLogger(logger)}
	if opts.exportDir != "" {
		engineOpts = append(engineOpts, internal.WithExportDir(opts.exportDir))
	}
	if opts.noExport {
		engineOpts = append(engineOpts, internal.WithoutExports())
	}

	engine, err := lint.New(opts.cfgFile, append(engineOpts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	for _, name := range opts.exclude {
		if _, ok := detectors.Default.Lookup(name); !ok {
			logger.Warn("Unknown detector excluded", zap.String("detector", name))
		}
		engine.IgnoreDetector(name)
	}
	return engine, nil
}
