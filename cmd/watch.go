package cmd

import (
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tealer/internal"
)

// newWatchCmd: tealer watch [paths...]
func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-run the detectors whenever a watched program changes",
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

			engine, err := newEngine(opts, logger, internal.WithCache(internal.NewCache(0)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			w, err := internal.NewWatcher(engine, args, func(path string, report *internal.Report, err error) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out, "Analyze %s\n", path)
				if err != nil {
					logger.Error("Error analyzing program", zap.String("file", path), zap.Error(err))
					return
				}
				if len(report.Findings) == 0 {
					fmt.Fprintf(out, "no findings in %s\n", path)
					return
				}
				printReport(out, report)
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(out, "Watching %d path(s), press Ctrl+C to stop\n", len(args))
			return w.Watch(ctx)
		},
	}
}
