package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gnolang/tealer/internal"
)

// runPrintCFG writes <program>.cfg.dot for every program instead of running
// detectors. A failing program does not stop the others.
func runPrintCFG(ctx context.Context, out io.Writer, engine *internal.Engine, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		fmt.Fprintf(out, "Analyze %s\n", path)
		filename, err := engine.ExportCFG(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "CFG exported: %s\n", filename)
	}
	return errors.Join(errs...)
}
