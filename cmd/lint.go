package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tealer/formatter"
	"github.com/gnolang/tealer/internal"
	"github.com/gnolang/tealer/lint"
)

// jsonFinding is the JSON shape of a finding.
type jsonFinding struct {
	Detector   string         `json:"detector"`
	Impact     string         `json:"impact"`
	Confidence string         `json:"confidence"`
	Lines      []int          `json:"lines"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Export     string         `json:"export,omitempty"`
	Metrics    map[string]int `json:"metrics,omitempty"`
}

func runDetection(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, engine *internal.Engine, paths []string, opts *rootOptions) error {
	out := cmd.OutOrStdout()

	var processOpts []lint.ProcessOption
	if opts.progress {
		processOpts = append(processOpts, lint.WithProgress(cmd.ErrOrStderr()))
	}

	processor := func(e lint.DetectionEngine, path string) (*internal.Report, error) {
		if !opts.jsonOutput {
			fmt.Fprintf(out, "Analyze %s\n", path)
		}
		report, err := lint.ProcessFile(e, path)
		if err != nil {
			return nil, err
		}
		if !opts.jsonOutput {
			printReport(out, report)
		}
		return report, nil
	}

	reports, err := lint.ProcessFiles(ctx, logger, engine, paths, processor, processOpts...)

	if opts.jsonOutput {
		if jerr := writeJSON(out, reports, opts.outPath); jerr != nil {
			logger.Error("Error writing JSON output", zap.Error(jerr))
			if err == nil {
				err = jerr
			}
		}
	}

	if err != nil {
		return err
	}
	for _, r := range reports {
		if len(r.Findings) > 0 {
			return errFindingsReported
		}
	}
	return nil
}

func printReport(w io.Writer, report *internal.Report) {
	if len(report.Findings) > 0 {
		fmt.Fprint(w, formatter.GenerateFormattedFinding(report.Findings, report.Source, report.Exports))
	}

	detectorNames := make([]string, 0, len(report.Exports))
	for name := range report.Exports {
		detectorNames = append(detectorNames, name)
	}
	sort.Strings(detectorNames)
	for _, name := range detectorNames {
		fmt.Fprintf(w, "Graph exported: %s\n", report.Exports[name])
	}
}

func writeJSON(stdout io.Writer, reports []*internal.Report, outPath string) error {
	findingsByFile := make(map[string][]jsonFinding)
	for _, r := range reports {
		findings := make([]jsonFinding, 0, len(r.Findings))
		for _, f := range r.Findings {
			findings = append(findings, jsonFinding{
				Detector:   f.Detector,
				Impact:     f.Impact.String(),
				Confidence: f.Confidence.String(),
				Lines:      f.Lines(),
				Message:    f.Message,
				Suggestion: f.Suggestion,
				Export:     r.Exports[f.Detector],
				Metrics:    f.Metrics,
			})
		}
		findingsByFile[r.Filename] = findings
	}

	d, err := json.MarshalIndent(findingsByFile, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling findings to JSON: %w", err)
	}
	if outPath == "" {
		_, err = fmt.Fprintln(stdout, string(d))
		return err
	}
	return os.WriteFile(outPath, d, 0o644)
}
