package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/tealer/internal"
	"github.com/gnolang/tealer/scanner"
)

const tealExtension = ".teal"

// DetectionEngine is the part of internal.Engine the processing helpers use.
type DetectionEngine interface {
	Run(filePath string) (*internal.Report, error)
	RunSource(name string, source []byte) (*internal.Report, error)
	IgnoreDetector(name string)
}

// New builds an engine from the configuration file at configurationPath.
// An empty path reads DefaultConfigPath when it exists.
func New(configurationPath string, opts ...internal.Option) (*internal.Engine, error) {
	config, err := loadConfigOrDefault(configurationPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config, opts...), nil
}

// NewFromConfig builds an engine from config. opts are applied last.
func NewFromConfig(config Config, opts ...internal.Option) *internal.Engine {
	base := []internal.Option{
		internal.WithMinImpact(config.MinImpact),
		internal.WithComplexityThreshold(config.ComplexityThreshold),
	}
	if config.ExportDir != "" {
		base = append(base, internal.WithExportDir(config.ExportDir))
	}
	if config.NoExport {
		base = append(base, internal.WithoutExports())
	}

	engine := internal.NewEngine(append(base, opts...)...)
	for name, dc := range config.Detectors {
		if dc.Off {
			engine.IgnoreDetector(name)
		}
	}
	return engine
}

// Processor analyzes a single file.
type Processor func(DetectionEngine, string) (*internal.Report, error)

type processOptions struct {
	progress io.Writer
}

// ProcessOption configures ProcessFiles and ProcessPath.
type ProcessOption func(*processOptions)

// WithProgress draws a progress bar on w while a directory is processed.
func WithProgress(w io.Writer) ProcessOption {
	return func(o *processOptions) { o.progress = w }
}

// ProcessFiles analyzes every path one after another. A failing file does not
// stop the run; its error is joined into the returned error and the reports of
// the other files are still returned.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine DetectionEngine,
	paths []string,
	processor Processor,
	opts ...ProcessOption,
) ([]*internal.Report, error) {
	var (
		reports []*internal.Report
		errs    []error
	)
	for _, path := range paths {
		pathReports, err := ProcessPath(ctx, logger, engine, path, processor, opts...)
		reports = append(reports, pathReports...)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return reports, errors.Join(append(errs, err)...)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// ProcessPath analyzes a file, or every .teal file under a directory.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine DetectionEngine,
	path string,
	processor Processor,
	opts ...ProcessOption,
) ([]*internal.Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o processOptions
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Error("Error accessing path", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = scanner.New(path, tealExtension).Paths()
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	}

	var bar *progressbar.ProgressBar
	if info.IsDir() && o.progress != nil {
		bar = newProgressBar(o.progress, path, len(files))
		defer bar.Finish()
	}

	var (
		reports []*internal.Report
		errs    []error
	)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return reports, errors.Join(append(errs, err)...)
		}

		report, err := processor(engine, file)
		if err != nil {
			logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
			errs = append(errs, err)
		} else {
			reports = append(reports, report)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return reports, errors.Join(errs...)
}

func newProgressBar(w io.Writer, description string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// ProcessFile runs the engine on a single file.
func ProcessFile(engine DetectionEngine, filePath string) (*internal.Report, error) {
	return engine.Run(filePath)
}

// ProcessSource runs the engine on in-memory source.
func ProcessSource(engine DetectionEngine, name string, source []byte) (*internal.Report, error) {
	return engine.RunSource(name, source)
}
