package internal

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/tealer/internal/analysis/cfg"
	"github.com/gnolang/tealer/internal/detectors"
	"github.com/gnolang/tealer/internal/nolint"
	tt "github.com/gnolang/tealer/internal/types"
)

// CFGSuffix names the full graph export, <program>.cfg.dot.
const CFGSuffix = "cfg"

// Engine runs the registered detectors over TEAL programs.
type Engine struct {
	registry         *detectors.Registry
	overrides        map[string]detectors.Constructor
	ignoredDetectors map[string]bool
	exportDir        string
	noExport         bool
	minImpact        tt.Impact
	cache            *Cache
	logger           *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default detector registry.
func WithRegistry(r *detectors.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithExportDir sets the directory graph exports are written to.
func WithExportDir(dir string) Option {
	return func(e *Engine) { e.exportDir = dir }
}

// WithoutExports disables the graph exports requested by findings.
func WithoutExports() Option {
	return func(e *Engine) { e.noExport = true }
}

// WithMinImpact drops findings classified below impact.
func WithMinImpact(impact tt.Impact) Option {
	return func(e *Engine) { e.minImpact = impact }
}

// WithCache reuses reports of files whose content did not change.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithComplexityThreshold overrides the threshold of the complexity detector.
func WithComplexityThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.overrides[detectors.HighComplexityName] = detectors.NewHighComplexityWithThreshold(threshold)
		}
	}
}

// NewEngine creates a new detection engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry:         detectors.Default,
		overrides:        make(map[string]detectors.Constructor),
		ignoredDetectors: make(map[string]bool),
		exportDir:        ".",
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report is the outcome of analyzing one program.
type Report struct {
	Filename string
	Program  *cfg.Program
	Source   *SourceCode
	Findings []tt.Finding
	// Exports maps a detector name to the graph file written for its finding.
	Exports map[string]string
}

// IgnoreDetector disables a detector by name.
func (e *Engine) IgnoreDetector(name string) {
	if e.ignoredDetectors == nil {
		e.ignoredDetectors = make(map[string]bool)
	}
	e.ignoredDetectors[name] = true
}

// Detectors returns the descriptors of the detectors that will run.
func (e *Engine) Detectors() []detectors.Descriptor {
	var enabled []detectors.Descriptor
	for _, d := range e.registry.List() {
		if !e.ignoredDetectors[d.Name] {
			enabled = append(enabled, d)
		}
	}
	return enabled
}

// Run analyzes the TEAL file at path.
func (e *Engine) Run(path string) (*Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return e.RunSource(path, src)
}

// RunSource analyzes src under the given program name.
func (e *Engine) RunSource(name string, src []byte) (*Report, error) {
	if e.cache != nil {
		if report, ok := e.cache.Get(name, src); ok {
			e.logger.Debug("Using cached report", zap.String("program", name))
			return report, nil
		}
	}

	program, err := cfg.FromSource(name, src)
	if err != nil {
		return nil, err
	}

	var findings []tt.Finding
	for _, d := range e.Detectors() {
		det, ok := e.newDetector(d.Name, program, name)
		if !ok {
			continue
		}
		fs := det.Detect()
		e.logger.Debug("Detector finished",
			zap.String("program", name),
			zap.String("detector", d.Name),
			zap.Int("findings", len(fs)))
		for _, f := range fs {
			if f.Impact >= e.minImpact {
				findings = append(findings, f)
			}
		}
	}

	findings = nolint.ParseSource(src).Filter(findings)

	report := &Report{
		Filename: name,
		Program:  program,
		Source:   NewSourceCode(src),
		Findings: findings,
		Exports:  make(map[string]string),
	}

	if !e.noExport {
		for _, f := range findings {
			if f.Export == "" {
				continue
			}
			out, err := program.ExportDot(e.exportDir, f.Export, f.Blocks)
			if err != nil {
				return nil, fmt.Errorf("error exporting %s graph of %s: %w", f.Detector, name, err)
			}
			report.Exports[f.Detector] = out
		}
	}

	if e.cache != nil {
		e.cache.Set(name, src, report)
	}
	return report, nil
}

// ExportCFG writes the full graph of the program at path and returns the
// written file name.
func (e *Engine) ExportCFG(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	program, err := cfg.FromSource(path, src)
	if err != nil {
		return "", err
	}
	return program.ExportDot(e.exportDir, CFGSuffix, nil)
}

func (e *Engine) newDetector(name string, program *cfg.Program, programName string) (detectors.Detector, bool) {
	if ctor, ok := e.overrides[name]; ok {
		return ctor(program, programName), true
	}
	return e.registry.New(name, program, programName)
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits src into lines.
func NewSourceCode(src []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(src), "\n")}
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}
