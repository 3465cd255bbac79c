package detectors

import (
	"fmt"

	"github.com/gnolang/tealer/internal/analysis/cfg"
	tt "github.com/gnolang/tealer/internal/types"
)

// Descriptor is the static metadata of a detector.
type Descriptor struct {
	Name        string
	Description string
	Impact      tt.Impact
	Confidence  tt.Confidence
	Type        tt.DetectorType

	WikiTitle       string
	WikiDescription string
	WikiExploit     string
	WikiRecommend   string
}

// Detector is one analysis over a Program. Detect must not modify the graph.
type Detector interface {
	Descriptor() Descriptor
	Detect() []tt.Finding
}

// Constructor creates a detector for one program.
type Constructor func(program *cfg.Program, programName string) Detector

// ConfigurationError reports a detector registered with incomplete metadata.
// It is a programming mistake and never depends on the analyzed program.
type ConfigurationError struct {
	Detector string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Detector == "" {
		return "detector configuration: " + e.Reason
	}
	return fmt.Sprintf("detector %q configuration: %s", e.Detector, e.Reason)
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return &ConfigurationError{Reason: "name is not set"}
	}
	if d.Description == "" {
		return &ConfigurationError{Detector: d.Name, Reason: "description is not set"}
	}
	return nil
}

// base carries the fields every detector needs and supplies Descriptor.
type base struct {
	desc        Descriptor
	program     *cfg.Program
	programName string
}

func (b base) Descriptor() Descriptor { return b.desc }

// finding pre-fills the descriptor-derived fields of a Finding.
func (b base) finding() tt.Finding {
	return tt.Finding{
		Detector:   b.desc.Name,
		Filename:   b.programName,
		Impact:     b.desc.Impact,
		Confidence: b.desc.Confidence,
	}
}
