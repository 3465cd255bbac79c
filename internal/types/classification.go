package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Impact is how much harm the flagged code can do.
type Impact int

const (
	ImpactInformational Impact = iota
	ImpactOptimization
	ImpactLow
	ImpactMedium
	ImpactHigh
)

var impactNames = map[Impact]string{
	ImpactInformational: "Informational",
	ImpactOptimization:  "Optimization",
	ImpactLow:           "Low",
	ImpactMedium:        "Medium",
	ImpactHigh:          "High",
}

func (i Impact) String() string {
	if name, ok := impactNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Impact(%d)", int(i))
}

// ParseImpact accepts an impact name in any case.
func ParseImpact(s string) (Impact, error) {
	for impact, name := range impactNames {
		if strings.EqualFold(name, s) {
			return impact, nil
		}
	}
	return 0, fmt.Errorf("unknown impact %q", s)
}

func (i Impact) MarshalYAML() (interface{}, error) {
	return i.String(), nil
}

func (i *Impact) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseImpact(node.Value)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i Impact) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText lets TOML and flag decoders read impact names.
func (i *Impact) UnmarshalText(text []byte) error {
	parsed, err := ParseImpact(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Confidence is how likely a finding is a true positive.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[Confidence]string{
	ConfidenceLow:    "Low",
	ConfidenceMedium: "Medium",
	ConfidenceHigh:   "High",
}

func (c Confidence) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Confidence(%d)", int(c))
}

// ParseConfidence accepts a confidence name in any case.
func ParseConfidence(s string) (Confidence, error) {
	for confidence, name := range confidenceNames {
		if strings.EqualFold(name, s) {
			return confidence, nil
		}
	}
	return 0, fmt.Errorf("unknown confidence %q", s)
}

func (c Confidence) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *Confidence) UnmarshalYAML(node *yaml.Node) error {
	return c.UnmarshalText([]byte(node.Value))
}

func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Confidence) UnmarshalText(text []byte) error {
	parsed, err := ParseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DetectorType separates structural analyses from ones that need data flow.
type DetectorType int

const (
	// Stateless detectors only look at graph structure and reachability.
	Stateless DetectorType = iota
	// Stateful detectors need richer data-flow information.
	Stateful
)

func (t DetectorType) String() string {
	switch t {
	case Stateless:
		return "stateless"
	case Stateful:
		return "stateful"
	default:
		return fmt.Sprintf("DetectorType(%d)", int(t))
	}
}

// ParseDetectorType accepts "stateless" or "stateful" in any case.
func ParseDetectorType(s string) (DetectorType, error) {
	for _, t := range []DetectorType{Stateless, Stateful} {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown detector type %q", s)
}

func (t DetectorType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *DetectorType) UnmarshalYAML(node *yaml.Node) error {
	return t.UnmarshalText([]byte(node.Value))
}

func (t DetectorType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DetectorType) UnmarshalText(text []byte) error {
	parsed, err := ParseDetectorType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
