package detectors

import (
	"github.com/gnolang/tealer/internal/analysis/cfg"
)

type registration struct {
	desc Descriptor
	ctor Constructor
}

// Registry is an ordered set of detectors. Registration order is the order
// of List and All.
type Registry struct {
	entries []registration
	byName  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds a detector. The descriptor is checked here so that a broken
// catalogue fails at startup rather than during analysis.
func (r *Registry) Register(desc Descriptor, ctor Constructor) error {
	if err := desc.validate(); err != nil {
		return err
	}
	if ctor == nil {
		return &ConfigurationError{Detector: desc.Name, Reason: "constructor is nil"}
	}
	if _, dup := r.byName[desc.Name]; dup {
		return &ConfigurationError{Detector: desc.Name, Reason: "registered twice"}
	}
	r.byName[desc.Name] = len(r.entries)
	r.entries = append(r.entries, registration{desc: desc, ctor: ctor})
	return nil
}

// MustRegister is Register for package initialization.
func (r *Registry) MustRegister(desc Descriptor, ctor Constructor) {
	if err := r.Register(desc, ctor); err != nil {
		panic(err)
	}
}

// List returns every registered descriptor without constructing detectors.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	return out
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.entries[i].desc, true
}

// New constructs the named detector for program.
func (r *Registry) New(name string, program *cfg.Program, programName string) (Detector, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].ctor(program, programName), true
}

// All constructs every registered detector for program.
func (r *Registry) All(program *cfg.Program, programName string) []Detector {
	out := make([]Detector, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.ctor(program, programName))
	}
	return out
}

// Default holds the built-in detector catalogue.
var Default = NewRegistry()

func init() {
	Default.MustRegister(deadCodeDescriptor, NewDeadCode)
	Default.MustRegister(highComplexityDescriptor, NewHighComplexity)
}

// List returns the descriptors of the built-in catalogue.
func List() []Descriptor { return Default.List() }

// All constructs every built-in detector for program.
func All(program *cfg.Program, programName string) []Detector {
	return Default.All(program, programName)
}
