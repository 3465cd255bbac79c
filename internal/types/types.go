package types

import (
	"sort"

	"github.com/gnolang/tealer/internal/analysis/cfg"
	"github.com/gnolang/tealer/internal/teal"
)

// Finding is one result reported by a detector. It is not modified after
// the detector returns it.
type Finding struct {
	Detector     string
	Filename     string
	Impact       Impact
	Confidence   Confidence
	Blocks       []*cfg.BasicBlock
	Instructions []*teal.Instruction
	Message      string
	Suggestion   string
	// Export is the suffix of a companion graph export highlighting Blocks,
	// empty when the detector does not request one.
	Export string
	// Metrics holds measured values behind the finding, keyed by metric name.
	Metrics map[string]int
}

// MetricComplexity is the cyclomatic complexity of the program.
const MetricComplexity = "complexity"

// Lines returns the sorted source lines implicated by the finding.
func (f Finding) Lines() []int {
	seen := make(map[int]bool)
	var lines []int
	add := func(ins *teal.Instruction) {
		if !seen[ins.Line()] {
			seen[ins.Line()] = true
			lines = append(lines, ins.Line())
		}
	}
	for _, b := range f.Blocks {
		for _, ins := range b.Instructions() {
			add(ins)
		}
	}
	for _, ins := range f.Instructions {
		add(ins)
	}
	sort.Ints(lines)
	return lines
}

// StartLine returns the first implicated line, or 0 when nothing is implicated.
func (f Finding) StartLine() int {
	lines := f.Lines()
	if len(lines) == 0 {
		return 0
	}
	return lines[0]
}
