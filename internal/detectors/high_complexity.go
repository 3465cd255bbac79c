package detectors

import (
	"fmt"

	"github.com/gnolang/tealer/internal/analysis/cfg"
	tt "github.com/gnolang/tealer/internal/types"
)

const (
	HighComplexityName = "highComplexity"

	// DefaultComplexityThreshold follows McCabe's recommendation of 10.
	DefaultComplexityThreshold = 10
)

var highComplexityDescriptor = Descriptor{
	Name:        HighComplexityName,
	Description: "Detect programs with high cyclomatic complexity",
	Impact:      tt.ImpactInformational,
	Confidence:  tt.ConfidenceMedium,
	Type:        tt.Stateless,

	WikiTitle:       "High cyclomatic complexity",
	WikiDescription: "Report programs whose reachable control flow graph has more independent paths than the threshold",
	WikiExploit:     "Programs with many paths are hard to review and to test exhaustively.",
	WikiRecommend:   "Split the logic into subroutines or simplify the branching.",
}

// HighComplexity computes the cyclomatic complexity E - N + 2 of the
// reachable part of the graph.
type HighComplexity struct {
	base
	threshold int
}

// NewHighComplexity returns a complexity detector using the default threshold.
func NewHighComplexity(program *cfg.Program, programName string) Detector {
	return NewHighComplexityWithThreshold(DefaultComplexityThreshold)(program, programName)
}

// NewHighComplexityWithThreshold returns a constructor that flags programs
// whose complexity exceeds threshold.
func NewHighComplexityWithThreshold(threshold int) Constructor {
	return func(program *cfg.Program, programName string) Detector {
		return &HighComplexity{
			base:      base{desc: highComplexityDescriptor, program: program, programName: programName},
			threshold: threshold,
		}
	}
}

// Complexity returns E - N + 2 over the blocks reachable from the entry.
func Complexity(program *cfg.Program) int {
	reachable := Reachable(program)
	if reachable.Cardinality() == 0 {
		return 0
	}
	edges := 0
	reachable.Each(func(b *cfg.BasicBlock) bool {
		edges += len(b.Next())
		return false
	})
	return edges - reachable.Cardinality() + 2
}

func (d *HighComplexity) Detect() []tt.Finding {
	complexity := Complexity(d.program)
	if complexity <= d.threshold {
		return nil
	}

	f := d.finding()
	if entry := d.program.Entry(); entry != nil {
		f.Instructions = append(f.Instructions, entry.Entry())
	}
	f.Message = fmt.Sprintf("Cyclomatic complexity is %d, above the threshold of %d", complexity, d.threshold)
	f.Suggestion = "Split the program into subroutines or reduce the number of branches"
	f.Metrics = map[string]int{tt.MetricComplexity: complexity}
	return []tt.Finding{f}
}
