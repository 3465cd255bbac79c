package detectors

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/gnolang/tealer/internal/analysis/cfg"
	tt "github.com/gnolang/tealer/internal/types"
)

const DeadCodeName = "deadCode"

var deadCodeDescriptor = Descriptor{
	Name:        DeadCodeName,
	Description: "Detect dead code",
	Impact:      tt.ImpactOptimization,
	Confidence:  tt.ConfidenceHigh,
	Type:        tt.Stateless,

	WikiTitle:       "Dead code",
	WikiDescription: "Detect basic blocks that will never be executed",
	WikiExploit:     "Dead code costs space on the blockchain and increases the deployment cost of the contract.",
	WikiRecommend:   "Remove every piece of code flagged as dead.",
}

// DeadCode flags basic blocks that cannot be reached from the entry block.
type DeadCode struct {
	base
}

// NewDeadCode returns a dead code detector for program.
func NewDeadCode(program *cfg.Program, programName string) Detector {
	return &DeadCode{base{desc: deadCodeDescriptor, program: program, programName: programName}}
}

func (d *DeadCode) Detect() []tt.Finding {
	reachable := Reachable(d.program)

	var dead []*cfg.BasicBlock
	for _, b := range d.program.Blocks() {
		if !reachable.Contains(b) {
			dead = append(dead, b)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	f := d.finding()
	f.Blocks = dead
	f.Message = fmt.Sprintf("Dead code found: %d basic block(s) can never be executed", len(dead))
	f.Suggestion = "Remove the unreachable instructions"
	f.Export = DeadCodeName
	return []tt.Finding{f}
}

// Reachable returns the blocks reachable from the entry block by following
// successor edges. The walk uses an explicit stack.
func Reachable(program *cfg.Program) mapset.Set[*cfg.BasicBlock] {
	visited := mapset.NewThreadUnsafeSet[*cfg.BasicBlock]()
	entry := program.Entry()
	if entry == nil {
		return visited
	}

	stack := []*cfg.BasicBlock{entry}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.Add(b) {
			continue
		}
		for _, next := range b.Next() {
			if !visited.Contains(next) {
				stack = append(stack, next)
			}
		}
	}
	return visited
}
