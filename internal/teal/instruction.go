package teal

import "strings"

// Instruction is one decoded TEAL operation. It is never modified after parsing.
type Instruction struct {
	op      string
	kind    Kind
	args    []string
	line    int
	targets []string
}

func newInstruction(spec OpSpec, args []string, line int) *Instruction {
	ins := &Instruction{
		op:   spec.Name,
		kind: spec.Kind,
		args: args,
		line: line,
	}
	switch spec.Kind {
	case KindBranch, KindCondBranch, KindCallsub, KindSwitch:
		ins.targets = args
	}
	return ins
}

// Op returns the opcode name as written.
func (i *Instruction) Op() string { return i.op }

// Kind returns the control-flow classification of the opcode.
func (i *Instruction) Kind() Kind { return i.kind }

// Args returns a copy of the immediate operands.
func (i *Instruction) Args() []string {
	return append([]string(nil), i.args...)
}

// Line returns the 1-based source line.
func (i *Instruction) Line() int { return i.line }

// Targets returns the label names this instruction may branch to, in operand order.
func (i *Instruction) Targets() []string {
	return append([]string(nil), i.targets...)
}

func (i *Instruction) String() string {
	if len(i.args) == 0 {
		return i.op
	}
	return i.op + " " + strings.Join(i.args, " ")
}
