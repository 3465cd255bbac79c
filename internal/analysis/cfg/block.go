package cfg

import (
	"fmt"
	"strings"

	"github.com/gnolang/tealer/internal/teal"
)

// BasicBlock is a maximal straight-line run of instructions. Only its last
// instruction may transfer control and only its first may be a branch target.
type BasicBlock struct {
	instructions []*teal.Instruction
	prev         []*BasicBlock
	next         []*BasicBlock
	idx          int
	cost         int
}

// Instructions returns the block's instructions in program order.
func (b *BasicBlock) Instructions() []*teal.Instruction { return b.instructions }

// Entry returns the first instruction.
func (b *BasicBlock) Entry() *teal.Instruction { return b.instructions[0] }

// Exit returns the last instruction.
func (b *BasicBlock) Exit() *teal.Instruction { return b.instructions[len(b.instructions)-1] }

// Prev returns the predecessor blocks. A block appears once per edge.
func (b *BasicBlock) Prev() []*BasicBlock { return b.prev }

// Next returns the successor blocks in wiring order. A block appears once per edge.
func (b *BasicBlock) Next() []*BasicBlock { return b.next }

// Index is the block's position in program order; 0 is the entry.
func (b *BasicBlock) Index() int { return b.idx }

// Cost is the accumulated execution cost assigned by cost analyses.
func (b *BasicBlock) Cost() int { return b.cost }

// SetCost records the execution cost of the block.
func (b *BasicBlock) SetCost(c int) { b.cost = c }

// Lines returns the first and last source lines covered by the block.
func (b *BasicBlock) Lines() (int, int) {
	return b.Entry().Line(), b.Exit().Line()
}

func (b *BasicBlock) String() string {
	var sb strings.Builder
	for _, ins := range b.instructions {
		fmt.Fprintf(&sb, "%d: %s\n", ins.Line(), ins)
	}
	return sb.String()
}

func (b *BasicBlock) add(ins *teal.Instruction) {
	b.instructions = append(b.instructions, ins)
}

// link adds the edge from -> to on both ends.
func link(from, to *BasicBlock) {
	from.next = append(from.next, to)
	to.prev = append(to.prev, from)
}
