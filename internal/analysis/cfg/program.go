package cfg

import (
	"strings"

	"github.com/gnolang/tealer/internal/teal"
)

// Program is the control flow graph of one TEAL source file. It is read-only
// once Build returns.
type Program struct {
	name         string
	source       []byte
	version      uint64
	blocks       []*BasicBlock
	instructions []*teal.Instruction
	labels       map[string]int
	blockOf      map[*teal.Instruction]*BasicBlock
	targets      map[*teal.Instruction][]*BasicBlock
}

// Name returns the program name, usually its source path.
func (p *Program) Name() string { return p.name }

// Source returns the raw program text.
func (p *Program) Source() []byte { return p.source }

// Version returns the `#pragma version` of the program, 0 when absent.
func (p *Program) Version() uint64 { return p.version }

// Blocks returns the basic blocks in index order.
func (p *Program) Blocks() []*BasicBlock { return p.blocks }

// Entry returns blocks[0], or nil for a program without instructions.
func (p *Program) Entry() *BasicBlock {
	if len(p.blocks) == 0 {
		return nil
	}
	return p.blocks[0]
}

// Instructions returns the full instruction sequence as parsed.
func (p *Program) Instructions() []*teal.Instruction { return p.instructions }

// Labels returns the label table: name to instruction index.
func (p *Program) Labels() map[string]int { return p.labels }

// BlockOf returns the block that owns ins.
func (p *Program) BlockOf(ins *teal.Instruction) *BasicBlock { return p.blockOf[ins] }

// Targets returns the blocks ins branches to, in operand order. Targets that
// point past the last instruction are omitted.
func (p *Program) Targets(ins *teal.Instruction) []*BasicBlock { return p.targets[ins] }

// SanitizedName flattens the program name so it can be used as a file name
// in the current directory.
func (p *Program) SanitizedName() string {
	return SanitizeName(p.name)
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// SanitizeName replaces path separators in name with underscores.
func SanitizeName(name string) string {
	return pathSeparators.Replace(name)
}
