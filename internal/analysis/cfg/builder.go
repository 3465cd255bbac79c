package cfg

import (
	"sort"

	"github.com/gnolang/tealer/internal/teal"
)

// FromSource parses src and builds its control flow graph.
func FromSource(name string, src []byte) (*Program, error) {
	listing, err := teal.Parse(name, src)
	if err != nil {
		return nil, err
	}
	return Build(name, src, listing)
}

type callSite struct {
	block  *BasicBlock
	label  string
	ret    *BasicBlock
	callee *BasicBlock
}

type builder struct {
	name     string
	listing  *teal.Listing
	prog     *Program
	startAt  []*BasicBlock // block starting at an instruction index, nil otherwise
	exitIdx  []int         // instruction index of each block's exit
	calls    []callSite
	retsubs  []*BasicBlock
	numInsns int
}

// Build partitions the listing into basic blocks and wires every possible
// control transfer between them. A branch to a label that was never defined
// is reported as a *teal.ParseError.
func Build(name string, src []byte, listing *teal.Listing) (*Program, error) {
	b := &builder{
		name:     name,
		listing:  listing,
		numInsns: len(listing.Instructions),
		prog: &Program{
			name:         name,
			source:       src,
			version:      listing.Version,
			instructions: listing.Instructions,
			labels:       listing.Labels,
			blockOf:      make(map[*teal.Instruction]*BasicBlock, len(listing.Instructions)),
			targets:      make(map[*teal.Instruction][]*BasicBlock),
		},
	}

	b.splitBlocks()
	if err := b.wireEdges(); err != nil {
		return nil, err
	}
	b.wireReturns()

	return b.prog, nil
}

// splitBlocks starts a new block at every label position and after every
// control transfer.
func (b *builder) splitBlocks() {
	leaders := make([]bool, b.numInsns)
	for _, pos := range b.listing.Labels {
		if pos < b.numInsns {
			leaders[pos] = true
		}
	}
	b.startAt = make([]*BasicBlock, b.numInsns)

	var current *BasicBlock
	for i, ins := range b.listing.Instructions {
		newBlock := current == nil || leaders[i] || b.listing.Instructions[i-1].Kind().TransfersControl()
		if newBlock {
			current = &BasicBlock{idx: len(b.prog.blocks)}
			b.prog.blocks = append(b.prog.blocks, current)
			b.exitIdx = append(b.exitIdx, i)
			b.startAt[i] = current
		}
		current.add(ins)
		b.exitIdx[current.idx] = i
		b.prog.blockOf[ins] = current
	}
}

// blockStartingAt returns the block beginning at instruction index i, or nil
// when i is past the end of the program.
func (b *builder) blockStartingAt(i int) *BasicBlock {
	if i >= b.numInsns {
		return nil
	}
	return b.startAt[i]
}

func (b *builder) resolve(ins *teal.Instruction, label string) (*BasicBlock, error) {
	pos, ok := b.listing.Labels[label]
	if !ok {
		return nil, teal.Errorf(b.name, ins.Line(), teal.ErrUndefinedLabel, "%s", label)
	}
	return b.blockStartingAt(pos), nil
}

func (b *builder) resolveAll(ins *teal.Instruction) ([]*BasicBlock, error) {
	var resolved []*BasicBlock
	for _, label := range ins.Targets() {
		dst, err := b.resolve(ins, label)
		if err != nil {
			return nil, err
		}
		if dst != nil {
			resolved = append(resolved, dst)
		}
	}
	b.prog.targets[ins] = resolved
	return resolved, nil
}

func (b *builder) wireEdges() error {
	for _, block := range b.prog.blocks {
		exit := block.Exit()
		next := b.blockStartingAt(b.exitIdx[block.idx] + 1)

		switch exit.Kind() {
		case teal.KindPlain:
			if next != nil {
				link(block, next)
			}

		case teal.KindCondBranch, teal.KindSwitch:
			targets, err := b.resolveAll(exit)
			if err != nil {
				return err
			}
			if next != nil {
				link(block, next)
			}
			for _, dst := range targets {
				link(block, dst)
			}

		case teal.KindBranch:
			targets, err := b.resolveAll(exit)
			if err != nil {
				return err
			}
			for _, dst := range targets {
				link(block, dst)
			}

		case teal.KindCallsub:
			targets, err := b.resolveAll(exit)
			if err != nil {
				return err
			}
			site := callSite{
				block: block,
				label: exit.Targets()[0],
				ret:   next,
			}
			if len(targets) > 0 {
				site.callee = targets[0]
				link(block, site.callee)
			}
			b.calls = append(b.calls, site)

		case teal.KindRetsub:
			b.retsubs = append(b.retsubs, block)

		case teal.KindTerminal:
			// no successors
		}
	}
	return nil
}

// wireReturns links every retsub of a subroutine back to the return point of
// every call site of that subroutine. The return target depends on the call
// stack at run time, so all call sites are treated as possible.
func (b *builder) wireReturns() {
	if len(b.retsubs) == 0 || len(b.calls) == 0 {
		return
	}

	var order []string
	sitesByLabel := make(map[string][]callSite)
	for _, site := range b.calls {
		if _, seen := sitesByLabel[site.label]; !seen {
			order = append(order, site.label)
		}
		sitesByLabel[site.label] = append(sitesByLabel[site.label], site)
	}

	for _, label := range order {
		sites := sitesByLabel[label]
		entry := sites[0].callee
		if entry == nil {
			continue
		}
		for _, ret := range b.subroutineReturns(entry) {
			for _, site := range sites {
				if site.ret != nil {
					link(ret, site.ret)
				}
			}
		}
	}
}

// subroutineReturns walks the body of the subroutine starting at entry and
// returns its retsub blocks in program order. Nested calls are stepped over to
// their return point; the walk uses an explicit stack.
func (b *builder) subroutineReturns(entry *BasicBlock) []*BasicBlock {
	visited := make([]bool, len(b.prog.blocks))
	stack := []*BasicBlock{entry}
	var rets []*BasicBlock

	for len(stack) > 0 {
		block := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[block.idx] {
			continue
		}
		visited[block.idx] = true

		switch block.Exit().Kind() {
		case teal.KindRetsub:
			rets = append(rets, block)
			continue
		case teal.KindCallsub:
			if ret := b.blockStartingAt(b.exitIdx[block.idx] + 1); ret != nil {
				stack = append(stack, ret)
			}
			continue
		}

		for i := len(block.next) - 1; i >= 0; i-- {
			stack = append(stack, block.next[i])
		}
	}

	sort.Slice(rets, func(i, j int) bool { return rets[i].idx < rets[j].idx })
	return rets
}
