package cfg

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tealer/internal/teal"
)

func build(t *testing.T, src string) *Program {
	t.Helper()
	p, err := FromSource("test.teal", []byte(src))
	require.NoError(t, err)
	return p
}

func blockOps(b *BasicBlock) []string {
	ops := make([]string, 0, len(b.Instructions()))
	for _, ins := range b.Instructions() {
		ops = append(ops, ins.String())
	}
	return ops
}

type edge struct{ from, to int }

// assertSymmetric checks that every successor edge has a matching predecessor
// edge with the same multiplicity.
func assertSymmetric(t *testing.T, p *Program) {
	t.Helper()
	succ := make(map[edge]int)
	pred := make(map[edge]int)
	for _, b := range p.Blocks() {
		for _, n := range b.Next() {
			succ[edge{b.Index(), n.Index()}]++
		}
		for _, prev := range b.Prev() {
			pred[edge{prev.Index(), b.Index()}]++
		}
	}
	assert.Equal(t, succ, pred)
}

func assertRoundTrip(t *testing.T, p *Program) {
	t.Helper()
	var flat []*teal.Instruction
	for i, b := range p.Blocks() {
		assert.Equal(t, i, b.Index())
		assert.NotEmpty(t, b.Instructions())
		flat = append(flat, b.Instructions()...)
	}
	assert.Equal(t, p.Instructions(), flat)
}

func TestConditionalBranch(t *testing.T) {
	t.Parallel()
	p := build(t, `L1:
int 1
bnz L2
int 2
L2:
int 3
return
`)
	blocks := p.Blocks()
	require.Len(t, blocks, 3)

	assert.Equal(t, []string{"int 1", "bnz L2"}, blockOps(blocks[0]))
	assert.Equal(t, []string{"int 2"}, blockOps(blocks[1]))
	assert.Equal(t, []string{"int 3", "return"}, blockOps(blocks[2]))

	// fallthrough first, then the branch target
	assert.Equal(t, []*BasicBlock{blocks[1], blocks[2]}, blocks[0].Next())
	assert.Equal(t, []*BasicBlock{blocks[2]}, blocks[1].Next())
	assert.Empty(t, blocks[2].Next())
	assert.Empty(t, blocks[0].Prev())

	assert.Equal(t, []*BasicBlock{blocks[2]}, p.Targets(blocks[0].Exit()))
	assertSymmetric(t, p)
	assertRoundTrip(t, p)
}

func TestConditionalBranchToNextBlock(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nbz next\nnext:\nint 1\nreturn\n")
	blocks := p.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, []*BasicBlock{blocks[1], blocks[1]}, blocks[0].Next())
	assert.Equal(t, []*BasicBlock{blocks[0], blocks[0]}, blocks[1].Prev())
	assertSymmetric(t, p)
}

func TestUnconditionalBranch(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nb L3\nint 2\nL3:\nint 3\nreturn\n")
	blocks := p.Blocks()
	require.Len(t, blocks, 3)

	assert.Equal(t, []*BasicBlock{blocks[2]}, blocks[0].Next())
	assert.Empty(t, blocks[1].Prev())
	assert.Equal(t, []*BasicBlock{blocks[2]}, blocks[1].Next())
	assertSymmetric(t, p)
	assertRoundTrip(t, p)
}

func TestLabelSplitsStraightLineCode(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nhere:\nint 2\nreturn\n")
	blocks := p.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, []*BasicBlock{blocks[1]}, blocks[0].Next())
}

func TestEntryWithBackEdge(t *testing.T) {
	t.Parallel()
	p := build(t, "loop:\nint 1\nbnz loop\nreturn\n")
	entry := p.Entry()
	require.NotNil(t, entry)
	assert.Equal(t, []*BasicBlock{entry}, entry.Prev())
	assertSymmetric(t, p)
}

func TestTerminalBlocks(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nbnz fail\nint 1\nreturn\nfail:\nerr\nint 2\n")
	for _, b := range p.Blocks() {
		if b.Exit().Kind() == teal.KindTerminal {
			assert.Empty(t, b.Next(), "block %d", b.Index())
		}
		if b.Exit().Kind() == teal.KindCondBranch {
			assert.Len(t, b.Next(), 2, "block %d", b.Index())
		}
	}
	// the block after `err` is unreachable and has no predecessor
	last := p.Blocks()[len(p.Blocks())-1]
	assert.Equal(t, []string{"int 2"}, blockOps(last))
	assert.Empty(t, last.Prev())
	assertRoundTrip(t, p)
}

func TestSwitch(t *testing.T) {
	t.Parallel()
	p := build(t, `int 1
switch a b a
err
a:
int 1
return
b:
int 0
return
`)
	blocks := p.Blocks()
	require.Len(t, blocks, 4)
	assert.Equal(t, []*BasicBlock{blocks[1], blocks[2], blocks[3], blocks[2]}, blocks[0].Next())
	assertSymmetric(t, p)
}

func TestSubroutineReturnsToEveryCallSite(t *testing.T) {
	t.Parallel()
	p := build(t, `int 1
callsub sub
int 2
callsub sub
return
sub:
int 3
retsub
`)
	blocks := p.Blocks()
	require.Len(t, blocks, 4)

	b0, b1, b2, sub := blocks[0], blocks[1], blocks[2], blocks[3]
	assert.Equal(t, []*BasicBlock{sub}, b0.Next())
	assert.Equal(t, []*BasicBlock{sub}, b1.Next())
	assert.Equal(t, []*BasicBlock{b1, b2}, sub.Next())
	assert.Equal(t, []*BasicBlock{b0, b1}, sub.Prev())
	assertSymmetric(t, p)
	assertRoundTrip(t, p)
}

func TestNestedSubroutines(t *testing.T) {
	t.Parallel()
	p := build(t, `callsub A
return
A:
callsub B
retsub
B:
int 1
retsub
`)
	blocks := p.Blocks()
	require.Len(t, blocks, 5)

	main, ret, callB, retA, bodyB := blocks[0], blocks[1], blocks[2], blocks[3], blocks[4]
	assert.Equal(t, []*BasicBlock{callB}, main.Next())
	assert.Equal(t, []*BasicBlock{bodyB}, callB.Next())
	assert.Equal(t, []*BasicBlock{ret}, retA.Next())
	assert.Equal(t, []*BasicBlock{retA}, bodyB.Next())
	assertSymmetric(t, p)
}

func TestBranchToEndOfProgram(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nbnz end\nint 2\nb end\nend:\n")
	blocks := p.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, []*BasicBlock{blocks[1]}, blocks[0].Next())
	assert.Empty(t, blocks[1].Next())
}

func TestUndefinedLabel(t *testing.T) {
	t.Parallel()
	_, err := FromSource("bad.teal", []byte("int 1\nint 2\nbnz missing\nreturn\n"))
	require.Error(t, err)

	var perr *teal.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Line)
	assert.Equal(t, "bad.teal", perr.Filename)
	assert.ErrorIs(t, err, teal.ErrUndefinedLabel)
}

func TestEmptyProgram(t *testing.T) {
	t.Parallel()
	p := build(t, "#pragma version 6\n// nothing\n")
	assert.Empty(t, p.Blocks())
	assert.Nil(t, p.Entry())
	assert.Equal(t, uint64(6), p.Version())
}

func TestCost(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nreturn\n")
	b := p.Entry()
	assert.Zero(t, b.Cost())
	b.SetCost(3)
	assert.Equal(t, 3, b.Cost())
}

func TestWriteDot(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nb L3\nint 2\nL3:\nint 3\nreturn\n")

	var buf bytes.Buffer
	require.NoError(t, p.WriteDot(&buf, []*BasicBlock{p.Blocks()[1]}))
	out := buf.String()

	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "block_1")
	assert.Contains(t, out, "fillcolor")
	assert.Contains(t, out, "int 2")
}

func TestExportDot(t *testing.T) {
	t.Parallel()
	p, err := FromSource("contracts/app.teal", []byte("int 1\nreturn\n"))
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := p.ExportDot(dir, "cfg", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contracts_app.teal.cfg.dot"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "digraph")
}

func TestExportDotMissingDir(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nreturn\n")
	_, err := p.ExportDot(filepath.Join(t.TempDir(), "missing"), "cfg", nil)
	assert.Error(t, err)
}

func TestWriteGraphFileRemovesPartialOutput(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.cfg.dot")
	failure := errors.New("disk full")

	err := writeGraphFile(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "digraph {"); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)
	assert.NoFileExists(t, path)
}

func TestLabelsAndBlockOf(t *testing.T) {
	t.Parallel()
	p := build(t, "int 1\nbnz done\nint 2\npop\ndone:\nint 1\nreturn\n")

	assert.Equal(t, map[string]int{"done": 4}, p.Labels())

	blocks := p.Blocks()
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		for _, ins := range b.Instructions() {
			assert.Same(t, b, p.BlockOf(ins), "line %d", ins.Line())
		}
	}
	assert.Nil(t, p.BlockOf(&teal.Instruction{}))
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a_b_c.teal", SanitizeName("a/b\\c.teal"))
}
