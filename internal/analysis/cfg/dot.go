package cfg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emicklei/dot"
)

const (
	highlightColor = "red"
	dotExtension   = ".dot"
)

// WriteDot renders the whole graph in GraphViz format. Blocks in highlight are
// filled so that a detector can point at them.
func (p *Program) WriteDot(w io.Writer, highlight []*BasicBlock) error {
	marked := make(map[*BasicBlock]bool, len(highlight))
	for _, b := range highlight {
		marked[b] = true
	}

	g := dot.NewGraph(dot.Directed)
	g.Attr("label", p.name)
	g.Attr("labelloc", "t")

	nodes := make([]dot.Node, len(p.blocks))
	for i, b := range p.blocks {
		n := g.Node(strconv.Itoa(i)).Box().Label(blockLabel(b))
		if marked[b] {
			n = n.Attr("style", "filled").Attr("fillcolor", highlightColor)
		}
		nodes[i] = n
	}
	for _, b := range p.blocks {
		for _, succ := range b.next {
			g.Edge(nodes[b.idx], nodes[succ.idx])
		}
	}

	_, err := io.WriteString(w, g.String())
	return err
}

// DotFilename is the file name used for an export of this program. The
// suffix distinguishes the full CFG ("cfg") from detector highlights.
func (p *Program) DotFilename(suffix string) string {
	return p.SanitizedName() + "." + suffix + dotExtension
}

// ExportDot writes the graph to dir/DotFilename(suffix) and returns the path.
func (p *Program) ExportDot(dir, suffix string, highlight []*BasicBlock) (string, error) {
	path := filepath.Join(dir, p.DotFilename(suffix))
	err := writeGraphFile(path, func(w io.Writer) error {
		return p.WriteDot(w, highlight)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeGraphFile creates path and fills it with render. The file is removed
// when rendering or closing fails.
func writeGraphFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating graph file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing graph file %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := render(f); err != nil {
		return fmt.Errorf("error writing graph file %s: %w", path, err)
	}
	return nil
}

func blockLabel(b *BasicBlock) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "block_%d", b.idx)
	if b.cost > 0 {
		fmt.Fprintf(&sb, " (cost %d)", b.cost)
	}
	sb.WriteString("\n")
	sb.WriteString(b.String())
	return sb.String()
}
