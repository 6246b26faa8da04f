// Package render draws structures for humans.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/hypergraph"
)

// DOT writes g as a Graphviz digraph. Every level is a cluster and
// every conjunct of more than one literal a junction point. Negated
// literals are drawn with an empty arrow end, constitution relations
// with dashed edges.
func DOT(w io.Writer, name string, g *hypergraph.Graph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=BT;\n")
	b.WriteString("  node [shape=ellipse];\n")
	for _, l := range g.Levels() {
		fmt.Fprintf(&b, "  subgraph cluster_level%d {\n", l.Index)
		fmt.Fprintf(&b, "    label=%q;\n", fmt.Sprintf("level %d", l.Index))
		for _, n := range l.Nodes {
			style := ""
			if !n.Explained {
				style = " [style=dashed]"
			}
			fmt.Fprintf(&b, "    %q%s;\n", n.ID, style)
		}
		b.WriteString("  }\n")
	}
	for _, e := range g.Edges() {
		head := fmt.Sprintf("%q", e.Head.Factor)
		var headAttrs, kindAttrs []string
		if e.Head.Negated {
			headAttrs = append(headAttrs, "arrowhead=odot")
		}
		if e.Kind == mlca.Constitution {
			kindAttrs = append(kindAttrs, "style=dashed")
		}
		for i, conj := range e.Tails {
			if len(conj) == 1 {
				fmt.Fprintf(&b, "  %q -> %s%s;\n", conj[0].Factor, head, attrs(tail(conj[0].Negated), headAttrs, kindAttrs))
				continue
			}
			junction := fmt.Sprintf("%q", fmt.Sprintf("%s#%d", e.Head.Factor, i))
			fmt.Fprintf(&b, "  %s [shape=point];\n", junction)
			for _, l := range conj {
				fmt.Fprintf(&b, "  %q -> %s%s;\n", l.Factor, junction, attrs([]string{"arrowhead=none"}, tail(l.Negated), kindAttrs))
			}
			fmt.Fprintf(&b, "  %s -> %s%s;\n", junction, head, attrs(headAttrs, kindAttrs))
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func tail(negated bool) []string {
	if negated {
		return []string{"dir=both", "arrowtail=odot"}
	}
	return nil
}

// attrs joins attribute groups into a DOT attribute list.
func attrs(groups ...[]string) string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	if len(all) == 0 {
		return ""
	}
	return " [" + strings.Join(all, ", ") + "]"
}

// DOTFile writes g to dir as structure-<n>.dot.
func DOTFile(dir string, n int, g *hypergraph.Graph) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("structure-%d", n)
	f, err := os.Create(filepath.Join(dir, name+".dot"))
	if err != nil {
		return err
	}
	if err := DOT(f, name, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
