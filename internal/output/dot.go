package output

import (
	"bytes"
	"fmt"

	"github.com/luoweipeter/coffea/internal/graph"
)

// DOTSerializer renders a graph in Graphviz DOT, nodes and edges in sorted
// order. The diff command relies on this determinism.
type DOTSerializer struct{}

// Serialize produces the DOT document for g.
func (s *DOTSerializer) Serialize(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("digraph dependencies {\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %s", dotQuote(n.ID))

		if n.External {
			buf.WriteString(" [style=dashed]")
		}

		buf.WriteString(";\n")
	}

	for _, e := range g.Edges() {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}

		fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(e.Source), dotQuote(e.Target))
	}

	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

// dotQuote quotes a DOT identifier.
func dotQuote(s string) string {
	var out bytes.Buffer

	out.WriteByte('"')

	for _, r := range s {
		if r == '"' || r == '\\' {
			out.WriteByte('\\')
		}

		out.WriteRune(r)
	}

	out.WriteByte('"')

	return out.String()
}
