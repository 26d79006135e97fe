package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/luoweipeter/coffea/internal/graph"
)

// GMLSerializer renders a graph in Graph Modelling Language. Nodes are
// numbered by sorted identifier so output is deterministic.
type GMLSerializer struct{}

// Serialize produces the GML document for g.
func (s *GMLSerializer) Serialize(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("graph [\n")
	buf.WriteString("  directed 1\n")

	ids := make(map[string]int)

	for i, n := range g.Nodes() {
		ids[n.ID] = i

		buf.WriteString("  node [\n")
		fmt.Fprintf(&buf, "    id %d\n", i)
		fmt.Fprintf(&buf, "    label %s\n", gmlQuote(n.ID))
		fmt.Fprintf(&buf, "    size %d\n", n.Size)
		fmt.Fprintf(&buf, "    units %d\n", n.Units)

		if n.External {
			buf.WriteString("    external 1\n")
		}

		buf.WriteString("  ]\n")
	}

	for _, e := range g.Edges() {
		src, srcOK := ids[e.Source]
		dst, dstOK := ids[e.Target]

		// Dangling edges have no node to reference in GML.
		if !srcOK || !dstOK {
			continue
		}

		buf.WriteString("  edge [\n")
		fmt.Fprintf(&buf, "    source %d\n", src)
		fmt.Fprintf(&buf, "    target %d\n", dst)
		buf.WriteString("  ]\n")
	}

	buf.WriteString("]\n")

	return buf.Bytes(), nil
}

// gmlQuote quotes a GML string value.
func gmlQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return `"` + s + `"`
}
