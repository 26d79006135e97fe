package output

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/luoweipeter/coffea/internal/graph"
)

// GraphMLSerializer renders a graph as GraphML with size, units, and
// external attributes declared as keys.
type GraphMLSerializer struct{}

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// Serialize produces the GraphML document for g.
func (s *GraphMLSerializer) Serialize(g *graph.Graph) ([]byte, error) {
	doc := graphmlDoc{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "size", For: "node", Name: "size", Type: "int"},
			{ID: "units", For: "node", Name: "units", Type: "int"},
			{ID: "external", For: "node", Name: "external", Type: "boolean"},
		},
		Graph: graphmlGraph{
			ID:          "dependencies",
			EdgeDefault: "directed",
		},
	}

	for _, n := range g.Nodes() {
		node := graphmlNode{
			ID: n.ID,
			Data: []graphmlData{
				{Key: "size", Value: fmt.Sprintf("%d", n.Size)},
				{Key: "units", Value: fmt.Sprintf("%d", n.Units)},
				{Key: "external", Value: fmt.Sprintf("%t", n.External)},
			},
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}

	for _, e := range g.Edges() {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}

		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{Source: e.Source, Target: e.Target})
	}

	var buf bytes.Buffer

	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding graphml: %w", err)
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
