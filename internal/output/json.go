package output

import (
	"encoding/json"
	"fmt"

	"github.com/luoweipeter/coffea/internal/graph"
)

// JSONSerializer renders a graph as an indented JSON document with nodes
// and edges arrays.
type JSONSerializer struct{}

type jsonNode struct {
	ID       string `json:"id"`
	Size     int    `json:"size"`
	Units    int    `json:"units"`
	External bool   `json:"external,omitempty"`
}

type jsonEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type jsonDoc struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// Serialize produces the JSON document for g.
func (s *JSONSerializer) Serialize(g *graph.Graph) ([]byte, error) {
	doc := jsonDoc{
		Nodes: make([]jsonNode, 0, g.NodeCount()),
		Edges: make([]jsonEdge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:       n.ID,
			Size:     n.Size,
			Units:    n.Units,
			External: n.External,
		})
	}

	for _, e := range g.Edges() {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}

		doc.Edges = append(doc.Edges, jsonEdge{Source: e.Source, Target: e.Target})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}

	return append(data, '\n'), nil
}
