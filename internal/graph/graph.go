// Package graph holds the dependency graph model shared by the scanning,
// filtering, and output stages: nodes keyed by program-unit identifier and a
// set of directed edges between identifiers.
//
// Edges are recorded independently of nodes. Scanning a class that references
// an unscanned class produces an edge whose target has no node; boundary
// resolution (boundary.go) decides what happens to such edges.
package graph

import "sort"

// Node represents a program unit (class or package) in the dependency graph.
type Node struct {
	// ID is the opaque string identifier of the unit. Equality is exact
	// string equality; no normalization is applied.
	ID string

	// Size is the accumulated byte size of all units merged into this node.
	Size int

	// Units is the number of program units merged into this node. A
	// package-granularity node counts every class aggregated into it.
	Units int

	// External marks a synthesized placeholder for a dependency target
	// outside the retained node set.
	External bool
}

// Edge is a directed dependency between two node identifiers.
type Edge struct {
	Source string
	Target string
}

// Graph is a dependency graph. It is not safe for concurrent use; the
// pipeline owns and mutates it from a single goroutine.
type Graph struct {
	nodes map[string]*Node
	edges map[Edge]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[Edge]struct{}),
	}
}

// AddNode records a program unit under the given identifier. Adding an
// identifier that already exists merges into the existing node: sizes and
// unit counts accumulate.
func (g *Graph) AddNode(id string, size int) *Node {
	if n, ok := g.nodes[id]; ok {
		n.Size += size
		n.Units++

		return n
	}

	n := &Node{ID: id, Size: size, Units: 1}
	g.nodes[id] = n

	return n
}

// AddExternalNode records a synthesized placeholder node for id. Returns
// false when a node with that identifier already exists.
func (g *Graph) AddExternalNode(id string) bool {
	if _, ok := g.nodes[id]; ok {
		return false
	}

	g.nodes[id] = &Node{ID: id, External: true}

	return true
}

// AddEdge records a directed edge. Endpoints need not exist as nodes.
// Self-loops are dropped: a unit's dependency on itself carries no
// information in any export format.
func (g *Graph) AddEdge(source, target string) {
	if source == target {
		return
	}

	g.edges[Edge{Source: source, Target: target}] = struct{}{}
}

// Has reports whether a node with the given identifier exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]

	return ok
}

// Node returns the node for id, or nil if absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IDs returns all node identifiers in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Nodes returns all nodes sorted by identifier.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	return nodes
}

// Edges returns all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}

		return edges[i].Target < edges[j].Target
	})

	return edges
}

// Remove deletes the node with the given identifier. Edges touching it stay
// behind as dangling edges; boundary resolution decides their fate. Removing
// an absent identifier is a no-op.
func (g *Graph) Remove(id string) {
	delete(g.nodes, id)
}

// Rename replaces the identifier of an existing node. When a node with the
// new identifier already exists the two merge: sizes and unit counts
// accumulate, and the external flag clears if either side was a real unit.
// All edges touching the old identifier are rewritten; edges that collapse
// into self-loops are dropped.
func (g *Graph) Rename(old, newID string) {
	if old == newID {
		return
	}

	n, ok := g.nodes[old]
	if !ok {
		return
	}

	delete(g.nodes, old)

	if existing, exists := g.nodes[newID]; exists {
		existing.Size += n.Size
		existing.Units += n.Units
		existing.External = existing.External && n.External
	} else {
		n.ID = newID
		g.nodes[newID] = n
	}

	for e := range g.edges {
		if e.Source != old && e.Target != old {
			continue
		}

		delete(g.edges, e)

		rewritten := e
		if rewritten.Source == old {
			rewritten.Source = newID
		}

		if rewritten.Target == old {
			rewritten.Target = newID
		}

		if rewritten.Source != rewritten.Target {
			g.edges[rewritten] = struct{}{}
		}
	}
}
