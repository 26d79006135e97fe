package graph

import "fmt"

// BoundaryPolicy decides what happens to edges that cross outside the
// retained node set after filtering. Exactly one policy runs per pipeline.
type BoundaryPolicy int

const (
	// BoundaryCreateExternal synthesizes one placeholder node per distinct
	// edge target missing from the node set and keeps the edge pointing at
	// it. Edges whose source is missing are left untouched; only targets
	// are resolved to externals.
	BoundaryCreateExternal BoundaryPolicy = iota

	// BoundaryRemoveEdges deletes every edge whose source or target is not
	// present in the node set.
	BoundaryRemoveEdges
)

// String returns a human-readable name for the policy.
func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryCreateExternal:
		return "create-external-nodes"
	case BoundaryRemoveEdges:
		return "remove-external-connections"
	default:
		return "unknown"
	}
}

// Apply runs the policy on g. For BoundaryRemoveEdges the returned count is
// the number of edges removed; for BoundaryCreateExternal it is the number
// of distinct external nodes created. An unrecognized policy is a
// programming error and fails loudly.
func (p BoundaryPolicy) Apply(g *Graph) (int, error) {
	switch p {
	case BoundaryCreateExternal:
		return createExternalNodes(g), nil
	case BoundaryRemoveEdges:
		return removeExternalEdges(g), nil
	default:
		return 0, fmt.Errorf("unrecognized boundary policy %d", int(p))
	}
}

// removeExternalEdges deletes edges with at least one absent endpoint.
func removeExternalEdges(g *Graph) int {
	removed := 0

	for _, e := range g.Edges() {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			delete(g.edges, e)
			removed++
		}
	}

	return removed
}

// createExternalNodes materializes a placeholder node for every distinct
// missing edge target.
func createExternalNodes(g *Graph) int {
	created := 0

	for _, e := range g.Edges() {
		if g.Has(e.Target) {
			continue
		}

		if g.AddExternalNode(e.Target) {
			created++
		}
	}

	return created
}
