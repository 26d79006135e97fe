package graph

import (
	"fmt"
	"strings"
)

// Granularity selects the aggregation level for graph nodes.
type Granularity int

const (
	// GranularityClass produces one node per class.
	GranularityClass Granularity = iota
	// GranularityPackage aggregates classes into one node per package.
	GranularityPackage
)

// String returns the CLI name of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityClass:
		return "class"
	case GranularityPackage:
		return "package"
	default:
		return "unknown"
	}
}

// ParseGranularity converts a CLI mode string to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "class":
		return GranularityClass, nil
	case "package":
		return GranularityPackage, nil
	default:
		return GranularityClass, fmt.Errorf("invalid mode %q: must be one of class, package", s)
	}
}

// SizeMetric selects the secondary node sizing metric. The pipeline passes
// it through to the plot sink; it never affects filtering or boundary
// resolution.
type SizeMetric int

const (
	// SizeNone disables node sizing.
	SizeNone SizeMetric = iota
	// SizeClassBytes sizes nodes by accumulated class file bytes.
	SizeClassBytes
	// SizeUnitCount sizes nodes by the number of merged program units.
	SizeUnitCount
)

// String returns the CLI name of the size metric.
func (m SizeMetric) String() string {
	switch m {
	case SizeNone:
		return "none"
	case SizeClassBytes:
		return "class-size"
	case SizeUnitCount:
		return "unit-count"
	default:
		return "unknown"
	}
}

// ParseSizeMetric converts a CLI node-size string to a SizeMetric.
// The empty string means no sizing.
func ParseSizeMetric(s string) (SizeMetric, error) {
	switch s {
	case "", "none":
		return SizeNone, nil
	case "class-size":
		return SizeClassBytes, nil
	case "unit-count":
		return SizeUnitCount, nil
	default:
		return SizeNone, fmt.Errorf("invalid node-size %q: must be one of class-size, unit-count", s)
	}
}

// Value returns the metric's value for a node, or 0 for SizeNone.
func (m SizeMetric) Value(n *Node) int {
	switch m {
	case SizeClassBytes:
		return n.Size
	case SizeUnitCount:
		return n.Units
	default:
		return 0
	}
}

// DefaultPackage is the node identifier used for classes without a package.
const DefaultPackage = "(default)"

// NodeFactory turns scanned program units into graph nodes at the configured
// granularity, carrying an optional size metric for downstream sinks.
type NodeFactory struct {
	granularity Granularity
	metric      SizeMetric
}

// NewNodeFactory creates a factory for the given granularity and size metric.
func NewNodeFactory(granularity Granularity, metric SizeMetric) *NodeFactory {
	return &NodeFactory{granularity: granularity, metric: metric}
}

// Granularity returns the configured aggregation level.
func (f *NodeFactory) Granularity() Granularity { return f.granularity }

// Metric returns the configured size metric.
func (f *NodeFactory) Metric() SizeMetric { return f.metric }

// Identifier maps a class name to the node identifier for the configured
// granularity.
func (f *NodeFactory) Identifier(className string) string {
	if f.granularity == GranularityPackage {
		return packageOf(className)
	}

	return className
}

// AddUnit records one scanned class and its references in g. At package
// granularity, the class and its references collapse to their packages;
// intra-package references disappear as self-loops.
func (f *NodeFactory) AddUnit(g *Graph, className string, sizeBytes int, refs []string) {
	id := f.Identifier(className)
	g.AddNode(id, sizeBytes)

	for _, ref := range refs {
		g.AddEdge(id, f.Identifier(ref))
	}
}

// packageOf strips the final segment from a dotted class name. Classes in
// the default package map to DefaultPackage.
func packageOf(className string) string {
	idx := strings.LastIndex(className, ".")
	if idx < 0 {
		return DefaultPackage
	}

	return className[:idx]
}
