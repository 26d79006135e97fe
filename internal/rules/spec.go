// Package rules implements the ordered node-identifier filter/mapper chain.
//
// A chain is built once from an ordered list of [Spec] entries and applied in
// a single pass over the graph's node set. Order is a first-class invariant:
// a rewrite placed before an include test sees a different identifier than
// one placed after it, so two chains with the same rules in different order
// are different pipelines.
package rules

import "fmt"

// Kind identifies one of the closed set of rule operations.
type Kind int

const (
	// KindIncludeRegexp keeps nodes whose identifier matches a
	// start-anchored regular expression.
	KindIncludeRegexp Kind = iota
	// KindExcludeRegexp drops nodes whose identifier matches a
	// start-anchored regular expression.
	KindExcludeRegexp
	// KindIncludePrefix keeps nodes whose identifier has a literal prefix.
	KindIncludePrefix
	// KindExcludePrefix drops nodes whose identifier has a literal prefix.
	KindExcludePrefix
	// KindIncludeList keeps nodes whose identifier is in a configured set.
	KindIncludeList
	// KindExcludeList drops nodes whose identifier is in a configured set.
	KindExcludeList
	// KindRemovePrefix rewrites identifiers by removing the first
	// occurrence of a literal string.
	KindRemovePrefix
	// KindExtractPosition rewrites identifiers to a single dot-separated
	// segment at a zero-based index.
	KindExtractPosition
)

// String returns the CLI flag name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIncludeRegexp:
		return "include-regexp"
	case KindExcludeRegexp:
		return "exclude-regexp"
	case KindIncludePrefix:
		return "include-prefix"
	case KindExcludePrefix:
		return "exclude-prefix"
	case KindIncludeList:
		return "include-list"
	case KindExcludeList:
		return "exclude-list"
	case KindRemovePrefix:
		return "remove-prefix"
	case KindExtractPosition:
		return "extract-position"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec is one declared rule configuration entry: an operation kind and its
// raw parameter as given on the command line. The final chain order is
// exactly the order the entries were declared.
type Spec struct {
	Kind  Kind
	Param string
}

// String renders the entry as it was declared.
func (s Spec) String() string {
	return fmt.Sprintf("--%s=%s", s.Kind, s.Param)
}
