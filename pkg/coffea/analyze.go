// Package coffea provides a public Go API for analyzing dependencies in
// compiled JVM artifacts.
//
// This package exposes the coffea analysis pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := coffea.Analyze(ctx, []string{"app.jar"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(result.Output))
//
// With options:
//
//	result, err := coffea.Analyze(ctx, []string{"build/classes"},
//	    coffea.WithMode("package"),
//	    coffea.WithFormat("dot"),
//	    coffea.WithRules(
//	        coffea.RemovePrefix("com.example."),
//	        coffea.IncludePrefix("api."),
//	    ),
//	)
package coffea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/luoweipeter/coffea/internal/graph"
	"github.com/luoweipeter/coffea/internal/output"
	"github.com/luoweipeter/coffea/internal/rules"
	"github.com/luoweipeter/coffea/internal/scan"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Rule is one entry in the ordered filter/mapper chain. Construct rules
// with the package-level rule functions; the slice order passed to
// WithRules is the application order.
type Rule struct {
	spec rules.Spec
}

// IncludeRegexp keeps nodes whose identifier matches a start-anchored
// regular expression.
func IncludeRegexp(pattern string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindIncludeRegexp, Param: pattern}}
}

// ExcludeRegexp drops nodes whose identifier matches a start-anchored
// regular expression.
func ExcludeRegexp(pattern string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindExcludeRegexp, Param: pattern}}
}

// IncludePrefix keeps nodes whose identifier starts with prefix.
func IncludePrefix(prefix string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindIncludePrefix, Param: prefix}}
}

// ExcludePrefix drops nodes whose identifier starts with prefix.
func ExcludePrefix(prefix string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindExcludePrefix, Param: prefix}}
}

// IncludeList keeps nodes whose identifier appears in the comma-separated
// list.
func IncludeList(list string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindIncludeList, Param: list}}
}

// ExcludeList drops nodes whose identifier appears in the comma-separated
// list.
func ExcludeList(list string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindExcludeList, Param: list}}
}

// RemovePrefix rewrites identifiers by removing the first occurrence of
// prefix.
func RemovePrefix(prefix string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindRemovePrefix, Param: prefix}}
}

// ExtractPosition rewrites identifiers to their dot-separated segment at
// the given zero-based position.
func ExtractPosition(position string) Rule {
	return Rule{spec: rules.Spec{Kind: rules.KindExtractPosition, Param: position}}
}

// Option configures the analysis pipeline. Use the With* functions to
// create Options.
type Option func(*options)

type options struct {
	mode           string
	nodeSize       string
	format         string
	removeExternal bool
	ruleList       []Rule
	logger         *slog.Logger
}

// WithMode sets the aggregation mode: "class" (default) or "package".
func WithMode(mode string) Option { return func(o *options) { o.mode = mode } }

// WithNodeSize sets the node sizing metric carried on serialized nodes:
// "class-size" or "unit-count".
func WithNodeSize(metric string) Option { return func(o *options) { o.nodeSize = metric } }

// WithFormat sets the serialization format (default: "gml").
func WithFormat(format string) Option { return func(o *options) { o.format = format } }

// WithRemoveExternalConnections drops edges crossing the retained node set
// instead of creating external placeholder nodes.
func WithRemoveExternalConnections() Option {
	return func(o *options) { o.removeExternal = true }
}

// WithRules sets the ordered rule chain. Rules apply in slice order.
func WithRules(ruleList ...Rule) Option {
	return func(o *options) { o.ruleList = ruleList }
}

// WithLogger sets a logger for pipeline diagnostics. By default all
// output is discarded.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// RuleCount reports how many identifiers one rule affected: drops for
// filters, processed identifiers for mappers.
type RuleCount struct {
	// Rule is the rule's diagnostic string, e.g. "include-prefix(api.)".
	Rule string

	// Count is the rule's final counter value.
	Count int
}

// Result holds the output of a successful analysis.
type Result struct {
	// Output is the serialized graph in the configured format.
	Output []byte

	// RuleCounts holds per-rule counters in declaration order.
	RuleCounts []RuleCount

	// NodeCount is the number of nodes in the final graph, external
	// placeholders included.
	NodeCount int

	// EdgeCount is the number of edges in the final graph.
	EdgeCount int

	// UnitCount is the number of program units scanned before aggregation.
	UnitCount int

	// BoundaryCount is the boundary policy's affected count: edges removed
	// or external nodes created.
	BoundaryCount int
}

// Analyze scans the given artifacts, applies the configured rule chain,
// resolves dangling edges, and returns the serialized dependency graph.
//
// Inputs can be directories, archives (jar, war, ear, zip), or single
// .class files.
func Analyze(ctx context.Context, inputs []string, opts ...Option) (*Result, error) {
	if len(inputs) == 0 {
		return nil, errors.New("at least one input artifact is required")
	}

	// Validate every input before building anything.
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			return nil, fmt.Errorf("input %q: %w", input, err)
		}
	}

	o := &options{
		mode:   "class",
		format: "gml",
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	granularity, err := graph.ParseGranularity(o.mode)
	if err != nil {
		return nil, err
	}

	metric, err := graph.ParseSizeMetric(o.nodeSize)
	if err != nil {
		return nil, err
	}

	serializer, err := output.DefaultRegistry().Serializer(o.format)
	if err != nil {
		return nil, err
	}

	specs := make([]rules.Spec, 0, len(o.ruleList))
	for _, r := range o.ruleList {
		specs = append(specs, r.spec)
	}

	chain, err := rules.Build(specs, o.logger)
	if err != nil {
		return nil, err
	}

	scanner := scan.NewMultiScanner(o.logger)

	var units []scan.Unit

	for _, input := range inputs {
		scanned, scanErr := scanner.Scan(ctx, input)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning %q: %w", input, scanErr)
		}

		units = append(units, scanned...)
	}

	factory := graph.NewNodeFactory(granularity, metric)
	g := graph.New()

	for _, unit := range units {
		factory.AddUnit(g, unit.Name, unit.Size, unit.Refs)
	}

	chain.Apply(g)
	chain.Report(o.logger)

	ruleCounts := make([]RuleCount, 0, chain.Len())
	for _, r := range chain.Rules() {
		ruleCounts = append(ruleCounts, RuleCount{Rule: r.String(), Count: r.Count()})
	}

	policy := graph.BoundaryCreateExternal
	if o.removeExternal {
		policy = graph.BoundaryRemoveEdges
	}

	affected, err := policy.Apply(g)
	if err != nil {
		return nil, err
	}

	data, err := serializer.Serialize(g)
	if err != nil {
		return nil, fmt.Errorf("serializing graph: %w", err)
	}

	return &Result{
		Output:        data,
		RuleCounts:    ruleCounts,
		NodeCount:     g.NodeCount(),
		EdgeCount:     g.EdgeCount(),
		UnitCount:     len(units),
		BoundaryCount: affected,
	}, nil
}
