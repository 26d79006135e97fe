package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/luoweipeter/coffea/internal/graph"
	"github.com/luoweipeter/coffea/internal/logging"
	"github.com/luoweipeter/coffea/internal/rules"
	"github.com/luoweipeter/coffea/internal/scan"
)

// analysisOptions holds the graph construction flags shared by analyze,
// diff, and watch.
type analysisOptions struct {
	// Aggregation.
	mode     string
	nodeSize string

	// Boundary resolution.
	removeExternal bool

	// Rule entries in declaration order.
	ruleSpecs []rules.Spec
}

// pipelineResult holds the outputs of one analysis run.
type pipelineResult struct {
	Graph  *graph.Graph
	Metric graph.SizeMetric

	// UnitCount is the number of program units scanned before aggregation.
	UnitCount int

	// BoundaryCount is the policy's affected count: edges removed or
	// external nodes created.
	BoundaryCount int
}

// runPipeline executes the full artifact-to-graph pipeline: scan the
// inputs, build nodes at the configured granularity, apply the rule chain
// in declaration order, and resolve dangling edges with the boundary
// policy. This is the shared core used by the analyze, diff, and watch
// commands.
func runPipeline(ctx context.Context, inputs []string, opts *analysisOptions) (*pipelineResult, error) {
	logger := logging.FromContext(ctx)

	// 1. Validate inputs before doing any work.
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			return nil, &ExitError{Code: exitInput, Err: fmt.Errorf("input %q: %w", input, err)}
		}
	}

	// 2. Parse aggregation settings.
	granularity, err := graph.ParseGranularity(opts.mode)
	if err != nil {
		return nil, &ExitError{Code: exitConfig, Err: err}
	}

	metric, err := graph.ParseSizeMetric(opts.nodeSize)
	if err != nil {
		return nil, &ExitError{Code: exitConfig, Err: err}
	}

	// 3. Build the rule chain. A malformed rule parameter is a
	// configuration error, caught before any artifact is read.
	chain, err := rules.Build(opts.ruleSpecs, logger)
	if err != nil {
		return nil, &ExitError{Code: exitConfig, Err: err}
	}

	policy := graph.BoundaryCreateExternal
	if opts.removeExternal {
		policy = graph.BoundaryRemoveEdges
	}

	// 4. Scan all inputs.
	scanner := scan.NewMultiScanner(logger)

	var units []scan.Unit

	for _, input := range inputs {
		logger.Info("scanning input", slog.String("path", input))

		scanned, scanErr := scanner.Scan(ctx, input)
		if scanErr != nil {
			return nil, &ExitError{Code: exitInternal, Err: fmt.Errorf("scanning %q: %w", input, scanErr)}
		}

		units = append(units, scanned...)
	}

	// 5. Build the base graph.
	factory := graph.NewNodeFactory(granularity, metric)
	g := graph.New()

	for _, unit := range units {
		factory.AddUnit(g, unit.Name, unit.Size, unit.Refs)
	}

	logger.Info("graph constructed",
		slog.String("mode", granularity.String()),
		slog.Int("units", len(units)),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("edges", g.EdgeCount()),
	)

	// 6. Apply the rule chain and report per-rule counters.
	chain.Apply(g)
	chain.Report(logger)

	// 7. Resolve dangling edges.
	affected, err := policy.Apply(g)
	if err != nil {
		return nil, &ExitError{Code: exitInternal, Err: err}
	}

	logger.Info("boundary resolved",
		slog.String("policy", policy.String()),
		slog.Int("affected", affected),
	)

	return &pipelineResult{
		Graph:         g,
		Metric:        metric,
		UnitCount:     len(units),
		BoundaryCount: affected,
	}, nil
}
