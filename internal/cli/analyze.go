package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/luoweipeter/coffea/internal/logging"
	"github.com/luoweipeter/coffea/internal/output"
	"github.com/luoweipeter/coffea/internal/plot"
)

type analyzeOptions struct {
	analysisOptions

	// Serialization sink.
	outputPath string
	format     string

	// Plot sink.
	plot      bool
	plotTitle string
	noBrowser bool
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <artifact>...",
		Short: "Build a dependency graph from compiled artifacts",
		Long: `Analyze scans one or more compiled artifacts and writes the resulting
dependency graph to exactly one sink.

With --output the graph is serialized to a file (or stdout, with -o -)
in the chosen format; with --plot it opens as an interactive
force-directed chart in the browser. Exactly one of the two must be
selected.

Rule flags are applied in the order they appear on the command line:

  coffea analyze app.jar -o deps.gml \
    --remove-prefix com.example. \
    --include-prefix api.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outputPath, "output", "o", "", "output file path, or - for stdout")
	f.StringVarP(&opts.format, "format", "f", "gml", "serialization format: "+output.DefaultRegistry().AvailableFormats())
	f.BoolVar(&opts.plot, "plot", false, "open the graph as an interactive chart instead of serializing")
	f.StringVar(&opts.plotTitle, "title", "", "chart title for --plot")
	f.BoolVar(&opts.noBrowser, "no-browser", false, "with --plot, write the chart without opening a browser")

	registerAnalysisFlags(cmd, &opts.analysisOptions)

	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, inputs []string, opts *analyzeOptions) error {
	if err := validateSinkFlags(opts); err != nil {
		return &ExitError{Code: exitConfig, Err: err}
	}

	logger := logging.FromContext(ctx)

	res, err := runPipeline(ctx, inputs, &opts.analysisOptions)
	if err != nil {
		return err
	}

	if opts.plot {
		return runPlotSink(res, opts, logger)
	}

	return runSerializeSink(cmd.OutOrStdout(), res, opts, logger)
}

// validateSinkFlags enforces the one-sink contract: exactly one of the
// serialize and plot sinks must be selected.
func validateSinkFlags(opts *analyzeOptions) error {
	if opts.plot && opts.outputPath != "" {
		return fmt.Errorf("--plot and --output are mutually exclusive: choose one sink")
	}

	if !opts.plot && opts.outputPath == "" {
		return fmt.Errorf("exactly one sink is required: pass --output <path> or --plot")
	}

	if !opts.plot && opts.plotTitle != "" {
		return fmt.Errorf("--title requires --plot")
	}

	if !opts.plot && opts.noBrowser {
		return fmt.Errorf("--no-browser requires --plot")
	}

	return nil
}

// runSerializeSink writes the graph in the chosen format to the declared
// output path; "-" names stdout.
func runSerializeSink(stdout io.Writer, res *pipelineResult, opts *analyzeOptions, logger *slog.Logger) error {
	serializer, err := output.DefaultRegistry().Serializer(opts.format)
	if err != nil {
		return &ExitError{Code: exitConfig, Err: err}
	}

	data, err := serializer.Serialize(res.Graph)
	if err != nil {
		return &ExitError{Code: exitInternal, Err: fmt.Errorf("serializing graph: %w", err)}
	}

	var w output.Writer = output.NewFileWriter(opts.outputPath, output.WithLogger(logger))
	if opts.outputPath == "-" {
		w = output.NewStdoutWriter(stdout)
	}

	if err := w.Write(data); err != nil {
		return &ExitError{Code: exitInternal, Err: fmt.Errorf("writing output: %w", err)}
	}

	if opts.outputPath != "-" {
		logger.Info("graph written",
			slog.String("path", opts.outputPath),
			slog.String("format", opts.format),
			slog.Int("nodes", res.Graph.NodeCount()),
			slog.Int("edges", res.Graph.EdgeCount()),
		)
	}

	return nil
}

// runPlotSink renders the interactive chart and opens it in the browser.
func runPlotSink(res *pipelineResult, opts *analyzeOptions, logger *slog.Logger) error {
	path, err := plot.RenderTemp(res.Graph, plot.Options{
		Title:  opts.plotTitle,
		Metric: res.Metric,
	})
	if err != nil {
		return &ExitError{Code: exitInternal, Err: err}
	}

	logger.Info("plot rendered",
		slog.String("path", path),
		slog.Int("nodes", res.Graph.NodeCount()),
		slog.Int("edges", res.Graph.EdgeCount()),
	)

	if opts.noBrowser {
		return nil
	}

	if err := plot.Open(path); err != nil {
		return &ExitError{Code: exitInternal, Err: err}
	}

	return nil
}
