package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/luoweipeter/coffea/internal/logging"
	"github.com/luoweipeter/coffea/internal/output"
	"github.com/luoweipeter/coffea/internal/watch"
)

type watchOptions struct {
	analysisOptions

	outputPath string
	format     string
	debounce   time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <artifact>...",
		Short: "Reanalyze artifacts whenever they change",
		Long: `Watch monitors the given artifacts and reruns the analysis pipeline
each time they change, writing the serialized graph to the output file.

Rapid changes, such as a build tool rewriting many class files, are
debounced into a single rerun. Press Ctrl+C to stop.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outputPath, "output", "o", "", "output file path (required)")
	f.StringVarP(&opts.format, "format", "f", "gml", "serialization format: "+output.DefaultRegistry().AvailableFormats())
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before reanalyzing")

	registerAnalysisFlags(cmd, &opts.analysisOptions)

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, inputs []string, opts *watchOptions) error {
	logger := logging.FromContext(ctx)

	serializer, err := output.DefaultRegistry().Serializer(opts.format)
	if err != nil {
		return &ExitError{Code: exitConfig, Err: err}
	}

	runFn := func(runCtx context.Context) (*watch.RunResult, error) {
		res, runErr := runPipeline(runCtx, inputs, &opts.analysisOptions)
		if runErr != nil {
			return nil, runErr
		}

		data, serErr := serializer.Serialize(res.Graph)
		if serErr != nil {
			return nil, fmt.Errorf("serializing graph: %w", serErr)
		}

		w := output.NewFileWriter(opts.outputPath, output.WithLogger(logger))
		if writeErr := w.Write(data); writeErr != nil {
			return nil, fmt.Errorf("writing output: %w", writeErr)
		}

		return &watch.RunResult{
			NodeCount:  res.Graph.NodeCount(),
			EdgeCount:  res.Graph.EdgeCount(),
			OutputPath: opts.outputPath,
		}, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.Inputs = inputs
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.ErrOrStderr()

	logger.Debug("starting watcher", slog.Int("inputs", len(inputs)))

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: exitInternal, Err: err}
	}

	return nil
}
