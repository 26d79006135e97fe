package cli

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/luoweipeter/coffea/internal/output"
)

type diffOptions struct {
	analysisOptions

	// Serialization format used for the textual comparison.
	format string

	// Unified diff context lines.
	contextLines int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <old-artifact> <new-artifact>",
		Short: "Compare the dependency graphs of two artifact versions",
		Long: `Diff analyzes two artifacts with the same rule chain and boundary
policy, serializes both graphs, and prints a unified diff of the
results.

Exit codes:
  0  No differences
  1  Error
  2  Invalid arguments
  4  Differences found`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "dot", "serialization format: "+output.DefaultRegistry().AvailableFormats())
	f.IntVar(&opts.contextLines, "context", 3, "unified diff context lines")

	registerAnalysisFlags(cmd, &opts.analysisOptions)

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, oldRef, newRef string, opts *diffOptions) error {
	serializer, err := output.DefaultRegistry().Serializer(opts.format)
	if err != nil {
		return &ExitError{Code: exitConfig, Err: err}
	}

	oldRes, err := runPipeline(ctx, []string{oldRef}, &opts.analysisOptions)
	if err != nil {
		return err
	}

	newRes, err := runPipeline(ctx, []string{newRef}, &opts.analysisOptions)
	if err != nil {
		return err
	}

	oldData, err := serializer.Serialize(oldRes.Graph)
	if err != nil {
		return &ExitError{Code: exitInternal, Err: fmt.Errorf("serializing %q: %w", oldRef, err)}
	}

	newData, err := serializer.Serialize(newRes.Graph)
	if err != nil {
		return &ExitError{Code: exitInternal, Err: fmt.Errorf("serializing %q: %w", newRef, err)}
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldData)),
		B:        difflib.SplitLines(string(newData)),
		FromFile: oldRef,
		ToFile:   newRef,
		Context:  opts.contextLines,
	})
	if err != nil {
		return &ExitError{Code: exitInternal, Err: fmt.Errorf("computing diff: %w", err)}
	}

	if text == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "no differences")
		return nil
	}

	if _, err := fmt.Fprint(cmd.OutOrStdout(), text); err != nil {
		return &ExitError{Code: exitInternal, Err: fmt.Errorf("writing diff: %w", err)}
	}

	return &ExitError{Code: 4, Err: fmt.Errorf("dependency graphs differ")}
}
