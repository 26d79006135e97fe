// Package cli implements the cobra command tree for coffea.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luoweipeter/coffea/internal/config"
	"github.com/luoweipeter/coffea/internal/logging"
)

// Process exit codes.
const (
	exitOK        = 0
	exitInternal  = 1
	exitConfig    = 2
	exitInput     = 3
	exitInterrupt = 130
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return exitInterrupt
		}

		return exitInternal
	}

	if ctx.Err() != nil {
		return exitInterrupt
	}

	return exitOK
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "coffea",
		Short: "Analyze dependencies in compiled JVM artifacts",
		Long: `coffea scans compiled JVM artifacts (class files, jars, wars, ears,
or directories of either) and produces a class or package dependency
graph.

An ordered chain of filter and mapper rules shapes the graph before it
is written: filters drop nodes by regexp, prefix, or list membership,
and mappers rewrite node identifiers. Dangling edges left behind by
filtering are resolved by a boundary policy, and the result goes to
exactly one sink: a serialization format or an interactive plot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: exitConfig, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .coffea.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: exitConfig, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newVersionCommand(),
		newAnalyzeCommand(),
		newDiffCommand(),
		newWatchCommand(),
		newFormatsCommand(),
		newCompletionCommand(),
	)

	return cmd
}
