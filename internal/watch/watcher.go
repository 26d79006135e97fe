package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/luoweipeter/coffea/internal/scan"
)

// RunFunc is called each time the watcher triggers a reanalysis.
// It returns the analysis result for the status line.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the outcome of a single pipeline execution.
type RunResult struct {
	NodeCount  int
	EdgeCount  int
	OutputPath string
}

// Options configures the watch behaviour.
type Options struct {
	// Inputs are the artifacts to watch. Directories are watched
	// recursively, archives and class files individually.
	Inputs []string

	// Debounce is the quiet period before triggering a reanalysis.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, input := range opts.Inputs {
		abs, absErr := filepath.Abs(input)
		if absErr != nil {
			return fmt.Errorf("resolving input %q: %w", input, absErr)
		}

		info, statErr := os.Stat(abs)
		if statErr != nil {
			return fmt.Errorf("watching input %q: %w", abs, statErr)
		}

		if info.IsDir() {
			if err := addRecursive(watcher, abs); err != nil {
				return fmt.Errorf("watching directory %q: %w", abs, err)
			}
		} else {
			// Watching the parent directory catches the rename-over
			// pattern build tools use when rewriting archives.
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				return fmt.Errorf("watching file %q: %w", abs, err)
			}
		}
	}

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n",
		strings.Join(opts.Inputs, ", "), opts.Debounce)

	// Initial analysis.
	doRun(ctx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		doRun(ctx, opts, runFn, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) {
				continue
			}

			// If a new directory was created, watch it too.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single pipeline run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s -> ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s -> OK (%d nodes, %d edges)\n",
		now, trigger, result.NodeCount, result.EdgeCount)

	if result.OutputPath != "" {
		fmt.Fprintf(opts.Out, "  wrote %s\n", result.OutputPath)
	}
}

// addRecursive walks root and adds all directories to the watcher.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip hidden directories (e.g., .git).
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}

			return watcher.Add(path)
		}

		return nil
	})
}

// isRelevant filters out events on files the analysis does not read.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Ignore editor temporary files and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return isArtifact(event.Name)
}

// isArtifact reports whether path looks like a compiled-code artifact.
func isArtifact(path string) bool {
	switch scan.DetectByExtension(path) {
	case scan.SourceClassFile, scan.SourceArchive:
		return true
	default:
		return false
	}
}
