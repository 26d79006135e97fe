package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DirectoryScanner walks a directory tree, scanning class files and nested
// archives.
type DirectoryScanner struct {
	archive *ArchiveScanner
	logger  *slog.Logger
}

// NewDirectoryScanner creates a directory scanner.
func NewDirectoryScanner(logger *slog.Logger) *DirectoryScanner {
	if logger == nil {
		logger = slog.Default()
	}

	return &DirectoryScanner{
		archive: NewArchiveScanner(logger),
		logger:  logger,
	}
}

// Scan walks root recursively. Class files that fail to parse are logged
// and skipped; walk errors abort the scan.
func (s *DirectoryScanner) Scan(ctx context.Context, root string) ([]Unit, error) {
	var units []Unit

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			// Skip hidden directories (e.g., .git).
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}

			return nil
		}

		ext := strings.ToLower(filepath.Ext(p))

		switch {
		case ext == ".class":
			if !isClassEntry(d.Name()) {
				return nil
			}

			data, readErr := os.ReadFile(p)
			if readErr != nil {
				return fmt.Errorf("reading %q: %w", p, readErr)
			}

			unit, parseErr := ParseClassFile(data)
			if parseErr != nil {
				s.logger.Warn("skipping class file",
					slog.String("path", p),
					slog.String("error", parseErr.Error()),
				)

				return nil
			}

			units = append(units, unit)
		case archiveExtensions[ext]:
			nested, archiveErr := s.archive.Scan(ctx, p)
			if archiveErr != nil {
				return archiveErr
			}

			units = append(units, nested...)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", root, err)
	}

	return units, nil
}
