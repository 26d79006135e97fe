package scan

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
)

// ArchiveScanner scans jar/war/ear/zip archives for class files.
type ArchiveScanner struct {
	logger *slog.Logger
}

// NewArchiveScanner creates an archive scanner.
func NewArchiveScanner(logger *slog.Logger) *ArchiveScanner {
	if logger == nil {
		logger = slog.Default()
	}

	return &ArchiveScanner{logger: logger}
}

// Scan parses every .class entry of the archive at archivePath. Unparsable
// entries are logged and skipped; a broken entry must not discard the rest
// of the archive.
func (s *ArchiveScanner) Scan(ctx context.Context, archivePath string) ([]Unit, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %q: %w", archivePath, err)
	}
	defer rc.Close()

	var units []Unit

	for _, entry := range rc.File {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !isClassEntry(entry.Name) {
			continue
		}

		unit, entryErr := s.scanEntry(entry)
		if entryErr != nil {
			s.logger.Warn("skipping archive entry",
				slog.String("archive", archivePath),
				slog.String("entry", entry.Name),
				slog.String("error", entryErr.Error()),
			)

			continue
		}

		units = append(units, unit)
	}

	return units, nil
}

// scanEntry reads and parses one archive entry.
func (s *ArchiveScanner) scanEntry(entry *zip.File) (Unit, error) {
	f, err := entry.Open()
	if err != nil {
		return Unit{}, fmt.Errorf("opening entry: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Unit{}, fmt.Errorf("reading entry: %w", err)
	}

	return ParseClassFile(data)
}

// isClassEntry reports whether an archive entry holds a scannable class.
// Module descriptors carry no dependency information worth a node.
func isClassEntry(name string) bool {
	if !strings.HasSuffix(name, ".class") {
		return false
	}

	return path.Base(name) != "module-info.class"
}
