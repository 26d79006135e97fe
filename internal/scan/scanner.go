// Package scan discovers program units and their dependencies in compiled
// JVM artifacts. It supports single class files, archives (jar, war, ear,
// zip), and directories of either, with automatic source-type detection.
//
// Scanning produces [Unit] values only; graph construction, filtering, and
// output never touch artifact bytes.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Unit is one scanned program unit: a class identifier in dotted form, its
// class file size in bytes, and the identifiers of classes it references.
type Unit struct {
	Name string
	Size int
	Refs []string
}

// Scanner extracts units from one input location.
type Scanner interface {
	// Scan reads the artifact at path and returns its units. The context
	// allows aborting long directory or archive walks.
	Scan(ctx context.Context, path string) ([]Unit, error)
}

// SourceType identifies the kind of an input location.
type SourceType int

const (
	// SourceUnknown indicates the source type could not be determined.
	SourceUnknown SourceType = iota
	// SourceDirectory is a directory scanned recursively.
	SourceDirectory
	// SourceArchive is a jar/war/ear/zip archive.
	SourceArchive
	// SourceClassFile is a single .class file.
	SourceClassFile
)

// String returns a human-readable name for the source type.
func (s SourceType) String() string {
	switch s {
	case SourceDirectory:
		return "directory"
	case SourceArchive:
		return "archive"
	case SourceClassFile:
		return "class file"
	default:
		return "unknown"
	}
}

// archiveExtensions lists the archive suffixes coffea understands.
var archiveExtensions = map[string]bool{
	".jar": true,
	".war": true,
	".ear": true,
	".zip": true,
}

// Detect determines the source type of an existing path from its file mode
// and extension.
func Detect(path string) (SourceType, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceUnknown, fmt.Errorf("inspecting input %q: %w", path, err)
	}

	if info.IsDir() {
		return SourceDirectory, nil
	}

	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case archiveExtensions[ext]:
		return SourceArchive, nil
	case ext == ".class":
		return SourceClassFile, nil
	default:
		return SourceUnknown, fmt.Errorf("unsupported input %q: expected a directory, archive, or .class file", path)
	}
}

// DetectByExtension classifies path from its extension alone, without
// touching the filesystem. The path need not exist.
func DetectByExtension(path string) SourceType {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case archiveExtensions[ext]:
		return SourceArchive
	case ext == ".class":
		return SourceClassFile
	default:
		return SourceUnknown
	}
}

// MultiScanner implements Scanner by auto-detecting the source type and
// delegating to the appropriate specialised scanner.
type MultiScanner struct {
	directory *DirectoryScanner
	archive   *ArchiveScanner
	logger    *slog.Logger
}

// NewMultiScanner creates a MultiScanner with all source-type scanners
// initialised.
func NewMultiScanner(logger *slog.Logger) *MultiScanner {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiScanner{
		directory: NewDirectoryScanner(logger),
		archive:   NewArchiveScanner(logger),
		logger:    logger,
	}
}

// Scan auto-detects the source type of path and delegates.
func (m *MultiScanner) Scan(ctx context.Context, path string) ([]Unit, error) {
	st, err := Detect(path)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("scanning input",
		slog.String("path", path),
		slog.String("type", st.String()),
	)

	switch st {
	case SourceDirectory:
		return m.directory.Scan(ctx, path)
	case SourceArchive:
		return m.archive.Scan(ctx, path)
	case SourceClassFile:
		return scanClassFilePath(path)
	default:
		return nil, fmt.Errorf("unsupported source type for %q", path)
	}
}

// scanClassFilePath reads and parses one class file from disk.
func scanClassFilePath(path string) ([]Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading class file %q: %w", path, err)
	}

	unit, err := ParseClassFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing class file %q: %w", path, err)
	}

	return []Unit{unit}, nil
}
