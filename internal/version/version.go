// Package version exposes the build metadata stamped into the coffea
// binary at link time.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// Overridden via -ldflags on release builds.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata of the running binary, with the
// commit SHA abbreviated.
func GetInfo() Info {
	return Info{
		Version:   version,
		GitCommit: shortCommit(gitCommit),
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the metadata as a single line for the version command.
func (i Info) String() string {
	return fmt.Sprintf("coffea %s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// JSON renders the metadata as an indented JSON document.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

const shortSHALen = 7

func shortCommit(commit string) string {
	if len(commit) > shortSHALen {
		return commit[:shortSHALen]
	}

	return commit
}
