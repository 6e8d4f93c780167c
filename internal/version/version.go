// Package version provides centralized version management for neo, with
// build-time injection and semantic-version parsing.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information, overridable at compile time via -ldflags.
var (
	// Version is the semantic version of the application.
	Version = "0.4.0"

	// GitCommit is the git commit hash the binary was built from.
	GitCommit = "unknown"

	// BuildDate is the date the binary was built.
	BuildDate = "unknown"
)

// Info is the full version report.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the current build's version info.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the info as the multi-line report printed by the version
// command.
func (i Info) String() string {
	return fmt.Sprintf("neo v%s\n  commit: %s\n  built:  %s\n  go:     %s (%s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// Parse returns the running version as a semver value.
func Parse() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	return v, nil
}

// AtLeast reports whether the running version satisfies the given minimum.
// Returns false for unparsable inputs.
func AtLeast(minimum string) bool {
	current, err := Parse()
	if err != nil {
		return false
	}
	min, err := semver.NewVersion(minimum)
	if err != nil {
		return false
	}
	return !current.LessThan(min)
}
