// Package settings provides build metadata, runtime configuration, and
// context helpers used across the colx CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "colx"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// InputSettings records where the collection document came from.
type InputSettings struct {
	Path      string
	FromStdin bool
}

// FilterSettings holds the resolved filter options for a run. Values are
// the raw flag/config strings; pkg/match parses them.
type FilterSettings struct {
	Query       string
	Mode        string
	Sensitivity string
	Expr        string
	DebounceMS  int
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	Filter      FilterSettings
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the default settings for a CLI run: info logging,
// contains/base matching, 150ms debounce, color on, exit on error.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Filter: FilterSettings{
			Mode:        "contains",
			Sensitivity: "base",
			DebounceMS:  150,
		},
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
