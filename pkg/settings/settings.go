// Package settings provides build metadata and per-run parameters shared by
// the gridx CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "gridx"

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

// Run holds configuration settings for a single execution of the application:
// logging verbosity, color handling, and the dataset path under inspection.
type Run struct {
	MinLogLevel int8
	DatasetPath string
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns a Run with the defaults used when gridx is invoked
// from the command line.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
