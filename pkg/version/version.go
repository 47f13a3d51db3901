// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// These variables are typically injected at build time using -ldflags
// version holds the current version of the recon engine. It is set at build time.
// commit holds the current git commit hash of the recon engine. It is set at build time.
// buildDate holds the build date of the recon engine in RFC3339 format. It is set at build time.
// tag holds the git tag associated with the build. It is set at build time.
var (
	version   = "dev"                  // Version holds the current version of the recon engine.
	commit    = ""                     // Commit holds the current version commit of the recon engine.
	buildDate = "1970-01-01T00:00:00Z" // BuildDate holds the build date of the recon engine.
	tag       = ""                     // Tag holds the git tag of the build.
)

// Exported aliases of the build-time variables, for callers that want the
// raw values rather than the composed BuildInfo struct.
var (
	Version   = version
	Commit    = commit
	BuildDate = buildDate
)

// StartDate records when this process started, used to compute uptime.
var StartDate = time.Now()

// BuildInfo holds metadata information about the application build, including
// the semantic version, commit hash, build date, git tag, Go version, compiler,
// and platform details.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	Tag       string
	GoVersion string
	Compiler  string
	Platform  string
}

// String returns the version as a string.
func (v BuildInfo) String() string {
	return v.Version
}

// GetVersion returns version information as a Struct.
func GetVersion() BuildInfo {
	var str string

	if commit != "" && tag != "" {
		str = tag
	} else {
		str = "v" + version
		if len(commit) >= 7 {
			str += "+" + commit[:7]
		} else {
			str += "+unknown"
		}
	}

	return BuildInfo{
		Version:   str,
		Commit:    commit,
		BuildDate: buildDate,
		Tag:       tag,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Get is an alias for GetVersion, kept for callers that prefer the shorter
// name (e.g. a `version` subcommand).
func Get() BuildInfo {
	return GetVersion()
}

// Info returns a one-line human-readable summary of the build, the form
// printed by `recon version`.
func Info() string {
	v := GetVersion()
	return fmt.Sprintf("reconcore %s (commit %s, built %s, %s, %s/%s)",
		v.Version, v.Commit, v.BuildDate, v.GoVersion, runtime.GOOS, runtime.GOARCH)
}

// CheckNewVersion checks if a new version is available.
func CheckNewVersion() bool {
	// TODO: check for new version only if the current version is not "dev"
	// and also not a pre-release
	return false
}
