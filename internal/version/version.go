// Package version holds the CLI version string. Default is "dev"; release
// builds can set it via: go build -ldflags "-X autocommit/internal/version.Version=v1.0.0"
package version

// Version is the autocommit CLI version. Set at build time for releases.
var Version = "dev"

// Commit is the short git commit hash (e.g. 7 chars). Set at build time for
// dev builds via ldflags.
var Commit = ""

// String returns the version string for display. For dev builds with Commit
// set, returns "dev (abc1234)"; otherwise returns Version.
func String() string {
	if Version != "dev" || Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
