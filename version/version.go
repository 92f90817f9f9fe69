// Package version reports the version of the polyvoice binaries.
package version

import "runtime/debug"

// Version can be set at build time:
// go build -ldflags "-X github.com/vsariola/polyvoice/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, with a "-dirty"
// suffix for modified trees, or empty if unknown.
var Hash = vcsHash()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "(devel)"
}()

func vcsHash() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}
