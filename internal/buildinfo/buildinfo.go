// Package buildinfo carries version stamps injected with -ldflags, e.g.
//
//	go build -ldflags "-X frost/internal/buildinfo.Version=v0.3.0 -X frost/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "runtime/debug"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// Short returns a compact build identifier for the window title and logs.
//
// An explicit Version wins, then an explicit Commit, then the VCS revision the
// Go toolchain embedded in the binary.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	if rev, dirty := vcsRevision(); rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if dirty {
			rev += "+"
		}
		return rev
	}
	return "dev"
}

func vcsRevision() (rev string, dirty bool) {
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return "", false
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return rev, dirty
}
