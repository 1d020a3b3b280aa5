package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the version string.
//
// When installed via `go install ...@version`, returns the module version (e.g., "v0.1.0").
// For development builds, returns "devel-0.1.0+abc1234" with VCS revision if available.
func Version() string {
	return version(strings.TrimSpace(embeddedVersion), debug.ReadBuildInfo)
}

func version(base string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	info, ok := readBuildInfo()
	if !ok {
		return base
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var vcsRev, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				vcsRev = s.Value[:7]
			}
		case "vcs.modified":
			if s.Value == "true" {
				modified = "-dirty"
			}
		}
	}

	if vcsRev != "" {
		return "devel-" + base + "+" + vcsRev + modified
	}
	return "devel-" + base
}
