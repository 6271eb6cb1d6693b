package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// BinaryVersion is set at build time via -ldflags. Defaults to "dev".
var BinaryVersion = "dev"

// GitCommit and BuildDate are set at build time via -ldflags.
var (
	GitCommit = ""
	BuildDate = ""
)

// Info is the extended view printed by `ktlint-review version --extended`.
type Info struct {
	Version       string `json:"version"`
	ModuleVersion string `json:"module_version,omitempty"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildDate     string `json:"build_date,omitempty"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
}

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Collect gathers the build metadata for the running binary.
func Collect() Info {
	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	return Info{
		Version:       BinaryVersion,
		ModuleVersion: ModuleVersion(),
		GitCommit:     commit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}
