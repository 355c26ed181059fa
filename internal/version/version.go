package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build metadata, injected with -ldflags "-X" by release builds
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	BuiltBy = "source"
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the release version. Binaries installed with
// `go install module@version` carry no ldflags, so the module version
// recorded by the toolchain is used instead.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// GetFullVersion returns the version with commit, build date and toolchain
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, by: %s, %s %s/%s)",
		GetVersion(), Commit, Date, BuiltBy, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
