package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	origVersion, origRead := Version, readBuildInfo
	t.Cleanup(func() { Version, readBuildInfo = origVersion, origRead })

	tests := []struct {
		name    string
		version string
		module  string
		want    string
	}{
		{"ldflags win", "1.4.0", "v9.9.9", "1.4.0"},
		{"module version fallback", "dev", "v0.3.1", "v0.3.1"},
		{"devel build", "dev", "(devel)", "dev"},
		{"empty", "", "", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version
			readBuildInfo = func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{Main: debug.Module{Version: tt.module}}, true
			}
			if got := GetVersion(); got != tt.want {
				t.Errorf("GetVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetFullVersion(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	Version, Commit = "2.0.0", "abc123"
	full := GetFullVersion()
	if !strings.HasPrefix(full, "2.0.0 (commit: abc123") {
		t.Errorf("Unexpected full version %q", full)
	}
}
