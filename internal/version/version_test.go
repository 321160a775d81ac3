package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfoUsesPresetValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	Version = "1.2.3"
	Commit = "abc1234"
	Date = "2026-01-15"

	info := Info()

	for _, want := range []string{"healthdash", "1.2.3", "abc1234", "2026-01-15"} {
		if !strings.Contains(info, want) {
			t.Errorf("expected %q in version info %q", want, info)
		}
	}
	if !strings.Contains(info, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("expected platform in version info %q", info)
	}
}

func TestInfoNeverEmpty(t *testing.T) {
	if Info() == "" {
		t.Error("expected non-empty version info")
	}
}
