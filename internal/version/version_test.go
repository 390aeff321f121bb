package version

import (
	"strings"
	"testing"
)

func TestFullIncludesBuildInfo(t *testing.T) {
	got := Full()
	for _, want := range []string{Name, Version, "commit:" + Commit, "go"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}
