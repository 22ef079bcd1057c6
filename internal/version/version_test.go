package version

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	info := Resolve()
	if info.Version == "" {
		t.Fatal("version should never be empty")
	}
	if !strings.HasPrefix(info.Go, "go") {
		t.Fatalf("unexpected go version: %q", info.Go)
	}
}

func TestStringWithCommit(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version = "v0.3.0"
	Commit = "4f2a9c1d7e88b0a1c2d3"
	if got := String(); got != "v0.3.0 (4f2a9c1d7e88)" {
		t.Fatalf("string mismatch: %q", got)
	}
}

func TestShortCommit(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": "", "abc": "abc", "0123456789abcdef": "0123456789ab"} {
		if got := shortCommit(in); got != want {
			t.Fatalf("shortCommit(%q): got %q want %q", in, got, want)
		}
	}
}
