package buildinfo

import "testing"

func TestShortPrefersVersionThenCommit(t *testing.T) {
	v, c := Version, Commit
	defer func() { Version, Commit = v, c }()

	Version, Commit = "dev", "unknown"
	if Short() != "dev" {
		t.Fatalf("Short = %q", Short())
	}
	Commit = "abc123"
	if Short() != "abc123" {
		t.Fatalf("Short = %q", Short())
	}
	Version = "v1.2.0"
	if Short() != "v1.2.0" {
		t.Fatalf("Short = %q", Short())
	}
}

func TestLDFlags(t *testing.T) {
	if got, want := LDFlags("06_sdcard", ""), "-X jcboard/internal/buildinfo.Example=06_sdcard"; got != want {
		t.Fatalf("LDFlags = %q, want %q", got, want)
	}
}
