package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldC := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = oldV, oldC })

	Version, GitCommit = "v1.0.0", "unknown"
	if got := String(); got != "unbuild v1.0.0" {
		t.Fatalf("unexpected version line %q", got)
	}
	GitCommit = "abc123"
	if got := String(); got != "unbuild v1.0.0 (abc123)" {
		t.Fatalf("unexpected version line %q", got)
	}
}
