package version

// Version is the unbuild release, set at build time:
// go build -ldflags "-X github.com/vzt7/unbuild/internal/version.Version=v1.2.0".
var Version = "dev"

// GitCommit is the source revision the binary was built from.
var GitCommit = "unknown"

// String renders the version line printed by --version.
func String() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return "unbuild " + Version
	}
	return "unbuild " + Version + " (" + GitCommit + ")"
}
