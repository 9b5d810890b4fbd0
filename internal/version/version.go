package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/lumen/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/lumen/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/lumen/internal/version.Date={{.Date}}
)

// String returns the version line printed by the CLI.
func String() string {
	return "lumen version " + Version + "\n  commit: " + Commit + "\n  built:  " + Date
}
