package mtbridge

// Version information, overridable at build time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/mtbridge.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the library name.
	Name = "mtbridge"

	// Description is a short description of the library.
	Description = "Translation engine façade with a C ABI for host runtimes"

	// Version is the semantic version of the library.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/mtbridge"
)

// Build information set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns Version with the short commit appended when known.
func FullVersion() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}

// UserAgent returns the user agent sent by HTTP-backed engines.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
