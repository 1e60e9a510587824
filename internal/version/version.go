/*
Package version reports build metadata for intent-rank.

The variables are set with ldflags at build time, for example:

	go build -ldflags "-X github.com/khanglvm/intent-rank/internal/version.Version=v0.3.0"

Unset values describe a development build.
*/
package version

var (
	// Version is the release tag (e.g., v0.3.0)
	Version = "dev"
	// Commit is the short git commit hash
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// Info is the build metadata shown by 'intent-rank version' and returned
// by the JSON-RPC initialize method.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the metadata of the running binary.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// IsDev reports whether this is an unreleased build.
func (i Info) IsDev() bool {
	return i.Version == "dev" || i.Version == ""
}

func (i Info) String() string {
	if i.IsDev() {
		return "dev (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}
