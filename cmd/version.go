package cmd

import "fmt"

// Version information (injected at build time via ldflags).
// Example: go build -ldflags "-X github.com/carebyte/carebot/cmd.AppVersion=1.2.3"
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// runVersion displays version information.
func runVersion() {
	fmt.Printf("carebot v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}
