package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version   = "dev"
	gitCommit = "n/a"
	buildTime = "n/a"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("capi-log-collector %s\n", version)
			fmt.Printf("  commit:     %s\n", gitCommit)
			fmt.Printf("  built:      %s\n", buildTime)
			fmt.Printf("  go version: %s\n", runtime.Version())
		},
	}
}
