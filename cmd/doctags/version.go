package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of doctags (overridden by ldflags at build time)
	Version = "0.1.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
	// Commit is the git revision the binary was built from (optional ldflag)
	Commit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		commit := resolveCommitHash()
		if jsonOutput {
			result := map[string]string{
				"version": Version,
				"build":   Build,
			}
			if commit != "" {
				result["commit"] = commit
			}
			return outputJSON(result)
		}
		if commit != "" {
			fmt.Printf("doctags version %s (%s: %s)\n", Version, Build, shortCommit(commit))
			return nil
		}
		fmt.Printf("doctags version %s (%s)\n", Version, Build)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// resolveCommitHash prefers the ldflag, then the VCS info embedded by the Go
// toolchain.
func resolveCommitHash() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
