package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/doctags/internal/config"
	"github.com/steveyegge/doctags/internal/debug"
	"github.com/steveyegge/doctags/internal/telemetry"
)

var (
	configPath  string
	jsonOutput  bool
	dryRunFlag  bool
	verboseFlag bool
	quietFlag   bool
	jsonLogs    bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: "sync", Title: "Syncing Documents:"})
	rootCmd.AddGroup(&cobra.Group{ID: "inspect", Title: "Inspecting Tags:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Read from GitHub but only log writes")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "Write logs as JSON lines")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

var rootCmd = &cobra.Command{
	Use:           "doctags",
	Short:         "doctags - Keep GitHub issues in sync with the tags in your docs",
	Long:          `Scans Markdown documents for TODO, PLACEHOLDER and NOTE tags and keeps one tracking issue per document in sync with them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("doctags version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
		debug.SetJSONLogs(jsonLogs)

		if err := config.Initialize(configPath); err != nil {
			return err
		}
		if cmd.Flags().Changed("dry-run") {
			config.Set(config.KeyDryRun, dryRunFlag)
		}
		if err := telemetry.Init(rootCtx, "doctags", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry disabled: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			debug.Logf("telemetry shutdown: %v\n", err)
		}
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(exitCode(err))
	}
}
