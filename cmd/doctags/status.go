package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/doctags/internal/config"
	"github.com/steveyegge/doctags/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "setup",
	Short:   "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := config.Load()
		if jsonOutput {
			return outputJSON(struct {
				config.Settings
				Token      string `json:"token"`
				ConfigFile string `json:"config_file,omitempty"`
				Valid      bool   `json:"valid"`
			}{s, s.MaskedToken(), config.ConfigFileUsed(), s.Validate() == nil})
		}
		writeStatus(os.Stdout, s, config.ConfigFileUsed())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func writeStatus(w io.Writer, s config.Settings, file string) {
	if file == "" {
		file = "(none, using defaults and environment)"
	}
	repo := "(not set)"
	if s.Owner != "" && s.Repo != "" {
		repo = s.Owner + "/" + s.Repo
	}
	fmt.Fprintln(w, ui.RenderCategory("doctags status"))
	for _, row := range [][2]string{
		{"config", file},
		{"repository", repo},
		{"token", s.MaskedToken()},
		{"api", s.APIURL},
		{"branch", s.Branch},
		{"docs", s.DocsDir},
		{"archive", s.ArchiveSegment},
		{"default label", s.DefaultLabel},
		{"reaction", s.Reaction},
		{"concurrency", fmt.Sprintf("%d", s.Concurrency)},
		{"dry run", fmt.Sprintf("%t", s.DryRun)},
	} {
		fmt.Fprintf(w, "  %-14s %s\n", row[0]+":", row[1])
	}

	if err := s.Validate(); err != nil {
		fmt.Fprintln(w, ui.RenderSeparator())
		fmt.Fprintf(w, "%s %s\n", ui.StatusIcon("warn"), ui.RenderWarn(err.Error()))
		return
	}
	fmt.Fprintf(w, "%s ready\n", ui.StatusIcon("pass"))
}
