package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/tags"
	"github.com/steveyegge/doctags/internal/ui"
)

// fileMarkers is the extract output for one document.
type fileMarkers struct {
	Path    string        `json:"path" yaml:"path"`
	Markers []tags.Marker `json:"markers" yaml:"markers"`
}

var extractFormat string

var extractCmd = &cobra.Command{
	Use:     "extract <file>...",
	GroupID: "inspect",
	Short:   "Print the tags found in documents",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := extractFormat
		if jsonOutput {
			format = "json"
		}
		out := make([]fileMarkers, 0, len(args))
		for _, p := range args {
			data, err := os.ReadFile(p) // #nosec G304 - user-supplied document path
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			markers := tags.Extract(string(data))
			if markers == nil {
				markers = []tags.Marker{}
			}
			out = append(out, fileMarkers{Path: identity.NormalizePath(p), Markers: markers})
		}
		return writeMarkers(os.Stdout, out, format)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(extractCmd)
}

func writeMarkers(w io.Writer, files []fileMarkers, format string) error {
	switch format {
	case "json":
		return writeJSON(w, files)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(files); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "text", "":
		for _, f := range files {
			fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(f.Path), ui.RenderMuted(fmt.Sprintf("(%d)", len(f.Markers))))
			for _, m := range f.Markers {
				fmt.Fprintf(w, "  %s %-11s %s\n", ui.RenderMuted(fmt.Sprintf("%4d", m.Line)), m.Keyword, ui.Truncate(m.Text, 100))
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
}
