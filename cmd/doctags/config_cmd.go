package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/doctags/internal/config"
	"github.com/steveyegge/doctags/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage the doctags config file",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented default " + config.FileName,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.FileName
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path, configInitForce); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(map[string]string{"path": path})
		}
		fmt.Printf("%s Wrote %s\n", ui.StatusIcon("pass"), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
