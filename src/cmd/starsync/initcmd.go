package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/mipimipi/starsync/src/internal/app"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init <device> <source>",
	Short: "Initialize a device so that it can sync against a given source",
	Long:  "Create the StarSync folder layout on a device and store a template config that selects all playlists of the source",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		configDisplayPath, err := app.InitDevice(args[0], args[1])
		if err != nil {
			fmt.Printf("Cannot init %s: %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("Successfully inited %s.\n", args[0])
		fmt.Printf("You probably want to review the config at %s before starting a sync!\n", configDisplayPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
