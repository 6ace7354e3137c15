package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/mipimipi/starsync/src/internal/app"
)

// deinitCmd represents the deinit command
var deinitCmd = &cobra.Command{
	Use:   "deinit <device>",
	Short: "De-initialize a device",
	Long:  "Remove the StarSync folder layout (config files and synced music) from a device",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch err := app.DeinitDevice(args[0]); {
		case err == nil:
			fmt.Printf("Successfully deinited %s\n", args[0])
		case errors.Is(err, app.ErrNotInited):
			fmt.Printf("Device %s is not inited\n", args[0])
		default:
			fmt.Printf("Cannot deinit %s: %v\n", args[0], err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(deinitCmd)
}
