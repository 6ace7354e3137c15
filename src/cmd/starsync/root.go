package main

import (
	"fmt"
	"os"

	l "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/mipimipi/starsync/src/internal/config"
)

var preamble = `starsync ` + Version + `
Copyright (C) 2023 Michael Picht <https://gitlab.com/mipimipi/starsync>

starsync keeps a portable music device (an SD card, a thumb drive) in sync
with the music library on this computer, playlists and ratings included.
Edits made on the device are merged back into the library.

starsync comes with ABSOLUTELY NO WARRANTY. This is free software, and you
are welcome to redistribute it under certain conditions.  See the GNU
General Public Licence for details.`

var rootCmd = &cobra.Command{
	Use:     "starsync",
	Short:   "starsync music device synchronizer",
	Long:    preamble,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// setupLogging directs the log to stderr with the level taken from the
// environment. stdout stays reserved for the user-facing command output.
func setupLogging() error {
	level, err := l.ParseLevel(config.LogLevel())
	if err != nil {
		return err
	}
	l.SetLevel(level)
	l.SetOutput(os.Stderr)
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
