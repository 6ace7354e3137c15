package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rjeczalik/notify"
	l "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/mipimipi/starsync/src/internal/app"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/device/disk"
)

var (
	alreadyInited bool
	watchDevices  bool
)

// listDevicesCmd represents the list-devices command
var listDevicesCmd = &cobra.Command{
	Use:   "list-devices",
	Short: "List currently available devices",
	Long:  "List the portable devices that starsync can currently sync to",
	Run: func(cmd *cobra.Command, args []string) {
		devices := app.ListDevices(alreadyInited)
		fmt.Println("Currently available devices:")
		for _, dev := range devices {
			if device.IsInited(dev) {
				fmt.Printf("  * %s (inited)\n", dev.Name())
			} else {
				fmt.Printf("  * %s\n", dev.Name())
			}
		}
		fmt.Printf("(%d devices)\n", len(devices))

		if watchDevices {
			watchForDevices()
		}
	},
}

// mediaDirs are the places removable drives usually get mounted below
var mediaDirs = []string{"/media", "/run/media", "/Volumes"}

// watchForDevices blocks and reports devices as they get plugged in, until
// the command is interrupted
func watchForDevices() {
	changes := make(chan notify.EventInfo, 8)
	watching := 0
	for _, dir := range mediaDirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := notify.Watch(filepath.Join(dir, "..."), changes, notify.Create); err != nil {
			l.Warnf("cannot watch '%s' for new devices: %v", dir, err)
			continue
		}
		watching++
	}
	if watching == 0 {
		fmt.Println("No media directory to watch on this system.")
		return
	}
	defer notify.Stop(changes)

	fmt.Println("Watching for new devices, press Ctrl-C to stop ...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case change := <-changes:
			if info, err := os.Stat(change.Path()); err != nil || !info.IsDir() {
				continue
			}
			dev := disk.New(change.Path())
			if alreadyInited && !device.IsInited(dev) {
				continue
			}
			fmt.Printf("  * %s\n", dev.Name())

		case <-interrupt:
			return
		}
	}
}

func init() {
	listDevicesCmd.Flags().BoolVar(&alreadyInited, "already-inited", false, "only list devices that have been inited already")
	listDevicesCmd.Flags().BoolVar(&watchDevices, "watch", false, "keep running and report devices as they appear")
	rootCmd.AddCommand(listDevicesCmd)
}
