package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	l "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/mipimipi/starsync/src/internal/app"
	"gitlab.com/mipimipi/starsync/src/internal/osinhibit"
	"gitlab.com/mipimipi/starsync/src/internal/sync"
	"gitlab.com/mipimipi/starsync/src/internal/sync/status"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <device>",
	Short: "Sync an already inited device",
	Long:  "Run one sync cycle between an inited device and its configured source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSync(args[0]); err != nil {
			fmt.Printf("Sync failed: %v\n", err)
			os.Exit(1)
		}
	},
}

type syncResult struct {
	warnings uint64
	err      error
}

// runSync drives one sync cycle: the engine runs on a worker goroutine (the
// source and device backends must be created and used on one thread), while
// this goroutine handles the validator handshake and relays the status
// messages
func runSync(deviceName string) error {
	l.Infof("Syncing %s...", deviceName)

	st, statusCh := status.Channel()
	outbound := make(chan sync.Validator, 1)
	inbound := make(chan sync.Validator, 1)
	result := make(chan syncResult, 1)

	go func() {
		release := osinhibit.Inhibit("starsync", "A music device sync is in progress")
		defer release()

		manager, err := app.NewSyncManager(deviceName)
		if err != nil {
			close(outbound)
			st.Close()
			result <- syncResult{err: err}
			return
		}

		warnings, err := manager.StartSync(st, outbound, inbound)
		result <- syncResult{warnings: warnings, err: err}
	}()

	// wait for the validator and let the user acknowledge failed checks
	validator, ok := <-outbound
	if ok {
		if mismatch := validator.LastSyncComputerMismatch; mismatch != nil {
			fmt.Printf("Last sync was done on computer \"%s\" instead of the current computer \"%s\"\n", mismatch.Previous, mismatch.Current)
			fmt.Print("Do you still want to proceed? [y/n] ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(answer) == "y" {
				validator.LastSyncComputerMismatch = nil
			}
		}
		inbound <- validator
	}

	// relay the status messages while the sync is running
	for msg := range statusCh {
		switch m := msg.(type) {
		case status.ProgressMsg:
			l.Infof("====%s=====", m.Progress)
		case status.InfoMsg:
			l.Info(m.Text)
		case status.WarningMsg:
			l.Warn(m.Text)
		case status.PushingFileMsg:
			l.Infof("Pushing %s (%d/%d, %d/%d bytes)", m.Path, m.Index, m.Total, m.Bytes, m.TotalBytes)
		default:
			l.Debugf("%+v", m)
		}
	}

	res := <-result
	switch {
	case res.err != nil:
		return res.err
	case res.warnings == 0:
		fmt.Println("Sync successfully completed.")
	default:
		fmt.Printf("Sync completed with %d warnings\n", res.warnings)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
