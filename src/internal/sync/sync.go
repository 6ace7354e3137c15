// Package sync implements the reconciliation engine of starsync. Each cycle
// reconciles three states: the source library, the device contents, and the
// manifest written to the device at the end of the previous cycle which acts
// as the common ancestor. Device-side edits are merged back into the source
// first, then the device is made to converge towards the source.
package sync

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
	"gitlab.com/mipimipi/starsync/src/internal/config"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/source"
	"gitlab.com/mipimipi/starsync/src/internal/sync/status"
	"gitlab.com/mipimipi/starsync/src/internal/syncinfo"
)

var log *l.Entry = l.WithFields(l.Fields{"pkg": "sync"})

// Manager drives one sync cycle between a source and a device. The backends
// of both are not necessarily thread safe, so a Manager must be created and
// used on one and the same thread - usually a worker goroutine that also
// constructs the backends. Nothing here locks that goroutine to an OS thread.
type Manager struct {
	device   device.Device
	source   source.Source
	cfg      config.Cfg
	previous *syncinfo.Info
}

// NewManager creates a sync manager for a device, a source and the config
// stored on the device. previous is the manifest of the previous sync, nil if
// the device has never been synced.
func NewManager(dev device.Device, src source.Source, cfg config.Cfg, previous *syncinfo.Info) *Manager {
	return &Manager{
		device:   dev,
		source:   src,
		cfg:      cfg,
		previous: previous,
	}
}

// HostMismatch means the previous sync was performed on a different computer
type HostMismatch struct {
	Previous string
	Current  string
}

// Validator is the result of the sanity checks that run before a sync. The
// driver may acknowledge failed checks (after prompting the user) by clearing
// them; the sync only starts once the acknowledged validator is valid.
type Validator struct {
	// LastSyncComputerMismatch is set when we are not syncing with the same
	// computer as last time
	LastSyncComputerMismatch *HostMismatch
}

// IsValid reports whether all checks passed or have been acknowledged
func (me Validator) IsValid() bool {
	return me.LastSyncComputerMismatch == nil
}

// buildValidator runs the sanity checks against the previous manifest
func buildValidator(previous *syncinfo.Info) Validator {
	var validator Validator
	if previous == nil {
		return validator
	}

	currentHostname := syncinfo.CurrentHostname()
	if previous.Hostname != currentHostname {
		validator.LastSyncComputerMismatch = &HostMismatch{
			Previous: previous.Hostname,
			Current:  currentHostname,
		}
	}
	return validator
}

// StartSync performs the sync cycle. It is supposed to run on a worker
// goroutine while the driver shows the progress: the validator is sent over
// outbound, and the sync begins once the acknowledged validator arrives over
// inbound. Closing inbound without sending counts as a rejection.
//
// Only fatal errors are reported in the error return value. Warnings are
// passed to the status sender and counted in the first return value. The
// status sender is closed when the cycle is over.
func (me *Manager) StartSync(st *status.Sender, outbound chan<- Validator, inbound <-chan Validator) (uint64, error) {
	defer st.Close()

	outbound <- buildValidator(me.previous)

	acknowledged, ok := <-inbound
	if !ok || !acknowledged.IsValid() {
		return 0, &Error{Kind: SanityChecks}
	}

	if err := me.syncInner(st); err != nil {
		log.Error(err)
		return st.WarningsCount(), err
	}
	return st.WarningsCount(), nil
}

func (me *Manager) syncInner(st *status.Sender) error {
	st.SendProgress(status.Started)

	filesOnDevice, err := me.filesOnDevice(st)
	if err != nil {
		return err
	}

	// reverse sync: device edits go back into the source first
	me.reverseSyncPlaylists(st)
	if me.cfg.IncludeRatings {
		if err := me.reverseSyncRatings(st, filesOnDevice); err != nil {
			st.SendWarningf("Unable to reverse sync ratings: %v", err)
		}
	}

	// build the list of files that should be on the device
	fileSet, err := me.buildFileSet(st)
	if err != nil {
		var syncErr *Error
		if errors.As(err, &syncErr) && syncErr.Kind == NoCommonAncestor {
			return err
		}
		return &Error{Kind: SongScanningFailed, Cause: err}
	}

	// push and delete files
	if err := me.syncFiles(st, fileSet, filesOnDevice); err != nil {
		return &Error{Kind: SyncingFilesFailed, Cause: err}
	}

	// regenerate playlists
	playlists, err := me.updatePlaylists(st, fileSet)
	if err != nil {
		return &Error{Kind: PushingPlaylistsFailed, Cause: err}
	}
	if me.cfg.IncludeRatings {
		me.pushStarPlaylists(st, fileSet)
	}

	// the manifest is the last write of the cycle
	st.SendProgress(status.UpdatingSyncInfo)
	if err := me.updateSyncInfo(fileSet, playlists); err != nil {
		return &Error{Kind: UpdateSyncInfoFailed, Cause: err}
	}

	st.SendProgress(status.Done)
	return nil
}

// filesOnDevice lists the files below the music folder of the device, as
// slash-separated paths relative to the music folder.
//
// This could be speeded up by just taking the paths from the previous
// manifest. Scanning the actual folders however keeps the sync robust to
// (more-or-less) accidental file deletions.
func (me *Manager) filesOnDevice(st *status.Sender) ([]string, error) {
	st.SendProgress(status.ListingFilesOnDevice)

	musicFolder, inited := me.device.MusicFolder()
	if !inited {
		return nil, &Error{Kind: DeviceReadError}
	}

	var files []string
	populateDeviceFiles(st, musicFolder.Path(), musicFolder, &files)
	sort.Strings(files)
	return files, nil
}

func populateDeviceFiles(st *status.Sender, rootPath string, current device.Folder, files *[]string) {
	dirFiles, err := current.Files()
	if err != nil {
		st.SendWarningf("Unable to list files from folder '%s': %v", current.Path(), err)
	} else {
		for _, file := range dirFiles {
			rel, err := filepath.Rel(rootPath, file.Path())
			if err != nil || strings.HasPrefix(rel, "..") {
				st.SendWarningf("Found a file (%s) that is not included in the root folder %s", file.Path(), rootPath)
				continue
			}
			*files = append(*files, filepath.ToSlash(rel))
		}
	}

	subFolders, err := current.SubFolders()
	if err != nil {
		st.SendWarningf("Unable to list folders from folder '%s': %v", current.Path(), err)
		return
	}
	for _, folder := range subFolders {
		populateDeviceFiles(st, rootPath, folder, files)
	}
}
