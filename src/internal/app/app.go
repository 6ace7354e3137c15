// Package app wires the concrete source and device backends to the sync
// engine: discovery of what is currently available, device initialization and
// the construction of a sync manager from a device name.
package app

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
	"gitlab.com/mipimipi/starsync/src/internal/config"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/device/disk"
	"gitlab.com/mipimipi/starsync/src/internal/source"
	"gitlab.com/mipimipi/starsync/src/internal/source/folder"
	"gitlab.com/mipimipi/starsync/src/internal/sync"
)

var log *l.Entry = l.WithFields(l.Fields{"pkg": "app"})

// ErrAlreadyInited - the device has a StarSync folder already. To re-init it,
// first de-init, then try again.
var ErrAlreadyInited = errors.New("this device looks inited already. To re-init it, first de-init, then try again")

// ErrNotInited - the device has no StarSync folder
var ErrNotInited = errors.New("this device was not inited")

// ListSources enumerates the currently available sources
func ListSources() []source.Source {
	var sources []source.Source

	if root := os.Getenv(folder.EnvFolderSource); root != "" {
		src, err := folder.New(root)
		if err != nil {
			log.Error(errors.Wrapf(err, "cannot open folder source '%s'", root))
		} else {
			sources = append(sources, src)
		}
	}

	return sources
}

// GetSource finds a source by its name. Besides the listed sources, a
// "folder://<path>" name resolves directly to the folder library at that
// path.
func GetSource(name string) (source.Source, bool) {
	for _, src := range ListSources() {
		if src.Name() == name {
			return src, true
		}
	}

	if root, ok := folderRootFromName(name); ok {
		src, err := folder.New(root)
		if err == nil {
			return src, true
		}
		log.Error(errors.Wrapf(err, "cannot open folder source '%s'", root))
	}

	return nil, false
}

func folderRootFromName(name string) (string, bool) {
	if !strings.HasPrefix(name, folder.Scheme) || len(name) == len(folder.Scheme) {
		return "", false
	}
	return strings.TrimPrefix(name, folder.Scheme), true
}

// ListDevices enumerates the currently available devices. With onlyInited,
// devices without a StarSync folder are skipped.
func ListDevices(onlyInited bool) []device.Device {
	var devices []device.Device

	for _, dev := range disk.Devices() {
		if onlyInited && !device.IsInited(dev) {
			continue
		}
		devices = append(devices, dev)
	}

	return devices
}

// GetDevice finds a device by its name. Besides the listed devices, a
// "path://<dir>" name resolves directly to the directory at that path - this
// covers mounts that the partition enumeration does not report.
func GetDevice(name string) (device.Device, bool) {
	for _, dev := range ListDevices(false) {
		if dev.Name() == name {
			return dev, true
		}
	}

	if mountPoint, ok := disk.MountPointFromName(name); ok {
		if info, err := os.Stat(mountPoint); err == nil && info.IsDir() {
			return disk.New(mountPoint), true
		}
	}

	return nil, false
}

// InitDevice prepares a device for syncing against a source: the StarSync
// folder layout is created and a template config (all playlists selected) is
// stored. The display path of the config file is returned so the user can be
// pointed at it.
func InitDevice(deviceName, sourceName string) (string, error) {
	src, found := GetSource(sourceName)
	if !found {
		return "", &sync.Error{Kind: sync.SourceNotFound, Name: sourceName}
	}
	playlists, err := src.Playlists()
	if err != nil {
		return "", &sync.Error{Kind: sync.SourceNotFound, Name: sourceName, Cause: err}
	}
	playlistNames := make([]string, 0, len(playlists))
	for _, pl := range playlists {
		playlistNames = append(playlistNames, pl.Name())
	}

	dev, found := GetDevice(deviceName)
	if !found {
		return "", &sync.Error{Kind: sync.DeviceNotFound, Name: deviceName}
	}
	if device.IsInited(dev) {
		return "", ErrAlreadyInited
	}

	if err := dev.CreateFolders(); err != nil {
		return "", errors.Wrap(err, "unable to write to the device")
	}
	if err := dev.PushConfig(config.NewTemplate(sourceName, playlistNames)); err != nil {
		return "", errors.Wrap(err, "unable to write to the device")
	}

	return dev.ConfigDisplayPath(), nil
}

// DeinitDevice removes the StarSync folder layout from a device
func DeinitDevice(deviceName string) error {
	dev, found := GetDevice(deviceName)
	if !found {
		return &sync.Error{Kind: sync.DeviceNotFound, Name: deviceName}
	}
	if !device.IsInited(dev) {
		return ErrNotInited
	}
	if err := dev.RemoveFolders(); err != nil {
		return errors.Wrap(err, "unable to write to the device")
	}
	return nil
}

// NewSyncManager creates the sync manager for an inited device: the config
// stored on the device determines the source, and the previous manifest (if
// any) is loaded from the device.
func NewSyncManager(deviceName string) (*sync.Manager, error) {
	dev, found := GetDevice(deviceName)
	if !found {
		return nil, &sync.Error{Kind: sync.DeviceNotFound, Name: deviceName}
	}
	if !device.IsInited(dev) {
		return nil, &sync.Error{Kind: sync.NotInited}
	}

	cfg, found := dev.Config()
	if !found {
		return nil, &sync.Error{Kind: sync.NotInited}
	}

	src, found := GetSource(cfg.Source)
	if !found {
		return nil, &sync.Error{Kind: sync.SourceNotFound, Name: cfg.Source}
	}

	previous, _ := dev.PreviousSyncInfos()

	return sync.NewManager(dev, src, cfg, previous), nil
}
