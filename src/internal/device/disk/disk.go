// Package disk implements the device adapter for local disks, especially
// removable drives mounted into the file system.
package disk

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
	l "github.com/sirupsen/logrus"
	"gitlab.com/mipimipi/starsync/src/internal/config"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/syncinfo"
)

var log *l.Entry = l.WithFields(l.Fields{"pkg": "disk"})

// Scheme is the name prefix of disk devices
const Scheme = "path://"

// EnvDebugFolder names a folder that is reported as an additional device.
// That's handy for development since no removable drive needs to be plugged.
const EnvDebugFolder = "STARSYNC_DEBUG_FOLDER"

// Devices enumerates the mounted disks as sync devices
func Devices() []*Device {
	var devs []*Device

	partitions, err := disk.Partitions(false)
	if err != nil {
		log.Error(errors.Wrap(err, "cannot enumerate disk partitions"))
	} else {
		for _, partition := range partitions {
			devs = append(devs, New(partition.Mountpoint))
		}
	}

	if debugFolder := os.Getenv(EnvDebugFolder); debugFolder != "" {
		devs = append(devs, New(debugFolder))
	}

	return devs
}

// Device is one local disk, identified by its mount point
type Device struct {
	mountPoint string
}

// New creates a disk device for the given mount point
func New(mountPoint string) *Device {
	return &Device{mountPoint: mountPoint}
}

// Name returns the routable identity of the disk ("path://<mount point>")
func (me *Device) Name() string {
	return Scheme + filepath.ToSlash(me.mountPoint)
}

// MountPointFromName extracts the mount point from a disk device name. ok is
// false if name does not use the disk scheme.
func MountPointFromName(name string) (string, bool) {
	if !strings.HasPrefix(name, Scheme) {
		return "", false
	}
	return filepath.FromSlash(strings.TrimPrefix(name, Scheme)), true
}

func (me *Device) starsyncFolderPath() string {
	return filepath.Join(me.mountPoint, device.FolderName)
}

func (me *Device) configFolderPath() string {
	return filepath.Join(me.starsyncFolderPath(), device.ConfigFolderName)
}

func (me *Device) musicFolderPath() string {
	return filepath.Join(me.starsyncFolderPath(), device.MusicFolderName)
}

func folderIfDir(path string) (device.Folder, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	return &folder{path: path}, true
}

// StarsyncFolder returns the StarSync folder of the disk, if it exists
func (me *Device) StarsyncFolder() (device.Folder, bool) {
	return folderIfDir(me.starsyncFolderPath())
}

// ConfigFolder returns the config folder of the disk, if it exists
func (me *Device) ConfigFolder() (device.Folder, bool) {
	return folderIfDir(me.configFolderPath())
}

// MusicFolder returns the music folder of the disk, if it exists
func (me *Device) MusicFolder() (device.Folder, bool) {
	return folderIfDir(me.musicFolderPath())
}

// CreateFolders creates the StarSync folder layout on the disk
func (me *Device) CreateFolders() (err error) {
	for _, dir := range []string{me.starsyncFolderPath(), me.configFolderPath(), me.musicFolderPath()} {
		if err = os.MkdirAll(dir, 0775); err != nil {
			err = errors.Wrapf(err, "cannot create folder '%s'", dir)
			return
		}
	}
	return
}

// RemoveFolders removes the StarSync folder and everything below it
func (me *Device) RemoveFolders() (err error) {
	if err = os.RemoveAll(me.starsyncFolderPath()); err != nil {
		err = errors.Wrapf(err, "cannot remove folder '%s'", me.starsyncFolderPath())
	}
	return
}

// PushMusicFile copies a local file into the music folder of the disk,
// creating intermediate directories. An existing target is overwritten.
func (me *Device) PushMusicFile(localAbsolutePath, deviceRelativePath string) (err error) {
	destPath := filepath.Join(me.musicFolderPath(), filepath.FromSlash(deviceRelativePath))
	if err = os.MkdirAll(filepath.Dir(destPath), 0775); err != nil {
		err = errors.Wrapf(err, "cannot create folder for '%s'", destPath)
		return
	}

	src, err := os.Open(localAbsolutePath)
	if err != nil {
		err = errors.Wrapf(err, "cannot open '%s'", localAbsolutePath)
		return
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		err = errors.Wrapf(err, "cannot create '%s'", destPath)
		return
	}
	defer dest.Close()

	if _, err = io.Copy(dest, src); err != nil {
		err = errors.Wrapf(err, "cannot copy '%s' to '%s'", localAbsolutePath, destPath)
	}
	return
}

// PushPlaylist writes an M3U playlist at the root of the StarSync folder
func (me *Device) PushPlaylist(content, fileName string) (err error) {
	destPath := filepath.Join(me.starsyncFolderPath(), fileName)
	if err = os.WriteFile(destPath, []byte(content), 0664); err != nil {
		err = errors.Wrapf(err, "cannot write playlist '%s'", destPath)
	}
	return
}

// ConfigDisplayPath is a hint to tell the user where to look for the config
// file
func (me *Device) ConfigDisplayPath() string {
	return filepath.Join(me.configFolderPath(), device.ConfigFile)
}

// Config reads the per-device config from the disk
func (me *Device) Config() (config.Cfg, bool) {
	data, err := os.ReadFile(filepath.Join(me.configFolderPath(), device.ConfigFile))
	if err != nil {
		return config.Cfg{}, false
	}
	cfg, err := config.Parse(data)
	if err != nil {
		log.Error(errors.Wrapf(err, "cannot read config of device '%s'", me.Name()))
		return config.Cfg{}, false
	}
	return cfg, true
}

// PushConfig writes the per-device config onto the disk
func (me *Device) PushConfig(cfg config.Cfg) (err error) {
	data, err := cfg.JSON()
	if err != nil {
		return
	}
	if err = os.WriteFile(filepath.Join(me.configFolderPath(), device.ConfigFile), data, 0664); err != nil {
		err = errors.Wrap(err, "cannot write to device")
	}
	return
}

// PreviousSyncInfos reads the manifest of the previous sync from the disk
func (me *Device) PreviousSyncInfos() (*syncinfo.Info, bool) {
	data, err := os.ReadFile(filepath.Join(me.configFolderPath(), device.SyncInfoFile))
	if err != nil {
		return nil, false
	}
	info, err := syncinfo.Parse(data)
	if err != nil {
		log.Error(errors.Wrapf(err, "cannot read sync info of device '%s'", me.Name()))
		return nil, false
	}
	return info, true
}

// PushSyncInfos writes the manifest of the current sync onto the disk
func (me *Device) PushSyncInfos(info *syncinfo.Info) (err error) {
	data, err := info.JSON()
	if err != nil {
		return
	}
	if err = os.WriteFile(filepath.Join(me.configFolderPath(), device.SyncInfoFile), data, 0664); err != nil {
		err = errors.Wrap(err, "cannot write to device")
	}
	return
}

// folder implements device.Folder for a directory on a disk
type folder struct {
	path string
}

func (me *folder) Path() string { return me.path }

func (me *folder) Files() (files []device.File, err error) {
	entries, err := os.ReadDir(me.path)
	if err != nil {
		err = errors.Wrapf(err, "cannot list folder '%s'", me.path)
		return
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, &file{path: filepath.Join(me.path, entry.Name())})
		}
	}
	return
}

func (me *folder) SubFolders() (folders []device.Folder, err error) {
	entries, err := os.ReadDir(me.path)
	if err != nil {
		err = errors.Wrapf(err, "cannot list folder '%s'", me.path)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, &folder{path: filepath.Join(me.path, entry.Name())})
		}
	}
	return
}

func (me *folder) FileAt(relativePath string) (device.File, error) {
	path := filepath.Join(me.path, filepath.FromSlash(relativePath))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, errors.Errorf("no file at '%s'", path)
	}
	return &file{path: path}, nil
}

// file implements device.File for a file on a disk
type file struct {
	path string
}

func (me *file) Path() string { return me.path }

func (me *file) GetReader() (io.ReadCloser, error) {
	f, err := os.Open(me.path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open '%s'", me.path)
	}
	return f, nil
}

func (me *file) Delete() error {
	if err := os.Remove(me.path); err != nil {
		return errors.Wrapf(err, "cannot delete '%s'", me.path)
	}
	return nil
}
