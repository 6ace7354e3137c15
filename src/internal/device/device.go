// Package device defines the capability surface of a portable storage
// endpoint (a removable disk, an MTP functional object) as it is consumed by
// the sync engine.
package device

import (
	"io"

	"gitlab.com/mipimipi/starsync/src/internal/config"
	"gitlab.com/mipimipi/starsync/src/internal/syncinfo"
)

// On-device layout: <mount>/StarSync/{config,music}, with the playlists at
// the root of the StarSync folder
const (
	// FolderName is the name of the top-level folder on the device
	FolderName = "StarSync"
	// MusicFolderName is the folder the music files are stored in
	MusicFolderName = "music"
	// ConfigFolderName is the folder the config and the sync info are stored in
	ConfigFolderName = "config"
	// ConfigFile is the file name of the per-device config
	ConfigFile = "starsync.json"
	// SyncInfoFile is the file name of the sync manifest
	SyncInfoFile = "sync-info.json"
)

// Device is a portable storage endpoint. Adapters are constructed on the
// thread that uses them and live for the duration of one sync cycle.
type Device interface {
	// Name returns the routable identity of this device. It is scheme
	// prefixed (e.g. "path://..." or "mtp://...") and unique, and the device
	// can be found again from it.
	Name() string

	// StarsyncFolder returns a handle to the StarSync folder, if the device
	// is inited
	StarsyncFolder() (Folder, bool)
	// ConfigFolder returns a handle to the config folder, if the device is
	// inited
	ConfigFolder() (Folder, bool)
	// MusicFolder returns a handle to the music folder, if the device is
	// inited
	MusicFolder() (Folder, bool)

	// CreateFolders creates the StarSync folder layout on the device
	CreateFolders() error
	// RemoveFolders removes the StarSync folder and everything below it
	RemoveFolders() error

	// PushMusicFile copies a local file into the music folder, creating
	// intermediate directories and overwriting an existing target
	PushMusicFile(localAbsolutePath, deviceRelativePath string) error
	// PushPlaylist writes an M3U playlist at the root of the StarSync folder
	PushPlaylist(content, fileName string) error

	// ConfigDisplayPath is a hint to tell the user where to look for the
	// config file
	ConfigDisplayPath() string
	// Config reads the per-device config, if the device has one
	Config() (config.Cfg, bool)
	// PushConfig writes the per-device config
	PushConfig(cfg config.Cfg) error
	// PreviousSyncInfos reads the manifest of the previous sync, if any
	PreviousSyncInfos() (*syncinfo.Info, bool)
	// PushSyncInfos writes the manifest of the current sync
	PushSyncInfos(info *syncinfo.Info) error
}

// Folder is a directory handle on a device
type Folder interface {
	Path() string
	// Files lists the files directly contained in this folder
	Files() ([]File, error)
	// SubFolders lists the folders directly contained in this folder
	SubFolders() ([]Folder, error)
	// FileAt returns a handle to the file at a path relative to this folder
	FileAt(relativePath string) (File, error)
}

// File is a file handle on a device
type File interface {
	Path() string
	GetReader() (io.ReadCloser, error)
	Delete() error
}

// IsInited reports whether the device has a StarSync folder
func IsInited(dev Device) bool {
	_, inited := dev.StarsyncFolder()
	return inited
}
