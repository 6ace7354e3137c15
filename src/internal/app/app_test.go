package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/device/disk"
	"gitlab.com/mipimipi/starsync/src/internal/source/folder"
	"gitlab.com/mipimipi/starsync/src/internal/sync"
)

// newLibraryName creates a folder library with one playlist and returns its
// source name
func newLibraryName(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.mp3"), []byte("a"), 0664))
	index := `{"playlists": [ {"name": "Chill", "tracks": ["a.mp3"]} ]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, folder.IndexFile), []byte(index), 0664))
	return folder.Scheme + filepath.ToSlash(root)
}

func newDeviceName(t *testing.T) string {
	t.Helper()
	return disk.Scheme + filepath.ToSlash(t.TempDir())
}

func TestInitAndDeinitDevice(t *testing.T) {
	sourceName := newLibraryName(t)
	deviceName := newDeviceName(t)

	displayPath, err := InitDevice(deviceName, sourceName)
	require.NoError(t, err)
	assert.Contains(t, displayPath, device.ConfigFile)

	// the template config selects all playlists of the source
	dev, found := GetDevice(deviceName)
	require.True(t, found)
	cfg, found := dev.Config()
	require.True(t, found)
	assert.Equal(t, sourceName, cfg.Source)
	assert.True(t, cfg.IncludeRatings)
	assert.Equal(t, []string{"Chill"}, cfg.Playlists)

	// initing twice is refused
	_, err = InitDevice(deviceName, sourceName)
	assert.True(t, errors.Is(err, ErrAlreadyInited))

	require.NoError(t, DeinitDevice(deviceName))
	assert.True(t, errors.Is(DeinitDevice(deviceName), ErrNotInited))
}

func TestInitUnknownSourceOrDevice(t *testing.T) {
	deviceName := newDeviceName(t)

	_, err := InitDevice(deviceName, "folder:///no/such/library")
	var syncErr *sync.Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, sync.SourceNotFound, syncErr.Kind)

	_, err = InitDevice("path:///no/such/mount", newLibraryName(t))
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, sync.DeviceNotFound, syncErr.Kind)
}

func TestNewSyncManager(t *testing.T) {
	sourceName := newLibraryName(t)
	deviceName := newDeviceName(t)

	// not inited yet
	_, err := NewSyncManager(deviceName)
	var syncErr *sync.Error
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, sync.NotInited, syncErr.Kind)

	_, err = InitDevice(deviceName, sourceName)
	require.NoError(t, err)

	manager, err := NewSyncManager(deviceName)
	require.NoError(t, err)
	assert.NotNil(t, manager)
}

func TestGetSourceDirect(t *testing.T) {
	sourceName := newLibraryName(t)

	src, found := GetSource(sourceName)
	require.True(t, found)
	assert.Equal(t, sourceName, src.Name())

	_, found = GetSource("folder:///no/such/library")
	assert.False(t, found)
	_, found = GetSource("iTunes")
	assert.False(t, found)
}
