package disk

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/mipimipi/starsync/src/internal/config"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/syncinfo"
)

func TestFolderLayout(t *testing.T) {
	dev := New(t.TempDir())

	_, inited := dev.StarsyncFolder()
	assert.False(t, inited)

	require.NoError(t, dev.CreateFolders())
	_, inited = dev.StarsyncFolder()
	assert.True(t, inited)
	_, inited = dev.ConfigFolder()
	assert.True(t, inited)
	_, inited = dev.MusicFolder()
	assert.True(t, inited)
	assert.True(t, device.IsInited(dev))

	// creating the layout twice is fine
	require.NoError(t, dev.CreateFolders())

	require.NoError(t, dev.RemoveFolders())
	assert.False(t, device.IsInited(dev))
	// removing an absent layout is fine too
	require.NoError(t, dev.RemoveFolders())
}

func TestDeviceName(t *testing.T) {
	dev := New("/mnt/sdcard")
	assert.Equal(t, "path:///mnt/sdcard", dev.Name())

	mountPoint, ok := MountPointFromName(dev.Name())
	require.True(t, ok)
	assert.Equal(t, "/mnt/sdcard", mountPoint)

	_, ok = MountPointFromName("mtp://whatever")
	assert.False(t, ok)
}

func TestPushMusicFile(t *testing.T) {
	dev := New(t.TempDir())
	require.NoError(t, dev.CreateFolders())

	local := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(local, []byte("song data"), 0664))

	// intermediate directories are created
	require.NoError(t, dev.PushMusicFile(local, "artist/album/a.mp3"))

	musicFolder, inited := dev.MusicFolder()
	require.True(t, inited)
	file, err := musicFolder.FileAt("artist/album/a.mp3")
	require.NoError(t, err)

	reader, err := file.GetReader()
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "song data", string(data))

	// an existing target is overwritten
	require.NoError(t, os.WriteFile(local, []byte("new data"), 0664))
	require.NoError(t, dev.PushMusicFile(local, "artist/album/a.mp3"))
	content, err := os.ReadFile(file.Path())
	require.NoError(t, err)
	assert.Equal(t, "new data", string(content))

	require.NoError(t, file.Delete())
	_, err = musicFolder.FileAt("artist/album/a.mp3")
	assert.Error(t, err)
}

func TestFolderListing(t *testing.T) {
	root := t.TempDir()
	dev := New(root)
	require.NoError(t, dev.CreateFolders())

	musicDir := filepath.Join(root, device.FolderName, device.MusicFolderName)
	require.NoError(t, os.MkdirAll(filepath.Join(musicDir, "sub"), 0775))
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "a.mp3"), []byte("a"), 0664))
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "sub", "b.mp3"), []byte("b"), 0664))

	musicFolder, inited := dev.MusicFolder()
	require.True(t, inited)

	files, err := musicFolder.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.mp3", filepath.Base(files[0].Path()))

	folders, err := musicFolder.SubFolders()
	require.NoError(t, err)
	require.Len(t, folders, 1)

	subFiles, err := folders[0].Files()
	require.NoError(t, err)
	require.Len(t, subFiles, 1)
	assert.Equal(t, "b.mp3", filepath.Base(subFiles[0].Path()))
}

func TestConfigRoundTrip(t *testing.T) {
	dev := New(t.TempDir())

	_, found := dev.Config()
	assert.False(t, found)

	require.NoError(t, dev.CreateFolders())
	cfg := config.NewTemplate("folder:///home/me/Music", []string{"Chill"})
	require.NoError(t, dev.PushConfig(cfg))

	read, found := dev.Config()
	require.True(t, found)
	assert.Equal(t, cfg, read)

	assert.Contains(t, dev.ConfigDisplayPath(), device.ConfigFile)
}

func TestSyncInfoRoundTrip(t *testing.T) {
	dev := New(t.TempDir())
	require.NoError(t, dev.CreateFolders())

	_, found := dev.PreviousSyncInfos()
	assert.False(t, found)

	info := syncinfo.New("/m", map[string]syncinfo.SongEntry{"a.mp3": {ID: 0xa1}}, nil)
	require.NoError(t, dev.PushSyncInfos(info))

	read, found := dev.PreviousSyncInfos()
	require.True(t, found)
	assert.Equal(t, info.CommonAncestor, read.CommonAncestor)
	assert.Equal(t, info.SongData, read.SongData)
}

func TestPushPlaylist(t *testing.T) {
	root := t.TempDir()
	dev := New(root)
	require.NoError(t, dev.CreateFolders())

	require.NoError(t, dev.PushPlaylist("music/a.mp3\r\nmusic/b.mp3", "Chill.m3u"))

	content, err := os.ReadFile(filepath.Join(root, device.FolderName, "Chill.m3u"))
	require.NoError(t, err)
	assert.Equal(t, "music/a.mp3\r\nmusic/b.mp3", string(content))
}
