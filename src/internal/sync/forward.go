package sync

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"gitlab.com/mipimipi/starsync/src/internal/device"
	"gitlab.com/mipimipi/starsync/src/internal/source"
	"gitlab.com/mipimipi/starsync/src/internal/sync/status"
	"gitlab.com/mipimipi/starsync/src/internal/syncinfo"
)

// syncFiles makes the music folder of the device converge towards the file
// set: files that are no longer expected are deleted, missing files are
// pushed. The comparison is case-insensitive since devices such as FAT32 SD
// cards are - treating two casings as different files would cause spurious
// re-copies and the same file appearing under two names.
func (me *Manager) syncFiles(st *status.Sender, fileSet *FileSet, filesOnDevice []string) error {
	expected := make([]string, 0, len(fileSet.FilesData))
	for rel := range fileSet.FilesData {
		expected = append(expected, rel)
	}

	filesToRemove := DifferenceBy(filesOnDevice, expected, strings.ToLower)
	filesToPush := DifferenceBy(expected, filesOnDevice, strings.ToLower)

	st.SendProgress(status.SyncingFiles)
	musicFolder, inited := me.device.MusicFolder()
	if !inited {
		return &Error{Kind: DeviceReadError}
	}

	for _, rel := range filesToRemove {
		st.Send(status.RemovingFileMsg{Path: rel})
		file, err := musicFolder.FileAt(rel)
		if err == nil {
			err = file.Delete()
		}
		if err != nil {
			st.SendWarningf("Unable to remove file at %s: %v", rel, err)
		}
	}

	var totalBytes uint64
	for _, rel := range filesToPush {
		totalBytes += fileSet.FilesData[rel].FileSize
	}

	var pushedBytes uint64
	for i, rel := range filesToPush {
		pushedBytes += fileSet.FilesData[rel].FileSize
		st.Send(status.PushingFileMsg{
			Path:       rel,
			Index:      i + 1,
			Total:      len(filesToPush),
			Bytes:      pushedBytes,
			TotalBytes: totalBytes,
		})

		localAbsolutePath := filepath.Join(filepath.FromSlash(fileSet.CommonAncestor), filepath.FromSlash(rel))
		push := func() error {
			return me.device.PushMusicFile(localAbsolutePath, rel)
		}
		// one transient failure is tolerated per file: retry exactly once,
		// then warn and continue with the next file
		if err := backoff.Retry(push, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1)); err != nil {
			st.SendWarningf("Unable to push file %s: %v", rel, err)
		}
	}

	return nil
}

// updatePlaylists regenerates the playlists at the root of the StarSync
// folder: all M3U files are removed, then the selected playlists are
// rendered and pushed again. The returned map records what was pushed, for
// the manifest.
func (me *Manager) updatePlaylists(st *status.Sender, fileSet *FileSet) (map[string]syncinfo.PlaylistEntry, error) {
	st.SendProgress(status.PushingPlaylists)

	mainFolder, inited := me.device.StarsyncFolder()
	if !inited {
		return nil, &Error{Kind: DeviceReadError}
	}

	if err := removeCurrentPlaylists(st, mainFolder); err != nil {
		st.SendWarningf("Unable to remove playlists: %v", err)
	}

	return me.pushPlaylists(st, fileSet), nil
}

// removeCurrentPlaylists deletes all M3U files at the root of the StarSync
// folder, regular playlists and ratings playlists alike
func removeCurrentPlaylists(st *status.Sender, mainFolder device.Folder) error {
	files, err := mainFolder.Files()
	if err != nil {
		return &Error{Kind: DeviceReadError, Cause: err}
	}

	for _, file := range files {
		if path.Ext(slashed(file.Path())) != ".m3u" {
			continue
		}
		st.Send(status.RemovingPlaylistMsg{Path: file.Path()})
		if err := file.Delete(); err != nil {
			st.SendWarningf("Unable to delete %s: %v", file.Path(), err)
		}
	}

	return nil
}

// pushPlaylists renders the selected playlists relative to the common
// ancestor and writes them to the device
func (me *Manager) pushPlaylists(st *status.Sender, fileSet *FileSet) map[string]syncinfo.PlaylistEntry {
	pushed := make(map[string]syncinfo.PlaylistEntry)

	for _, playlistName := range me.cfg.Playlists {
		pl, found := me.source.PlaylistByName(playlistName)
		if !found {
			st.SendWarningf("Unable to get local playlist '%s'", playlistName)
			continue
		}
		fileName := source.SuitableFilename(pl)

		content, err := source.PlaylistM3U(pl, fileSet.CommonAncestor, device.MusicFolderName)
		if err != nil {
			st.SendWarningf("Unable to generate m3u file for playlist '%s': %v", playlistName, err)
		} else {
			st.Send(status.PushingPlaylistMsg{Name: playlistName})
			if err := me.device.PushPlaylist(content, fileName); err != nil {
				st.SendWarningf("Unable to push m3u file for playlist '%s': %v", playlistName, err)
			}
		}

		tracks, err := pl.Tracks()
		if err != nil {
			st.SendWarningf("Unable to get tracks from playlist '%s': %v", playlistName, err)
			continue
		}
		ids := make([]source.TrackID, 0, len(tracks))
		for _, track := range tracks {
			ids = append(ids, track.ID())
		}

		if _, exists := pushed[fileName]; exists {
			st.SendWarningf("Duplicate playlists named '%s'", playlistName)
		}
		pushed[fileName] = syncinfo.PlaylistEntry{ID: pl.ID(), Tracks: ids}
	}

	return pushed
}

// pushStarPlaylists writes the five synthetic ratings playlists. Empty
// buckets are written too, so that the next reverse sync finds all five.
func (me *Manager) pushStarPlaylists(st *status.Sender, fileSet *FileSet) {
	st.SendProgress(status.PushingRatings)

	buckets := fileSet.PathsByRating()
	for stars := uint8(1); stars <= 5; stars++ {
		content := source.CreateM3U(buckets[stars], device.MusicFolderName)
		fileName := FavouritesPlaylistName(stars)

		st.Send(status.PushingPlaylistMsg{Name: fileName})
		if err := me.device.PushPlaylist(content, fileName); err != nil {
			st.SendWarningf("Unable to push m3u file for rating playlist '%s': %v", fileName, err)
		}
	}
}

// updateSyncInfo writes the manifest of this cycle to the device. This is the
// last write of the cycle.
func (me *Manager) updateSyncInfo(fileSet *FileSet, playlists map[string]syncinfo.PlaylistEntry) error {
	songData := make(map[string]syncinfo.SongEntry, len(fileSet.FilesData))
	for rel, data := range fileSet.FilesData {
		songData[rel] = syncinfo.SongEntry{ID: data.ID, Rating: data.Rating}
	}

	return me.device.PushSyncInfos(syncinfo.New(fileSet.CommonAncestor, songData, playlists))
}
