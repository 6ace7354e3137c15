package sync

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/mipimipi/starsync/src/internal/device/m3u"
	"gitlab.com/mipimipi/starsync/src/internal/source"
	"gitlab.com/mipimipi/starsync/src/internal/sync/status"
	"gitlab.com/mipimipi/starsync/src/internal/syncinfo"
)

// requestedPlaylistKind selects which playlists a device scan is after
type requestedPlaylistKind int

const (
	// regular user playlists
	kindRegular requestedPlaylistKind = iota
	// synthetic ratings playlists
	kindRatings
)

// m3uToSongIDs translates the path entries of a device playlist into track
// IDs by consulting the previous manifest. The paths on the device are as
// they were at the previous sync, so the manifest is the right place to look
// them up. Unknown paths are dropped with a warning.
func m3uToSongIDs(st *status.Sender, playlist m3u.Playlist, previous *syncinfo.Info) []source.TrackID {
	var ids []source.TrackID
	for _, p := range playlist.Paths() {
		id, known := previous.IDForRelativePath(p)
		if !known {
			st.SendWarningf("Unable to get ID for song at path '%s' on device.", p)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// playlistsOnDevice scans the StarSync folder of the device for M3U files of
// the requested kind and parses them
func (me *Manager) playlistsOnDevice(st *status.Sender, requested requestedPlaylistKind) (map[string]m3u.Playlist, error) {
	folder, inited := me.device.StarsyncFolder()
	if !inited {
		return nil, &Error{Kind: DeviceReadError}
	}

	files, err := folder.Files()
	if err != nil {
		return nil, &Error{Kind: DeviceReadError, Cause: err}
	}

	playlists := make(map[string]m3u.Playlist)
	for _, file := range files {
		fileName := path.Base(slashed(file.Path()))
		if path.Ext(fileName) != ".m3u" {
			continue
		}

		actual := Classify(fileName)
		switch {
		case requested == kindRegular && !actual.IsRatings():
			if !me.previous.HasPlaylistFileName(fileName) {
				// we're not supposed to sync this playlist. Ignore it.
				st.SendInfof("File %s exists, but the playlist is ignored because it is not selected in the config file.", file.Path())
				continue
			}
		case requested == kindRegular && actual.IsRatings():
			continue
		case requested == kindRatings && !actual.IsRatings():
			continue
		}

		st.Send(status.RetrievingDevicePlaylistMsg{FileName: fileName})
		reader, err := file.GetReader()
		if err != nil {
			st.SendWarningf("Unable to get playlist file '%s' from device: %v", file.Path(), err)
			continue
		}
		parsed := m3u.Parse(reader)
		reader.Close()

		if _, exists := playlists[fileName]; exists {
			st.SendWarningf("Multiple playlists '%s' found on device", file.Path())
		}
		playlists[fileName] = parsed
	}

	return playlists, nil
}

// reverseSyncPlaylists propagates playlist edits made on the device back to
// the source via a three-way merge against the previous manifest
func (me *Manager) reverseSyncPlaylists(st *status.Sender) {
	st.SendProgress(status.ReverseSyncPlaylists)

	if me.previous == nil {
		// in case there was no previous sync, there is nothing to reverse sync
		st.SendInfo("This seems to be the first time this device is synced. Not performing reverse sync for playlists")
		return
	}

	lists, err := me.playlistsOnDevice(st, kindRegular)
	if err != nil {
		st.SendWarningf("Unable to get playlists from device: %v", err)
		return
	}

	fileNames := make([]string, 0, len(lists))
	for fileName := range lists {
		fileNames = append(fileNames, fileName)
	}
	sort.Strings(fileNames)

	for _, fileName := range fileNames {
		entry, known := me.previous.Playlist(fileName)
		if !known {
			st.SendWarningf("Unable to get info about the last sync of playlist '%s'.", fileName)
			continue
		}

		deviceIDs := m3uToSongIDs(st, lists[fileName], me.previous)
		if err := me.reverseSyncPlaylist(st, fileName, entry.ID, entry.Tracks, deviceIDs); err != nil {
			st.SendWarningf("Unable to reverse sync playlist '%s': %v", fileName, err)
		}
	}
}

// reverseSyncPlaylist merges the device order of one playlist with the source
// order against the ancestor order and writes the result back to the source
func (me *Manager) reverseSyncPlaylist(st *status.Sender, fileName string, id source.PlaylistID, ancestorIDs, deviceIDs []source.TrackID) error {
	st.Send(status.ReverseSyncPlaylistMsg{Name: fileName})

	pl, found := me.source.PlaylistByID(id)
	if !found {
		return errors.New("no such playlist")
	}
	if !id.SameVariant(pl.ID()) {
		st.SendWarningf("Playlist '%s' was recorded with a different kind of ID, the source backend seems to have changed since the last sync. Skipping it.", fileName)
		return nil
	}

	tracks, err := pl.Tracks()
	if err != nil {
		return err
	}
	localIDs := make([]source.TrackID, 0, len(tracks))
	for _, track := range tracks {
		localIDs = append(localIDs, track.ID())
	}

	// in case both sequences are the same, let's not bother doing a merge
	if idsEqual(deviceIDs, localIDs) {
		st.SendInfof("Playlist %s has not been modified, skipping it.", fileName)
		return nil
	}

	merged, err := threeWayMerge(ancestorIDs, localIDs, deviceIDs)
	if err != nil {
		return err
	}
	if idsEqual(merged, localIDs) {
		return nil
	}

	st.Send(status.UpdatingPlaylistIntoSourceMsg{Name: fileName, NewContent: merged})
	if err := pl.ChangeContentsTo(merged); err != nil {
		st.SendWarningf("Unable to update the contents of playlist %s: %v", fileName, err)
	}
	return nil
}

// reverseSyncRatings propagates rating edits made on the device back to the
// source. The returned error aborts the rating phase only; the caller reports
// it as a warning and the cycle proceeds.
func (me *Manager) reverseSyncRatings(st *status.Sender, filesOnDevice []string) error {
	st.SendProgress(status.ReverseSyncRatings)

	if me.previous == nil {
		// in case there was no previous sync, there is nothing to reverse sync
		st.SendInfo("This seems to be the first time this device is synced. Not performing reverse sync for ratings")
		return nil
	}

	lists, err := me.playlistsOnDevice(st, kindRatings)
	if err != nil {
		return err
	}

	// translate the five ratings playlists into sets of track IDs. All five
	// must exist - a missing one means the device state cannot be trusted.
	buckets := make(map[uint8][]source.TrackID, 5)
	seen := make(map[source.TrackID]uint8)
	for stars := uint8(1); stars <= 5; stars++ {
		fileName := FavouritesPlaylistName(stars)
		list, exists := lists[fileName]
		if !exists {
			return &Error{Kind: MissingRatingsLists}
		}

		ids := m3uToSongIDs(st, list, me.previous)
		unique := ids[:0]
		for _, id := range ids {
			if previousStars, rated := seen[id]; rated {
				if previousStars != stars {
					return &Error{Kind: DuplicateRatingsForASong, Cause: errors.Errorf("track %s is rated both %d and %d stars", id, previousStars, stars)}
				}
				continue
			}
			seen[id] = stars
			unique = append(unique, id)
		}
		buckets[stars] = unique
	}

	// the implicit sixth bucket: tracks that are on the device and known to
	// the manifest, but rated in none of the five playlists, have no rating
	noRatings := make(map[source.TrackID]struct{})
	for _, p := range filesOnDevice {
		if id, known := me.previous.IDForRelativePath(p); known {
			noRatings[id] = struct{}{}
		}
	}
	for id := range seen {
		if _, present := noRatings[id]; !present {
			st.SendWarningf("Song with ID %s is rated, but it does not look like it is present on the device", id)
			continue
		}
		delete(noRatings, id)
	}

	for stars := uint8(1); stars <= 5; stars++ {
		me.importRatings(st, source.NewRating(stars), buckets[stars])
	}
	me.importRatings(st, nil, sortedIDs(noRatings))

	return nil
}

// importRatings writes one device-side rating value back to the source for
// every track whose rating changed on the device. If the rating also changed
// on the source, that's a conflict and the source wins.
func (me *Manager) importRatings(st *status.Sender, ratingOnDevice *source.Rating, ids []source.TrackID) {
	for _, id := range ids {
		ratingAtPreviousSync := me.previous.RatingForID(id)
		if source.RatingsEqual(ratingAtPreviousSync, ratingOnDevice) {
			continue
		}

		// this song has changed its rating on the device.
		// Has it changed on the source as well?
		track, found := me.source.TrackByID(id)
		if !found {
			st.SendWarningf("The rating of track %s has changed on the device, but it has been removed from the source", id)
			continue
		}

		trackName := "<unknown>"
		if p, known := me.previous.PathForID(id); known {
			trackName = path.Base(p)
		}

		ratingOnSource := track.Rating(me.cfg.UseComputedRatings)
		if !source.RatingsEqual(ratingOnSource, ratingAtPreviousSync) {
			st.SendInfof("Song '%s' has changed its rating on both the source and the device. That's a conflict, let the source win.", trackName)
			continue
		}

		st.Send(status.UpdatingSongRatingIntoSourceMsg{TrackName: trackName, NewRating: ratingOnDevice})
		if err := track.SetRating(ratingOnDevice); err != nil {
			st.SendWarningf("Unable to update rating for track '%s' (to %s stars): %v", trackName, source.RatingString(ratingOnDevice), err)
		}
	}
}

// sortedIDs turns a set of track IDs into a deterministically ordered slice
func sortedIDs(set map[source.TrackID]struct{}) []source.TrackID {
	ids := make([]source.TrackID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// slashed normalizes a device path to forward slashes
func slashed(p string) string {
	return filepath.ToSlash(p)
}
