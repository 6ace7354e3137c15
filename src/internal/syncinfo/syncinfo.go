// Package syncinfo implements the manifest that is written to the device at
// the end of each sync cycle. During the next cycle it acts as the common
// ancestor of the three-way merge between the source and the device.
package syncinfo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

// SongEntry is what the manifest remembers about one synced file
type SongEntry struct {
	ID     source.TrackID `json:"id"`
	Rating *source.Rating `json:"rating"`
}

// PlaylistEntry is what the manifest remembers about one pushed playlist: its
// persistent ID and the track order as it was pushed
type PlaylistEntry struct {
	ID     source.PlaylistID `json:"id"`
	Tracks []source.TrackID  `json:"tracks"`
}

// Info is the persisted state of the previous sync. The keys of SongData are
// relative paths below CommonAncestor, lowercased so that lookups are robust
// to file system casing; the keys of Playlists are M3U file names.
type Info struct {
	Hostname       string                   `json:"hostname"`
	Timestamp      time.Time                `json:"timestamp"`
	Session        string                   `json:"session"`
	CommonAncestor string                   `json:"common_ancestor"`
	SongData       map[string]SongEntry     `json:"song_data"`
	Playlists      map[string]PlaylistEntry `json:"playlists"`
}

// New creates the manifest of the current sync cycle. The keys of songData
// may be in original casing, they are lowercased here.
func New(commonAncestor string, songData map[string]SongEntry, playlists map[string]PlaylistEntry) *Info {
	lowercased := make(map[string]SongEntry, len(songData))
	for path, entry := range songData {
		lowercased[strings.ToLower(filepath.ToSlash(path))] = entry
	}

	if playlists == nil {
		playlists = make(map[string]PlaylistEntry)
	}

	return &Info{
		Hostname:       CurrentHostname(),
		Timestamp:      time.Now().UTC(),
		Session:        uuid.NewString(),
		CommonAncestor: commonAncestor,
		SongData:       lowercased,
		Playlists:      playlists,
	}
}

// CurrentHostname returns the hostname of this computer. It is stored in the
// manifest so that a sync from a different computer can be detected.
func CurrentHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "<unknown>"
	}
	return hostname
}

// Parse reads a manifest from its JSON representation
func Parse(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.Wrap(err, "sync info couldn't be unmarshalled")
	}
	return &info, nil
}

// JSON returns the pretty-printed JSON representation of the manifest
func (me *Info) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(me, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "sync info couldn't be marshalled")
	}
	return data, nil
}

// IDForRelativePath looks up the track ID for a path relative to the music
// folder of the device. A leading "music/" segment is tolerated and stripped,
// backslash separators are treated as forward slashes, and the lookup itself
// is case-insensitive.
func (me *Info) IDForRelativePath(relativePath string) (source.TrackID, bool) {
	key := strings.ToLower(strings.ReplaceAll(filepath.ToSlash(relativePath), "\\", "/"))
	key = strings.TrimPrefix(key, "music/")
	entry, exists := me.SongData[key]
	if !exists {
		return 0, false
	}
	return entry.ID, true
}

// IDForFullPath looks up the track ID for an absolute path on the source by
// first stripping the common ancestor
func (me *Info) IDForFullPath(path string) (source.TrackID, bool) {
	relative, ok := source.PathUnder(path, me.CommonAncestor)
	if !ok {
		relative = path
	}
	return me.IDForRelativePath(relative)
}

// RatingForID returns the rating a track had at the previous sync
func (me *Info) RatingForID(needle source.TrackID) *source.Rating {
	for _, entry := range me.SongData {
		if entry.ID == needle {
			return entry.Rating
		}
	}
	return nil
}

// PathForID returns the relative path a track was stored under at the
// previous sync
func (me *Info) PathForID(needle source.TrackID) (string, bool) {
	for path, entry := range me.SongData {
		if entry.ID == needle {
			return path, true
		}
	}
	return "", false
}

// Playlist returns what was pushed under the given M3U file name at the
// previous sync
func (me *Info) Playlist(fileName string) (PlaylistEntry, bool) {
	entry, exists := me.Playlists[fileName]
	return entry, exists
}

// HasPlaylistFileName reports whether a playlist was pushed under the given
// M3U file name at the previous sync
func (me *Info) HasPlaylistFileName(needle string) bool {
	_, exists := me.Playlists[needle]
	return exists
}
