package sync

// in-memory source double for the engine tests. The device side is covered by
// the disk backend over a temp directory, the source side by this double so
// that tests have full control over IDs, ratings and paths.

import (
	"os"

	"github.com/pkg/errors"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

type memTrack struct {
	src    *memSource
	id     source.TrackID
	name   string
	path   string
	rating *source.Rating
}

func (me *memTrack) Name() string       { return me.name }
func (me *memTrack) ID() source.TrackID { return me.id }

func (me *memTrack) AbsolutePath() (string, error) {
	if me.path == "" {
		return "", errors.New("track has no file")
	}
	return me.path, nil
}

func (me *memTrack) Rating(useComputed bool) *source.Rating {
	return me.rating
}

func (me *memTrack) SetRating(r *source.Rating) error {
	me.src.setRatingCalls = append(me.src.setRatingCalls, ratingCall{id: me.id, rating: r})
	me.rating = r
	return nil
}

func (me *memTrack) FileSize() (uint64, error) {
	info, err := os.Stat(me.path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

type memPlaylist struct {
	src      *memSource
	name     string
	id       source.PlaylistID
	trackIDs []source.TrackID
}

func (me *memPlaylist) Name() string          { return me.name }
func (me *memPlaylist) ID() source.PlaylistID { return me.id }

func (me *memPlaylist) Tracks() ([]source.Track, error) {
	tracks := make([]source.Track, 0, len(me.trackIDs))
	for _, id := range me.trackIDs {
		track, found := me.src.trackByID(id)
		if !found {
			return nil, errors.Errorf("track %s doesn't exist", id)
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (me *memPlaylist) ChangeContentsTo(ids []source.TrackID) error {
	copied := append([]source.TrackID(nil), ids...)
	me.src.changeCalls[me.name] = append(me.src.changeCalls[me.name], copied)
	me.trackIDs = copied
	return nil
}

type ratingCall struct {
	id     source.TrackID
	rating *source.Rating
}

type memSource struct {
	name      string
	tracks    []*memTrack
	playlists []*memPlaylist

	// recorded write calls
	changeCalls    map[string][][]source.TrackID
	setRatingCalls []ratingCall
}

func newMemSource() *memSource {
	return &memSource{
		name:        "memory",
		changeCalls: make(map[string][][]source.TrackID),
	}
}

func (me *memSource) addTrack(id source.TrackID, name, path string, rating *source.Rating) *memTrack {
	track := &memTrack{src: me, id: id, name: name, path: path, rating: rating}
	me.tracks = append(me.tracks, track)
	return track
}

func (me *memSource) addPlaylist(name string, id source.PlaylistID, trackIDs ...source.TrackID) *memPlaylist {
	pl := &memPlaylist{src: me, name: name, id: id, trackIDs: trackIDs}
	me.playlists = append(me.playlists, pl)
	return pl
}

func (me *memSource) Name() string { return me.name }

func (me *memSource) Playlists() ([]source.Playlist, error) {
	playlists := make([]source.Playlist, 0, len(me.playlists))
	for _, pl := range me.playlists {
		playlists = append(playlists, pl)
	}
	return playlists, nil
}

func (me *memSource) PlaylistByName(name string) (source.Playlist, bool) {
	for _, pl := range me.playlists {
		if pl.name == name {
			return pl, true
		}
	}
	return nil, false
}

func (me *memSource) PlaylistByID(id source.PlaylistID) (source.Playlist, bool) {
	for _, pl := range me.playlists {
		if pl.id.Equal(id) {
			return pl, true
		}
	}
	return nil, false
}

func (me *memSource) trackByID(id source.TrackID) (*memTrack, bool) {
	for _, track := range me.tracks {
		if track.id == id {
			return track, true
		}
	}
	return nil, false
}

func (me *memSource) TrackByID(id source.TrackID) (source.Track, bool) {
	return me.trackByID(id)
}
