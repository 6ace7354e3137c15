// Package folder implements the source adapter for a plain folder library: a
// directory tree of music files with a JSON index (playlists and ratings)
// stored next to them. Unlike the big library applications it has no
// persistent numeric playlist IDs, so playlists are identified by name.
package folder

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dhowden/tag"
	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
	f "gitlab.com/go-utilities/file"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

var log *l.Entry = l.WithFields(l.Fields{"pkg": "folder"})

// Scheme is the name prefix of folder sources
const Scheme = "folder://"

// EnvFolderSource names the library root of a folder source that is reported
// during source discovery
const EnvFolderSource = "STARSYNC_FOLDER_SOURCE"

// Source is a folder library
type Source struct {
	root string
	idx  *index
	// byID maps track IDs back to library-relative paths
	byID map[source.TrackID]string
}

// New opens the folder library rooted at root
func New(root string) (*Source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve library root '%s'", root)
	}
	exists, err := f.Exists(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot check library root '%s'", abs)
	}
	if !exists {
		return nil, errors.Errorf("library root '%s' doesn't exist", abs)
	}

	idx, err := loadIndex(abs)
	if err != nil {
		return nil, err
	}

	me := &Source{root: abs, idx: idx}
	me.reindex()
	return me, nil
}

// trackID derives the stable ID of a track from its slash-normalized path
// relative to the library root
func trackID(relativePath string) source.TrackID {
	return source.TrackID(xxhash.Sum64String(filepath.ToSlash(relativePath)))
}

// reindex rebuilds the ID lookup table from the index playlists
func (me *Source) reindex() {
	me.byID = make(map[source.TrackID]string)
	for _, pl := range me.idx.Playlists {
		for _, rel := range pl.Tracks {
			me.byID[trackID(rel)] = rel
		}
	}
	for rel := range me.idx.Ratings {
		me.byID[trackID(rel)] = rel
	}
}

// Name returns the routable identity of the library ("folder://<root>")
func (me *Source) Name() string {
	return Scheme + filepath.ToSlash(me.root)
}

// Playlists enumerates the playlists of the library. A folder library only
// has user playlists.
func (me *Source) Playlists() ([]source.Playlist, error) {
	playlists := make([]source.Playlist, 0, len(me.idx.Playlists))
	for _, pl := range me.idx.Playlists {
		playlists = append(playlists, &playlist{src: me, name: pl.Name})
	}
	return playlists, nil
}

// PlaylistByName looks up a playlist by its display name
func (me *Source) PlaylistByName(name string) (source.Playlist, bool) {
	if _, exists := me.idx.playlist(name); !exists {
		return nil, false
	}
	return &playlist{src: me, name: name}, true
}

// PlaylistByID looks up a playlist by its persistent ID. Folder libraries
// only have name IDs.
func (me *Source) PlaylistByID(id source.PlaylistID) (source.Playlist, bool) {
	name, isName := id.Name()
	if !isName {
		return nil, false
	}
	return me.PlaylistByName(name)
}

// TrackByID looks up a track by its persistent ID
func (me *Source) TrackByID(id source.TrackID) (source.Track, bool) {
	rel, exists := me.byID[id]
	if !exists {
		return nil, false
	}
	return &track{src: me, rel: rel}, true
}

// playlist is one playlist of a folder library
type playlist struct {
	src  *Source
	name string
}

func (me *playlist) Name() string { return me.name }

func (me *playlist) ID() source.PlaylistID { return source.NameID(me.name) }

func (me *playlist) Tracks() ([]source.Track, error) {
	pl, exists := me.src.idx.playlist(me.name)
	if !exists {
		return nil, errors.Errorf("playlist '%s' doesn't exist", me.name)
	}
	tracks := make([]source.Track, 0, len(pl.Tracks))
	for _, rel := range pl.Tracks {
		tracks = append(tracks, &track{src: me.src, rel: rel})
	}
	return tracks, nil
}

// ChangeContentsTo replaces the track sequence of the playlist. The library
// index is rewritten atomically, so there are no partial edits.
func (me *playlist) ChangeContentsTo(ids []source.TrackID) (err error) {
	pl, exists := me.src.idx.playlist(me.name)
	if !exists {
		err = errors.Errorf("playlist '%s' doesn't exist", me.name)
		return
	}

	relativePaths := make([]string, 0, len(ids))
	for _, id := range ids {
		rel, known := me.src.byID[id]
		if !known {
			err = errors.Errorf("track %s is not part of the library", id)
			return
		}
		relativePaths = append(relativePaths, rel)
	}

	previous := pl.Tracks
	pl.Tracks = relativePaths
	if err = me.src.idx.save(me.src.root); err != nil {
		pl.Tracks = previous
		return
	}
	me.src.reindex()
	return
}

// track is one music file of a folder library
type track struct {
	src *Source
	rel string
}

// Name returns the track title from the audio tags, falling back to the file
// name without extension
func (me *track) Name() string {
	fallback := strings.TrimSuffix(filepath.Base(me.rel), filepath.Ext(me.rel))

	file, err := os.Open(me.absolutePath())
	if err != nil {
		return fallback
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata.Title() == "" {
		return fallback
	}
	return metadata.Title()
}

func (me *track) ID() source.TrackID { return trackID(me.rel) }

func (me *track) absolutePath() string {
	return filepath.Join(me.src.root, filepath.FromSlash(me.rel))
}

func (me *track) AbsolutePath() (string, error) {
	path := me.absolutePath()
	exists, err := f.Exists(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot check track file '%s'", path)
	}
	if !exists {
		return "", errors.Errorf("track file '%s' doesn't exist", path)
	}
	return path, nil
}

// Rating returns the user rating of the track. A folder library only stores
// user-set ratings, so the computed-ratings flag has no effect here.
func (me *track) Rating(useComputed bool) *source.Rating {
	rating, exists := me.src.idx.Ratings[me.rel]
	if !exists || !rating.IsValid() {
		return nil
	}
	r := rating
	return &r
}

// SetRating sets or clears the rating of the track and rewrites the index
func (me *track) SetRating(r *source.Rating) (err error) {
	if r != nil && !r.IsValid() {
		err = errors.Errorf("%d is no valid rating", *r)
		return
	}

	previous, hadPrevious := me.src.idx.Ratings[me.rel]
	if r == nil {
		delete(me.src.idx.Ratings, me.rel)
	} else {
		me.src.idx.Ratings[me.rel] = *r
	}

	if err = me.src.idx.save(me.src.root); err != nil {
		if hadPrevious {
			me.src.idx.Ratings[me.rel] = previous
		} else {
			delete(me.src.idx.Ratings, me.rel)
		}
		return
	}

	log.Debugf("rating of '%s' set to %s", me.rel, source.RatingString(r))
	return
}

func (me *track) FileSize() (uint64, error) {
	info, err := os.Stat(me.absolutePath())
	if err != nil {
		return 0, errors.Wrapf(err, "cannot stat track file '%s'", me.absolutePath())
	}
	return uint64(info.Size()), nil
}
