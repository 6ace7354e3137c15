package folder

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

// IndexFile is the name of the library index inside the library root
const IndexFile = "starsync-library.json"

// indexPlaylist is one playlist of the library index. Tracks are paths
// relative to the library root, in playlist order.
type indexPlaylist struct {
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

// index is the JSON library index stored next to the music files. It holds
// everything the music files themselves cannot: playlists and ratings.
type index struct {
	Playlists []indexPlaylist          `json:"playlists"`
	Ratings   map[string]source.Rating `json:"ratings"`
}

// loadIndex reads the library index from the library root. A missing index
// file yields an empty library.
func loadIndex(root string) (*index, error) {
	idx := &index{Ratings: make(map[string]source.Rating)}

	data, err := os.ReadFile(filepath.Join(root, IndexFile))
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read library index in '%s'", root)
	}
	if err = json.Unmarshal(data, idx); err != nil {
		return nil, errors.Wrapf(err, "cannot parse library index in '%s'", root)
	}
	if idx.Ratings == nil {
		idx.Ratings = make(map[string]source.Rating)
	}
	return idx, nil
}

// save writes the library index atomically (temp file plus rename), so that a
// failure in the middle cannot leave a damaged index behind
func (me *index) save(root string) (err error) {
	data, err := json.MarshalIndent(me, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "cannot marshal library index")
		return
	}

	path := filepath.Join(root, IndexFile)
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, data, 0664); err != nil {
		err = errors.Wrapf(err, "cannot write library index to '%s'", tmp)
		return
	}
	if err = os.Rename(tmp, path); err != nil {
		err = errors.Wrapf(err, "cannot replace library index '%s'", path)
	}
	return
}

// playlist returns the index playlist with the given name
func (me *index) playlist(name string) (*indexPlaylist, bool) {
	for i := range me.Playlists {
		if me.Playlists[i].Name == name {
			return &me.Playlists[i], true
		}
	}
	return nil, false
}
