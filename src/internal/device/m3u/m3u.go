// Package m3u reads playlist files found on a device. The files are plain
// line-oriented M3U: no #EXTM3U header is required, URL entries are skipped
// silently, path entries are taken verbatim.
package m3u

import (
	"io"
	"net/url"
	"strings"

	"github.com/ushis/m3u"
)

// Playlist is the path content of one M3U file
type Playlist struct {
	paths []string
}

// Parse reads an M3U playlist. Entries that cannot be parsed are dropped;
// there is no error since a damaged playlist line must not abort a sync.
func Parse(r io.Reader) Playlist {
	var pl Playlist

	// the parser drops a last line that has no line break after it, and the
	// sync writes its playlists without a trailing line break, so one is
	// appended here
	list, err := m3u.Parse(io.MultiReader(r, strings.NewReader("\n")))
	if err != nil {
		return pl
	}

	for _, track := range list {
		path := strings.TrimSpace(track.Path)
		if len(path) == 0 {
			continue
		}
		// skip URL entries (e.g. web radios): they have no file on the device
		if uri, err := url.Parse(path); err == nil && len(uri.Scheme) > 1 {
			continue
		}
		pl.paths = append(pl.paths, path)
	}

	return pl
}

// Paths returns the path entries in playlist order
func (me Playlist) Paths() []string {
	return me.paths
}
