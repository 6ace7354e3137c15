package source

import (
	"fmt"
	"strings"

	"github.com/flytam/filenamify"
)

// CreateM3U renders an M3U playlist from relative paths. Each entry is
// prefixed with prefix, backslash separators are converted to forward
// slashes, and the lines are joined with CRLF. No #EXTM3U header is written -
// readers must not require one.
func CreateM3U(relativePaths []string, prefix string) string {
	lines := make([]string, 0, len(relativePaths))
	for _, rel := range relativePaths {
		entry := rel
		if prefix != "" {
			entry = strings.TrimSuffix(prefix, "/") + "/" + rel
		}
		lines = append(lines, strings.ReplaceAll(entry, "\\", "/"))
	}
	return strings.Join(lines, "\r\n")
}

// PlaylistM3U renders pl as an M3U playlist whose entries are relative to
// commonAncestor and prefixed with prefix. A track whose file is not below
// commonAncestor is an error that names the track.
func PlaylistM3U(pl Playlist, commonAncestor, prefix string) (string, error) {
	tracks, err := pl.Tracks()
	if err != nil {
		return "", err
	}

	relativePaths := make([]string, 0, len(tracks))
	for _, track := range tracks {
		abs, err := track.AbsolutePath()
		if err != nil {
			return "", err
		}
		rel, ok := PathUnder(abs, commonAncestor)
		if !ok {
			return "", fmt.Errorf("track '%s' is not a child of the common ancestor '%s'", track.Name(), commonAncestor)
		}
		relativePaths = append(relativePaths, rel)
	}

	return CreateM3U(relativePaths, prefix), nil
}

// SuitableFilename derives the name of the M3U file a playlist is stored
// under on the device: the sanitized playlist name plus the ".m3u" extension
func SuitableFilename(pl Playlist) string {
	name, err := filenamify.Filenamify(pl.Name(), filenamify.Options{Replacement: "_"})
	if err != nil || name == "" {
		name = "playlist"
	}
	return name + ".m3u"
}
