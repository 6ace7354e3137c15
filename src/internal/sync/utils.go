package sync

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/mipimipi/starsync/src/internal/source"
)

// naming scheme of the synthetic ratings playlists. The spelling is
// contractual: the files written to the device are named exactly like this.
const (
	ratingsPlaylistPrefix = "Favourites - "
	ratingsPlaylistSuffix = " stars.m3u"
)

// PlaylistKind distinguishes regular user playlists from the synthetic
// ratings playlists, judging by the M3U file name
type PlaylistKind struct {
	name  string
	stars uint8
}

// Classify determines the kind of the playlist stored under the given M3U
// file name. It is total: any name that is not exactly a ratings playlist
// name is a regular playlist.
func Classify(fileName string) PlaylistKind {
	rest := strings.TrimPrefix(fileName, ratingsPlaylistPrefix)
	if rest != fileName && strings.HasSuffix(rest, ratingsPlaylistSuffix) {
		digits := strings.TrimSuffix(rest, ratingsPlaylistSuffix)
		stars, err := strconv.ParseUint(digits, 10, 8)
		if err == nil && len(digits) == 1 && stars >= 1 && stars <= 5 {
			return PlaylistKind{stars: uint8(stars)}
		}
	}
	return PlaylistKind{name: fileName}
}

// Stars returns the rating value of a ratings playlist
func (me PlaylistKind) Stars() (uint8, bool) {
	if me.stars == 0 {
		return 0, false
	}
	return me.stars, true
}

// IsRatings reports whether this is a ratings playlist
func (me PlaylistKind) IsRatings() bool {
	return me.stars != 0
}

// Name returns the file name of a regular playlist
func (me PlaylistKind) Name() string {
	return me.name
}

// FavouritesPlaylistName returns the M3U file name of the ratings playlist
// for the given number of stars
func FavouritesPlaylistName(stars uint8) string {
	return fmt.Sprintf("%s%d%s", ratingsPlaylistPrefix, stars, ratingsPlaylistSuffix)
}

// DifferenceBy returns the elements of left that are not contained in right,
// where membership is decided after applying norm to both sides. With
// strings.ToLower as norm this yields the case-insensitive set difference
// that keeps the sync robust to FAT32-style case-insensitive devices. The
// result is sorted so that the processing order is deterministic.
func DifferenceBy(left, right []string, norm func(string) string) []string {
	other := make(map[string]struct{}, len(right))
	for _, item := range right {
		other[norm(item)] = struct{}{}
	}

	var diff []string
	for _, item := range left {
		if _, exists := other[norm(item)]; !exists {
			diff = append(diff, item)
		}
	}
	sort.Strings(diff)
	return diff
}

// idsEqual reports whether two track sequences are identical including order
func idsEqual(a, b []source.TrackID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
