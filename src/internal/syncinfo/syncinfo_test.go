package syncinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

func testInfo() *Info {
	return New(
		"/home/me/Music",
		map[string]SongEntry{
			"Artist/Song.mp3": {ID: 0xab12, Rating: source.NewRating(4)},
			"other.mp3":       {ID: 0xcd34},
		},
		map[string]PlaylistEntry{
			"Chill.m3u": {ID: source.NameID("Chill"), Tracks: []source.TrackID{0xab12, 0xcd34}},
		},
	)
}

func TestSongDataKeysAreLowercased(t *testing.T) {
	info := testInfo()

	_, exists := info.SongData["Artist/Song.mp3"]
	assert.False(t, exists)
	entry, exists := info.SongData["artist/song.mp3"]
	require.True(t, exists)
	assert.Equal(t, source.TrackID(0xab12), entry.ID)
}

func TestIDForRelativePath(t *testing.T) {
	info := testInfo()

	// lookups are case-insensitive and tolerate a leading music/ segment
	for _, path := range []string{
		"Artist/Song.mp3",
		"artist/song.mp3",
		"ARTIST/SONG.MP3",
		"music/Artist/Song.mp3",
		"Artist\\Song.mp3",
	} {
		id, found := info.IDForRelativePath(path)
		assert.True(t, found, path)
		assert.Equal(t, source.TrackID(0xab12), id, path)
	}

	_, found := info.IDForRelativePath("unknown.mp3")
	assert.False(t, found)
}

func TestIDForFullPath(t *testing.T) {
	info := testInfo()

	id, found := info.IDForFullPath("/home/me/Music/Artist/Song.mp3")
	require.True(t, found)
	assert.Equal(t, source.TrackID(0xab12), id)
}

func TestRatingAndPathForID(t *testing.T) {
	info := testInfo()

	assert.Equal(t, source.NewRating(4), info.RatingForID(0xab12))
	assert.Nil(t, info.RatingForID(0xcd34))
	assert.Nil(t, info.RatingForID(0xffff))

	path, found := info.PathForID(0xcd34)
	require.True(t, found)
	assert.Equal(t, "other.mp3", path)
	_, found = info.PathForID(0xffff)
	assert.False(t, found)
}

func TestPlaylistLookup(t *testing.T) {
	info := testInfo()

	assert.True(t, info.HasPlaylistFileName("Chill.m3u"))
	assert.False(t, info.HasPlaylistFileName("chill.m3u"))

	entry, found := info.Playlist("Chill.m3u")
	require.True(t, found)
	assert.Equal(t, []source.TrackID{0xab12, 0xcd34}, entry.Tracks)
	name, isName := entry.ID.Name()
	require.True(t, isName)
	assert.Equal(t, "Chill", name)
}

func TestJSONRoundTrip(t *testing.T) {
	info := testInfo()
	info.Timestamp = time.Date(2023, 6, 24, 7, 3, 20, 0, time.UTC)

	data, err := info.JSON()
	require.NoError(t, err)
	// track IDs render as lowercase hex
	assert.Contains(t, string(data), `"ab12"`)
	// the timestamp is RFC 3339 UTC
	assert.Contains(t, string(data), `"2023-06-24T07:03:20Z"`)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, info.Hostname, parsed.Hostname)
	assert.Equal(t, info.CommonAncestor, parsed.CommonAncestor)
	assert.Equal(t, info.SongData, parsed.SongData)
	assert.Equal(t, info.Playlists, parsed.Playlists)
	assert.True(t, info.Timestamp.Equal(parsed.Timestamp))
}

// unknown fields in a manifest from a newer version are ignored
func TestParseIgnoresUnknownFields(t *testing.T) {
	info, err := Parse([]byte(`{"hostname": "box", "future_field": 42, "song_data": {}, "playlists": {}}`))
	require.NoError(t, err)
	assert.Equal(t, "box", info.Hostname)
}
