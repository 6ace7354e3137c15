package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackIDHex(t *testing.T) {
	id := TrackID(0xdeadbeef)
	assert.Equal(t, "deadbeef", id.String())

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"deadbeef"`, string(data))

	var parsed TrackID
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, id, parsed)

	_, err = ParseTrackID("not hex")
	assert.Error(t, err)
}

func TestPlaylistIDVariants(t *testing.T) {
	number := NumberID(0x1a2b)
	name := NameID("Chill")

	n, isNumber := number.Number()
	require.True(t, isNumber)
	assert.Equal(t, uint64(0x1a2b), n)
	_, isName := number.Name()
	assert.False(t, isName)

	s, isName := name.Name()
	require.True(t, isName)
	assert.Equal(t, "Chill", s)

	assert.True(t, number.Equal(NumberID(0x1a2b)))
	assert.False(t, number.Equal(NumberID(0x9999)))
	assert.True(t, name.Equal(NameID("Chill")))
	assert.False(t, name.Equal(NameID("Loud")))
	// IDs of different variants never match ...
	assert.False(t, number.Equal(name))
	// ... and the variant mismatch is detectable
	assert.False(t, number.SameVariant(name))
	assert.True(t, name.SameVariant(NameID("Other")))
}

func TestPlaylistIDJSON(t *testing.T) {
	data, err := json.Marshal(NumberID(0x1a2b))
	require.NoError(t, err)
	assert.JSONEq(t, `{"number": "1a2b"}`, string(data))

	data, err = json.Marshal(NameID("Chill"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Chill"}`, string(data))

	var parsed PlaylistID
	require.NoError(t, json.Unmarshal([]byte(`{"number": "1a2b"}`), &parsed))
	assert.True(t, parsed.Equal(NumberID(0x1a2b)))

	require.NoError(t, json.Unmarshal([]byte(`{"name": "Chill"}`), &parsed))
	assert.True(t, parsed.Equal(NameID("Chill")))

	assert.Error(t, json.Unmarshal([]byte(`{}`), &parsed))
}

func TestRatings(t *testing.T) {
	assert.True(t, RatingsEqual(nil, nil))
	assert.True(t, RatingsEqual(NewRating(3), NewRating(3)))
	assert.False(t, RatingsEqual(NewRating(3), NewRating(4)))
	assert.False(t, RatingsEqual(NewRating(3), nil))
	assert.False(t, RatingsEqual(nil, NewRating(3)))

	assert.True(t, Rating(1).IsValid())
	assert.True(t, Rating(5).IsValid())
	assert.False(t, Rating(0).IsValid())
	assert.False(t, Rating(6).IsValid())

	// a rating serializes as a plain integer, its absence as null
	data, err := json.Marshal(struct {
		Rating *Rating `json:"rating"`
	}{Rating: NewRating(4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rating": 4}`, string(data))

	data, err = json.Marshal(struct {
		Rating *Rating `json:"rating"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rating": null}`, string(data))
}
