package source

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// TrackID is the persistent identifier of a track within a source. It is
// serialized as lowercase hexadecimal without a prefix, which is also how the
// backends (e.g. iTunes persistent IDs) display it.
type TrackID uint64

func (me TrackID) String() string {
	return strconv.FormatUint(uint64(me), 16)
}

// ParseTrackID parses the lowercase hexadecimal representation of a track ID
func ParseTrackID(s string) (TrackID, error) {
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "'%s' is no valid track ID", s)
	}
	return TrackID(id), nil
}

// MarshalJSON serializes the ID as a hex string
func (me TrackID) MarshalJSON() ([]byte, error) {
	return json.Marshal(me.String())
}

// UnmarshalJSON deserializes the ID from a hex string
func (me *TrackID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParseTrackID(s)
	if err != nil {
		return err
	}
	*me = id
	return nil
}

// PlaylistID is the persistent identifier of a playlist. Sources that assign
// numeric persistent IDs (e.g. iTunes) use the number variant. Sources without
// persistent playlist IDs fall back to the name variant - which means the
// correspondence is lost if the playlist is renamed between two syncs.
type PlaylistID struct {
	number *uint64
	name   *string
}

// NumberID creates a playlist ID from a numeric persistent ID
func NumberID(n uint64) PlaylistID {
	return PlaylistID{number: &n}
}

// NameID creates a playlist ID from a playlist name
func NameID(n string) PlaylistID {
	return PlaylistID{name: &n}
}

// Number returns the numeric persistent ID, if this is a number variant
func (me PlaylistID) Number() (uint64, bool) {
	if me.number == nil {
		return 0, false
	}
	return *me.number, true
}

// Name returns the playlist name, if this is a name variant
func (me PlaylistID) Name() (string, bool) {
	if me.name == nil {
		return "", false
	}
	return *me.name, true
}

// Equal reports whether both IDs have the same variant and value
func (me PlaylistID) Equal(other PlaylistID) bool {
	if me.number != nil && other.number != nil {
		return *me.number == *other.number
	}
	if me.name != nil && other.name != nil {
		return *me.name == *other.name
	}
	return false
}

// SameVariant reports whether both IDs use the same variant. The sync info
// records which variant a backend used, so that a backend change between two
// sync cycles can be detected.
func (me PlaylistID) SameVariant(other PlaylistID) bool {
	return (me.number != nil) == (other.number != nil)
}

func (me PlaylistID) String() string {
	if me.number != nil {
		return strconv.FormatUint(*me.number, 16)
	}
	if me.name != nil {
		return *me.name
	}
	return "<empty>"
}

type playlistIDJSON struct {
	Number *string `json:"number,omitempty"`
	Name   *string `json:"name,omitempty"`
}

// MarshalJSON serializes the ID as {"number": "<hex>"} or {"name": "<name>"}
func (me PlaylistID) MarshalJSON() ([]byte, error) {
	var aux playlistIDJSON
	switch {
	case me.number != nil:
		s := strconv.FormatUint(*me.number, 16)
		aux.Number = &s
	case me.name != nil:
		aux.Name = me.name
	default:
		return nil, fmt.Errorf("playlist ID has no value")
	}
	return json.Marshal(aux)
}

// UnmarshalJSON deserializes the ID from its tagged representation
func (me *PlaylistID) UnmarshalJSON(data []byte) error {
	var aux playlistIDJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Number != nil:
		n, err := strconv.ParseUint(*aux.Number, 16, 64)
		if err != nil {
			return errors.Wrapf(err, "'%s' is no valid playlist ID", *aux.Number)
		}
		*me = NumberID(n)
	case aux.Name != nil:
		*me = NameID(*aux.Name)
	default:
		return fmt.Errorf("playlist ID has neither a number nor a name")
	}
	return nil
}

// Rating is the user rating of a track, between 1 and 5 stars. Absence of a
// rating is expressed by a nil *Rating - zero is not a rating.
type Rating uint8

// NewRating creates a rating value. n must be between 1 and 5.
func NewRating(n uint8) *Rating {
	r := Rating(n)
	return &r
}

// IsValid checks if the rating is between 1 and 5
func (me Rating) IsValid() bool {
	return me >= 1 && me <= 5
}

// RatingsEqual reports whether two optional ratings are the same
func RatingsEqual(a, b *Rating) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// RatingString renders an optional rating for log messages
func RatingString(r *Rating) string {
	if r == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *r)
}
