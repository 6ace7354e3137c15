package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

func ids(values ...uint64) []source.TrackID {
	result := make([]source.TrackID, 0, len(values))
	for _, v := range values {
		result = append(result, source.TrackID(v))
	}
	return result
}

// if the device did not change anything, the source order is the result
func TestMergeDeviceUnchanged(t *testing.T) {
	ancestor := ids(1, 2, 3)
	local := ids(3, 2, 1)

	merged, err := threeWayMerge(ancestor, local, ancestor)
	require.NoError(t, err)
	assert.Equal(t, local, merged)
}

// if the source did not change anything, the device order is the result
func TestMergeSourceUnchanged(t *testing.T) {
	ancestor := ids(1, 2, 3)
	device := ids(2, 1, 3)

	merged, err := threeWayMerge(ancestor, ancestor, device)
	require.NoError(t, err)
	assert.Equal(t, device, merged)
}

// non-overlapping edits on both sides are both kept
func TestMergeDisjointEdits(t *testing.T) {
	ancestor := ids(1, 2, 3, 4, 5, 6)
	// the source replaced the head ...
	local := ids(10, 2, 3, 4, 5, 6)
	// ... while the device replaced the tail
	device := ids(1, 2, 3, 4, 5, 60)

	merged, err := threeWayMerge(ancestor, local, device)
	require.NoError(t, err)
	assert.Equal(t, ids(10, 2, 3, 4, 5, 60), merged)
}

// a track appended on the device survives a source-side deletion elsewhere
func TestMergeDeviceAppendAndSourceDelete(t *testing.T) {
	ancestor := ids(1, 2, 3, 4)
	local := ids(2, 3, 4)
	device := ids(1, 2, 3, 4, 5)

	merged, err := threeWayMerge(ancestor, local, device)
	require.NoError(t, err)
	assert.Equal(t, ids(2, 3, 4, 5), merged)
}

// conflicting edits are resolved deterministically, without surfacing the
// conflict: the merge never fails and running it twice yields the same result
func TestMergeConflictIsDeterministic(t *testing.T) {
	ancestor := ids(1, 2, 3)
	local := ids(4, 2, 3)
	device := ids(5, 2, 3)

	first, err := threeWayMerge(ancestor, local, device)
	require.NoError(t, err)
	second, err := threeWayMerge(ancestor, local, device)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// the source-side edit survives
	assert.Contains(t, first, source.TrackID(4))
}

func TestMergeEmptyAncestor(t *testing.T) {
	merged, err := threeWayMerge(nil, ids(1, 2), ids(1, 2))
	require.NoError(t, err)
	assert.Equal(t, ids(1, 2), merged)
}
