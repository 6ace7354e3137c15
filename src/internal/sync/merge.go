package sync

import (
	"bufio"
	"io"
	"strings"

	"github.com/epiclabs-io/diff3"
	"github.com/pkg/errors"
	"gitlab.com/mipimipi/starsync/src/internal/source"
)

// threeWayMerge reconciles the track sequence of a playlist that diverged on
// the source (local) and on the device against their common ancestor. Each
// track ID is treated as one atomic line of a text merge. Conflicts are not
// surfaced: the source-side hunk wins, deterministically, consistent with how
// rating conflicts are resolved.
func threeWayMerge(ancestor, local, device []source.TrackID) ([]source.TrackID, error) {
	// trivial cases need no merge: if one side is unchanged, the other side
	// is the result, and identical edits on both sides are taken as-is
	if idsEqual(device, ancestor) || idsEqual(local, device) {
		return local, nil
	}
	if idsEqual(local, ancestor) {
		return device, nil
	}

	merged, err := diff3.Merge(
		idsReader(local),
		idsReader(ancestor),
		idsReader(device),
		false,
		"source",
		"device",
	)
	if err != nil {
		return nil, errors.Wrap(err, "cannot merge playlist contents")
	}

	return parseMergeOutput(merged.Result)
}

// idsReader renders a track sequence as the line-oriented text the merger
// works on
func idsReader(ids []source.TrackID) *strings.Reader {
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, id.String())
	}
	return strings.NewReader(strings.Join(lines, "\n"))
}

// merge output section while walking through conflict markers
type mergeSection int

const (
	sectionMerged mergeSection = iota
	sectionSource
	sectionAncestor
	sectionDevice
)

// parseMergeOutput reads the merger output back into a track sequence. In
// conflict regions only the source-side lines are kept.
func parseMergeOutput(r io.Reader) (ids []source.TrackID, err error) {
	section := sectionMerged

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "<<<<<<<"):
			section = sectionSource
			continue
		case strings.HasPrefix(line, "|||||||"):
			section = sectionAncestor
			continue
		case strings.HasPrefix(line, "======="):
			section = sectionDevice
			continue
		case strings.HasPrefix(line, ">>>>>>>"):
			section = sectionMerged
			continue
		}

		if section == sectionAncestor || section == sectionDevice {
			continue
		}
		if len(line) == 0 {
			continue
		}

		var id source.TrackID
		if id, err = source.ParseTrackID(line); err != nil {
			err = errors.Wrap(err, "unexpected merge output")
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read merge output")
	}

	return ids, nil
}
