package sync

import (
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/mipimipi/starsync/src/internal/source"
	"gitlab.com/mipimipi/starsync/src/internal/sync/status"
)

// FileData is what the file set knows about one selected track file
type FileData struct {
	// FileSize of the track file in bytes
	FileSize uint64
	ID       source.TrackID
	Rating   *source.Rating
}

// FileSet is the set of files that must be present on the device after the
// sync: the tracks of all selected playlists, keyed by their path relative to
// the common ancestor directory
type FileSet struct {
	CommonAncestor string
	// FilesData is keyed by slash-separated paths relative to CommonAncestor
	FilesData map[string]FileData
	// TotalSize of the file set in bytes. A file that appears in several
	// selected playlists is counted once.
	TotalSize uint64
}

// buildFileSet scans the selected playlists of the source and computes the
// file set and its common ancestor directory
func (me *Manager) buildFileSet(st *status.Sender) (*FileSet, error) {
	st.SendProgress(status.ListingFilesInSource)

	var totalSize uint64
	absData := make(map[string]FileData)

	for _, playlistName := range me.cfg.Playlists {
		pl, found := me.source.PlaylistByName(playlistName)
		if !found {
			st.SendWarningf("Unable to find playlist '%s'", playlistName)
			continue
		}

		tracks, err := pl.Tracks()
		if err != nil {
			st.SendWarningf("Unable to list tracks for playlist '%s': %v", pl.Name(), err)
			continue
		}

		for _, track := range tracks {
			path, err := track.AbsolutePath()
			if err != nil {
				st.SendWarningf("Unable to get path for song '%s': %v", track.Name(), err)
				continue
			}

			// the same file may be listed in several selected playlists. Its
			// size must not be counted twice.
			if _, exists := absData[path]; exists {
				continue
			}

			var fileSize uint64
			if fileSize, err = track.FileSize(); err != nil {
				st.SendWarningf("Unable to get file size for song '%s': %v", track.Name(), err)
				fileSize = 0
			}

			absData[path] = FileData{
				FileSize: fileSize,
				ID:       track.ID(),
				Rating:   track.Rating(me.cfg.UseComputedRatings),
			}
			totalSize += fileSize
		}
	}

	paths := make([]string, 0, len(absData))
	for path := range absData {
		paths = append(paths, path)
	}
	ancestor, found := commonAncestor(paths)
	if !found {
		return nil, &Error{Kind: NoCommonAncestor}
	}

	filesData := make(map[string]FileData, len(absData))
	for path, data := range absData {
		rel, ok := source.PathUnder(path, ancestor)
		if !ok {
			st.SendWarningf("File '%s' is not a child of the root folder '%s'. Ignoring this file", path, ancestor)
			continue
		}
		filesData[rel] = data
	}

	return &FileSet{
		CommonAncestor: ancestor,
		FilesData:      filesData,
		TotalSize:      totalSize,
	}, nil
}

// PathsByRating buckets the relative paths of the file set by their rating.
// All five buckets are present, empty ones included, so that the ratings
// playlists pushed to the device always cover the full range.
func (me *FileSet) PathsByRating() map[uint8][]string {
	buckets := make(map[uint8][]string, 5)
	for stars := uint8(1); stars <= 5; stars++ {
		buckets[stars] = []string{}
	}

	for path, data := range me.FilesData {
		if data.Rating == nil || !data.Rating.IsValid() {
			continue
		}
		stars := uint8(*data.Rating)
		buckets[stars] = append(buckets[stars], path)
	}

	for stars := range buckets {
		sort.Strings(buckets[stars])
	}
	return buckets
}

// commonAncestor computes the longest directory that is an ancestor of every
// path. found is false if the set is empty or the paths share no directory
// (e.g. different volumes).
func commonAncestor(paths []string) (ancestor string, found bool) {
	if len(paths) == 0 {
		return "", false
	}

	var common []string
	for i, path := range paths {
		dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(path)))
		components := strings.Split(dir, "/")
		if i == 0 {
			common = components
			continue
		}

		n := len(common)
		if len(components) < n {
			n = len(components)
		}
		j := 0
		for j < n && common[j] == components[j] {
			j++
		}
		common = common[:j]
		if len(common) == 0 {
			return "", false
		}
	}

	// a single empty component is the root directory of an absolute path
	if len(common) == 1 && common[0] == "" {
		return "/", true
	}
	return strings.Join(common, "/"), true
}
