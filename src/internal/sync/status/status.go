// Package status implements the channel the sync worker reports its progress
// on. There is exactly one producer (the worker thread); messages arrive in
// producer order.
package status

import (
	"fmt"
	"sync/atomic"

	"gitlab.com/mipimipi/starsync/src/internal/source"
)

// Progress marks that the sync has entered a new phase
type Progress string

// the phases of a sync cycle, in order
const (
	Started              Progress = "Started"
	ListingFilesOnDevice Progress = "ListingFilesOnDevice"
	ReverseSyncPlaylists Progress = "ReverseSyncPlaylists"
	ReverseSyncRatings   Progress = "ReverseSyncRatings"
	ListingFilesInSource Progress = "ListingFilesInSource"
	SyncingFiles         Progress = "SyncingFiles"
	PushingPlaylists     Progress = "PushingPlaylists"
	PushingRatings       Progress = "PushingRatings"
	UpdatingSyncInfo     Progress = "UpdatingSyncInfo"
	Done                 Progress = "Done"
)

// Message is one entry on the status channel
type Message interface {
	message()
}

// ProgressMsg reports that a new phase has been entered
type ProgressMsg struct {
	Progress Progress
}

// InfoMsg is an arbitrary info
type InfoMsg struct {
	Text string
}

// WarningMsg is a non-fatal warning
type WarningMsg struct {
	Text string
}

// RetrievingDevicePlaylistMsg reports that a playlist is being read from the
// device
type RetrievingDevicePlaylistMsg struct {
	FileName string
}

// ReverseSyncPlaylistMsg reports that a playlist is being reverse synced
type ReverseSyncPlaylistMsg struct {
	Name string
}

// UpdatingPlaylistIntoSourceMsg reports that a playlist is reverse-updated
// into the source
type UpdatingPlaylistIntoSourceMsg struct {
	Name       string
	NewContent []source.TrackID
}

// UpdatingSongRatingIntoSourceMsg reports that a rating change is imported
// back into the source
type UpdatingSongRatingIntoSourceMsg struct {
	TrackName string
	NewRating *source.Rating
}

// PushingFileMsg reports that a music file is about to be copied, together
// with the overall copy progress
type PushingFileMsg struct {
	Path string
	// Index is the number of this file within the push run, starting at 1
	Index int
	// Total is the number of files of the push run
	Total int
	// Bytes is the cumulative number of bytes after this file
	Bytes uint64
	// TotalBytes is the number of bytes of the push run
	TotalBytes uint64
}

// RemovingFileMsg reports that a music file is about to be removed
type RemovingFileMsg struct {
	Path string
}

// PushingPlaylistMsg reports that a playlist file is about to be written
type PushingPlaylistMsg struct {
	Name string
}

// RemovingPlaylistMsg reports that a playlist file is about to be removed
type RemovingPlaylistMsg struct {
	Path string
}

func (ProgressMsg) message()                     {}
func (InfoMsg) message()                         {}
func (WarningMsg) message()                      {}
func (RetrievingDevicePlaylistMsg) message()     {}
func (ReverseSyncPlaylistMsg) message()          {}
func (UpdatingPlaylistIntoSourceMsg) message()   {}
func (UpdatingSongRatingIntoSourceMsg) message() {}
func (PushingFileMsg) message()                  {}
func (RemovingFileMsg) message()                 {}
func (PushingPlaylistMsg) message()              {}
func (RemovingPlaylistMsg) message()             {}

// channel capacity. The driver is expected to drain the channel; if it does
// not keep up, messages are dropped rather than blocking the sync.
const capacity = 1024

// Sender is the producing end of the status channel
type Sender struct {
	ch     chan Message
	nWarns uint64
}

// Channel creates a status channel and returns its two ends
func Channel() (*Sender, <-chan Message) {
	ch := make(chan Message, capacity)
	return &Sender{ch: ch}, ch
}

// Send delivers a message. Warnings are counted.
func (me *Sender) Send(msg Message) {
	if _, isWarning := msg.(WarningMsg); isWarning {
		atomic.AddUint64(&me.nWarns, 1)
	}

	// a full channel means the receiving end has stopped draining. There is
	// nothing much we can do to recover, so the message is dropped.
	select {
	case me.ch <- msg:
	default:
	}
}

// SendInfo is a convenience function
func (me *Sender) SendInfo(text string) {
	me.Send(InfoMsg{Text: text})
}

// SendInfof is a convenience function
func (me *Sender) SendInfof(format string, args ...interface{}) {
	me.SendInfo(fmt.Sprintf(format, args...))
}

// SendWarning is a convenience function
func (me *Sender) SendWarning(text string) {
	me.Send(WarningMsg{Text: text})
}

// SendWarningf is a convenience function
func (me *Sender) SendWarningf(format string, args ...interface{}) {
	me.SendWarning(fmt.Sprintf(format, args...))
}

// SendProgress is a convenience function
func (me *Sender) SendProgress(progress Progress) {
	me.Send(ProgressMsg{Progress: progress})
}

// WarningsCount returns how many warnings have been sent so far
func (me *Sender) WarningsCount() uint64 {
	return atomic.LoadUint64(&me.nWarns)
}

// Close closes the channel. To be called by the producer when the sync cycle
// is over.
func (me *Sender) Close() {
	close(me.ch)
}
