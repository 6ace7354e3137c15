// Package osinhibit keeps the computer awake while a sync is in progress. A
// suspended computer in the middle of a file push would leave the device in a
// half-synced state.
package osinhibit

import (
	"sync"

	l "github.com/sirupsen/logrus"
)

var log *l.Entry = l.WithFields(l.Fields{"pkg": "osinhibit"})

var warnOnce sync.Once

// warnUnsupported is emitted once per process when no sleep inhibition
// facility is available. The sync proceeds anyway.
func warnUnsupported(reason interface{}) {
	warnOnce.Do(func() {
		log.Warnf("cannot inhibit system sleep, the computer may suspend during long syncs: %v", reason)
	})
}
