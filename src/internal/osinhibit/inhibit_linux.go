//go:build linux

package osinhibit

import (
	"os"

	"github.com/godbus/dbus/v5"
)

// Inhibit takes a sleep inhibitor lock from logind. The returned release
// function gives the lock back and must be called on all exit paths of the
// sync worker. If no lock can be taken, a warning is emitted once and the
// release function is a no-op.
func Inhibit(who, why string) (release func()) {
	release = func() {}

	conn, err := dbus.SystemBus()
	if err != nil {
		warnUnsupported(err)
		return
	}

	var fd dbus.UnixFD
	logind := conn.Object("org.freedesktop.login1", "/org/freedesktop/login1")
	err = logind.Call("org.freedesktop.login1.Manager.Inhibit", 0, "sleep:idle", who, why, "block").Store(&fd)
	if err != nil {
		conn.Close()
		warnUnsupported(err)
		return
	}

	// logind holds the inhibitor until the returned file descriptor is closed
	lock := os.NewFile(uintptr(fd), "starsync-inhibit")
	log.Debug("system sleep inhibited")

	return func() {
		lock.Close()
		conn.Close()
		log.Debug("system sleep inhibitor released")
	}
}
