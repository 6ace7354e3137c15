//go:build !linux

package osinhibit

// Inhibit is a no-op on platforms without a supported sleep inhibition
// facility. A warning is emitted once per process.
func Inhibit(who, why string) (release func()) {
	warnUnsupported("not supported on this platform")
	return func() {}
}
