package main

// Version is the starsync version. It is set at build time via
// -ldflags "-X main.Version=...".
var Version = "0.3.0"

func main() {
	execute()
}
