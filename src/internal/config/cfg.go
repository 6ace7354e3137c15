// Package config implements the per-device configuration that is stored on
// the device at StarSync/config/starsync.json.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// EnvLogLevel is the environment variable that controls the log verbosity
const EnvLogLevel = "STARSYNC_LOG"

// DefaultLogLevel is used when EnvLogLevel is not set
const DefaultLogLevel = "debug"

// Cfg stores the data from the per-device configuration file. Unknown fields
// are ignored on read.
type Cfg struct {
	// Source is the name of the source this device syncs against
	Source string `json:"source"`
	// IncludeRatings controls whether ratings are synced at all
	IncludeRatings bool `json:"include_ratings"`
	// UseComputedRatings controls whether ratings that the source computed
	// itself (as opposed to user-set ratings) are taken into account. This is
	// a workaround for backend quirks and is off by default.
	UseComputedRatings bool `json:"use_computed_ratings"`
	// Playlists are the names of the source playlists that are mirrored onto
	// the device
	Playlists []string `json:"playlists"`
}

// NewTemplate creates the config a freshly inited device starts with: all
// playlists of the source are selected
func NewTemplate(sourceName string, playlistNames []string) Cfg {
	return Cfg{
		Source:         sourceName,
		IncludeRatings: true,
		Playlists:      playlistNames,
	}
}

// Parse reads a configuration from its JSON representation, applying the
// defaults for absent fields (include_ratings: true, use_computed_ratings:
// false)
func Parse(data []byte) (cfg Cfg, err error) {
	cfg.IncludeRatings = true
	if err = json.Unmarshal(data, &cfg); err != nil {
		err = errors.Wrap(err, "configuration couldn't be unmarshalled")
		return Cfg{}, err
	}
	return
}

// JSON returns the pretty-printed JSON representation of the configuration
func (me Cfg) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(me, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "configuration couldn't be marshalled")
	}
	return data, nil
}

// Validate checks if the configuration is complete. If it's not, an error is
// returned
func (me *Cfg) Validate() (err error) {
	if me.Source == "" {
		err = errors.New("no source maintained")
		return
	}
	return
}

// LogLevel returns the log level from the environment (EnvLogLevel), falling
// back to DefaultLogLevel
func LogLevel() string {
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = DefaultLogLevel
	}
	return level
}
