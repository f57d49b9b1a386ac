// Package config loads engine options from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options controls the engine's optional behaviors. All fields have safe
// defaults; a missing config file is not an error.
type Options struct {
	// SkipConflictDetail disables the marker and binary sub-scans;
	// conflicted entries then stay manual conflicts with no marker count.
	SkipConflictDetail bool `yaml:"skip_conflict_detail"`
	// MaxUntrackedFiles caps how many untracked entries a snapshot keeps.
	// Zero means no cap.
	MaxUntrackedFiles int `yaml:"max_untracked_files"`
	// WatchDebounceMS is the quiet window the watcher waits after a
	// filesystem event before recomputing a snapshot.
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
	// DebugLog is the debug log file path; empty disables debug logging.
	DebugLog string `yaml:"debug_log"`
}

// DefaultOptions returns the default engine options.
func DefaultOptions() *Options {
	return &Options{
		SkipConflictDetail: false,
		MaxUntrackedFiles:  0,
		WatchDebounceMS:    600,
	}
}

// Load reads options from the YAML file at path, layered over the defaults.
// A missing file yields the defaults; a malformed file is an error.
func Load(path string) (*Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, opts); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if opts.WatchDebounceMS < 0 {
		opts.WatchDebounceMS = 0
	}
	return opts, nil
}

// WatchDebounce returns the watcher debounce as a duration.
func (o *Options) WatchDebounce() time.Duration {
	return time.Duration(o.WatchDebounceMS) * time.Millisecond
}
