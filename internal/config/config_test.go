package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.SkipConflictDetail)
	assert.Zero(t, opts.MaxUntrackedFiles)
	assert.Equal(t, 600, opts.WatchDebounceMS)
	assert.Equal(t, 600*time.Millisecond, opts.WatchDebounce())
}

func TestLoad(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		opts, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultOptions(), opts)
	})

	t.Run("missing file gives defaults", func(t *testing.T) {
		opts, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultOptions(), opts)
	})

	t.Run("partial file layers over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("skip_conflict_detail: true\nmax_untracked_files: 50\n"), 0o644))

		opts, err := Load(path)
		require.NoError(t, err)
		assert.True(t, opts.SkipConflictDetail)
		assert.Equal(t, 50, opts.MaxUntrackedFiles)
		assert.Equal(t, 600, opts.WatchDebounceMS)
	})

	t.Run("negative debounce clamps to zero", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("watch_debounce_ms: -5\n"), 0o644))

		opts, err := Load(path)
		require.NoError(t, err)
		assert.Zero(t, opts.WatchDebounceMS)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("watch_debounce_ms: [not a number\n"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
