package gitdir

import (
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether a marker file is present in the metadata directory.
// Stat failures of any kind read as absent.
func (d *Dir) Exists(name string) bool {
	info, err := os.Stat(d.markerPath(name))
	return err == nil && !info.IsDir()
}

// Read returns a marker's trimmed content. Missing files and read failures
// both report "not there"; a marker read is never an error condition.
func (d *Dir) Read(name string) (string, bool) {
	content, err := os.ReadFile(d.markerPath(name))
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(content), "\r\n"), true
}

func (d *Dir) markerPath(name string) string {
	return filepath.Join(d.GitDir, filepath.FromSlash(name))
}
