package gitdir

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// conflictMarkerPrefixes are the literal leftover-marker line starts counted
// by MarkerCounts.
var conflictMarkerPrefixes = []string{
	"<<<<<<<",
	"=======",
	">>>>>>>",
	"|||||||",
}

// MarkerCounts counts leftover conflict-marker lines per unmerged path, read
// from the worktree. Unreadable files contribute nothing.
func (d *Dir) MarkerCounts() (map[string]int, error) {
	index, err := d.ReadIndex()
	if err != nil {
		return nil, err
	}
	_, unmerged := splitStages(index.Entries)

	counts := make(map[string]int, len(unmerged))
	for path := range unmerged {
		content, err := os.ReadFile(filepath.Join(d.WorkDir, filepath.FromSlash(path)))
		if err != nil {
			continue
		}
		if n := countMarkerLines(content); n > 0 {
			counts[path] = n
		}
	}
	return counts, nil
}

func countMarkerLines(content []byte) int {
	count := 0
	for _, line := range strings.Split(string(content), "\n") {
		for _, prefix := range conflictMarkerPrefixes {
			if strings.HasPrefix(line, prefix) {
				count++
				break
			}
		}
	}
	return count
}

// BinaryPaths returns the unmerged paths whose content is binary, comparing
// against compareRef's blob when the worktree copy is gone. A compareRef
// that does not resolve (e.g. an unborn HEAD) yields an empty set, not an
// error.
func (d *Dir) BinaryPaths(compareRef string) ([]string, error) {
	index, err := d.ReadIndex()
	if err != nil {
		return nil, err
	}
	_, unmerged := splitStages(index.Entries)
	if len(unmerged) == 0 {
		return nil, nil
	}

	var compareTree map[string]TreeEntry
	if tip, ok := d.resolveish(compareRef); ok {
		if commit, err := d.ReadCommit(tip); err == nil {
			compareTree, _ = d.ReadTree(commit.Tree)
		}
	}

	var binary []string
	for path := range unmerged {
		content, err := os.ReadFile(filepath.Join(d.WorkDir, filepath.FromSlash(path)))
		if err != nil && compareTree != nil {
			if entry, ok := compareTree[path]; ok {
				if blob, ok := d.ReadBlob(entry.Hash); ok {
					content = blob
				}
			}
		}
		if len(content) > 0 && bytes.IndexByte(content, 0) != -1 {
			binary = append(binary, path)
		}
	}
	return binary, nil
}
