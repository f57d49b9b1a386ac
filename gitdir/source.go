package gitdir

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	zeroHash = "0000000000000000000000000000000000000000"
	zeroMode = "000000"
	noSub    = "N..."
)

// RawStatus renders the repository's current status as a NUL-delimited
// porcelain-style stream: branch headers first, then one record per changed,
// unmerged or untracked path. Rename/copy records carry their origin path in
// a separate trailing record.
//
// The comparison is a point-in-time three-way read of HEAD tree, index and
// worktree; ignore rules are not applied (the engine's callers filter
// untracked noise through configuration).
func (d *Dir) RawStatus() ([]byte, error) {
	var buf bytes.Buffer

	if err := d.writeBranchHeaders(&buf); err != nil {
		return nil, err
	}

	index, err := d.ReadIndex()
	if err != nil {
		return nil, err
	}
	headTree, err := d.HeadTree()
	if err != nil {
		return nil, err
	}

	stageZero, unmerged := splitStages(index.Entries)

	d.writeChangedRecords(&buf, stageZero, headTree)
	d.writeUnmergedRecords(&buf, unmerged)
	d.writeUntrackedRecords(&buf, index.Entries)

	return buf.Bytes(), nil
}

func (d *Dir) writeBranchHeaders(buf *bytes.Buffer) error {
	head, err := d.ReadHead()
	if err != nil {
		return err
	}

	oid := head.Tip
	if oid == "" {
		oid = "(initial)"
	}
	writeRecord(buf, "# branch.oid "+oid)

	branch := head.Branch
	if head.Detached {
		branch = "(detached)"
	}
	writeRecord(buf, "# branch.head "+branch)

	if head.Branch == "" {
		return nil
	}
	upstream, ok := d.BranchUpstream(head.Branch)
	if !ok {
		return nil
	}
	writeRecord(buf, "# branch.upstream "+upstream)

	if ahead, behind, ok := d.AheadBehind(head.Tip, "refs/remotes/"+upstream); ok {
		writeRecord(buf, fmt.Sprintf("# branch.ab +%d -%d", ahead, behind))
	}
	return nil
}

// writeChangedRecords emits "1 XY ..." records from the three-way compare of
// HEAD tree (index letter X) and worktree (letter Y) around the index.
func (d *Dir) writeChangedRecords(buf *bytes.Buffer, stageZero map[string]IndexEntry, headTree map[string]TreeEntry) {
	paths := make(map[string]bool, len(stageZero)+len(headTree))
	for p := range stageZero {
		paths[p] = true
	}
	for p := range headTree {
		paths[p] = true
	}

	for _, path := range sortedKeys(paths) {
		indexEntry, inIndex := stageZero[path]
		headEntry, inHead := headTree[path]

		x, y := byte('.'), byte('.')
		switch {
		case !inIndex:
			x = 'D'
		case !inHead:
			x = 'A'
		case headEntry.Hash != indexEntry.Hash:
			x = 'M'
		}

		mW := zeroMode
		if inIndex {
			switch changed, gone := d.worktreeDiffers(path, indexEntry); {
			case gone:
				y = 'D'
			case changed:
				y = 'M'
				mW = indexModeString(indexEntry.Mode)
			default:
				mW = indexModeString(indexEntry.Mode)
			}
		}

		if x == '.' && y == '.' {
			continue
		}

		mH, hH := zeroMode, zeroHash
		if inHead {
			mH, hH = normalizeTreeMode(headEntry.Mode), headEntry.Hash
		}
		mI, hI := zeroMode, zeroHash
		if inIndex {
			mI, hI = indexModeString(indexEntry.Mode), indexEntry.Hash
		}

		sub := noSub
		if mH == SubmoduleMode || mI == SubmoduleMode {
			sub = submoduleField(x, y)
		}

		writeRecord(buf, fmt.Sprintf("1 %c%c %s %s %s %s %s %s %s", x, y, sub, mH, mI, mW, hH, hI, path))
	}
}

// writeUnmergedRecords emits "u XY ..." records. The XY code is derived from
// which stages are present: base=1, ours=2, theirs=3.
func (d *Dir) writeUnmergedRecords(buf *bytes.Buffer, unmerged map[string]map[int]IndexEntry) {
	for _, path := range sortedEntryKeys(unmerged) {
		stages := unmerged[path]
		code := unmergedCode(stages)

		modes := [3]string{zeroMode, zeroMode, zeroMode}
		hashes := [3]string{zeroHash, zeroHash, zeroHash}
		for stage := 1; stage <= 3; stage++ {
			if e, ok := stages[stage]; ok {
				modes[stage-1] = indexModeString(e.Mode)
				hashes[stage-1] = e.Hash
			}
		}

		mW := zeroMode
		if _, err := os.Stat(filepath.Join(d.WorkDir, filepath.FromSlash(path))); err == nil {
			mW = modes[1]
			if mW == zeroMode {
				mW = "100644"
			}
		}

		writeRecord(buf, fmt.Sprintf("u %s %s %s %s %s %s %s %s %s %s",
			code, noSub, modes[0], modes[1], modes[2], mW, hashes[0], hashes[1], hashes[2], path))
	}
}

// writeUntrackedRecords walks the worktree for paths absent from the index
// at any stage. The metadata directory is never descended into.
func (d *Dir) writeUntrackedRecords(buf *bytes.Buffer, entries []IndexEntry) {
	tracked := make(map[string]bool, len(entries))
	for _, e := range entries {
		tracked[e.Path] = true
	}

	var untracked []string
	_ = filepath.WalkDir(d.WorkDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if filepath.Join(d.WorkDir, ".git") == path || path == d.GitDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(d.WorkDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == ".git" {
			return nil
		}
		if !tracked[rel] {
			untracked = append(untracked, rel)
		}
		return nil
	})

	sort.Strings(untracked)
	for _, path := range untracked {
		writeRecord(buf, "? "+path)
	}
}

// worktreeDiffers compares a worktree file against its index entry by size
// and mtime first, content hash only when the cheap check is inconclusive.
func (d *Dir) worktreeDiffers(path string, entry IndexEntry) (changed, gone bool) {
	full := filepath.Join(d.WorkDir, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil {
		return false, true
	}
	if indexModeString(entry.Mode) == SubmoduleMode {
		// Submodule tips are compared by their own HEAD, which this
		// source does not descend into.
		return false, false
	}
	if info.ModTime().Equal(entry.MTime) && uint32(info.Size()) == entry.Size {
		return false, false
	}
	hash, err := hashBlobFile(full)
	if err != nil {
		return false, false
	}
	return hash != entry.Hash, false
}

// hashBlobFile computes the object hash of a worktree file.
func hashBlobFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// SubmoduleMode is the sentinel tree mode for gitlink entries.
const SubmoduleMode = "160000"

func submoduleField(x, y byte) string {
	if x == 'M' || y == 'M' {
		return "SC.."
	}
	return "S..."
}

// unmergedCode maps the set of present stages to the two-letter conflict
// code: all three → UU, ours+theirs → AA, base+ours → UD, base+theirs → DU,
// ours only → AU, theirs only → UA, base only → DD.
func unmergedCode(stages map[int]IndexEntry) string {
	_, base := stages[1]
	_, ours := stages[2]
	_, theirs := stages[3]
	switch {
	case base && ours && theirs:
		return "UU"
	case ours && theirs:
		return "AA"
	case base && ours:
		return "UD"
	case base && theirs:
		return "DU"
	case ours:
		return "AU"
	case theirs:
		return "UA"
	default:
		return "DD"
	}
}

func splitStages(entries []IndexEntry) (map[string]IndexEntry, map[string]map[int]IndexEntry) {
	stageZero := make(map[string]IndexEntry)
	unmerged := make(map[string]map[int]IndexEntry)
	for _, e := range entries {
		if e.Stage == 0 {
			stageZero[e.Path] = e
			continue
		}
		if unmerged[e.Path] == nil {
			unmerged[e.Path] = make(map[int]IndexEntry)
		}
		unmerged[e.Path][e.Stage] = e
	}
	return stageZero, unmerged
}

func indexModeString(mode uint32) string {
	return fmt.Sprintf("%06o", mode)
}

// normalizeTreeMode pads tree-object modes ("40000", "100644") to the
// six-digit form the stream uses.
func normalizeTreeMode(mode string) string {
	for len(mode) < 6 {
		mode = "0" + mode
	}
	return mode
}

func writeRecord(buf *bytes.Buffer, record string) {
	buf.WriteString(record)
	buf.WriteByte(0)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedEntryKeys(m map[string]map[int]IndexEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
