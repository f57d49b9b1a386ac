package gitdir

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture builds a synthetic repository on disk: loose objects, refs, index
// and worktree files, without any external tooling.
type fixture struct {
	t    *testing.T
	work string
	git  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	work := t.TempDir()
	git := filepath.Join(work, ".git")
	for _, dir := range []string{
		filepath.Join(git, "objects"),
		filepath.Join(git, "refs", "heads"),
		filepath.Join(git, "refs", "remotes"),
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	f := &fixture{t: t, work: work, git: git}
	f.writeGitFile("HEAD", "ref: refs/heads/main\n")
	return f
}

func (f *fixture) writeGitFile(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.git, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fixture) writeWorkFile(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.work, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
}

// writeObject stores a loose object and returns its hash.
func (f *fixture) writeObject(objType string, body []byte) string {
	f.t.Helper()
	full := append([]byte(fmt.Sprintf("%s %d\x00", objType, len(body))), body...)
	hash := fmt.Sprintf("%x", sha1.Sum(full))

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(full)
	require.NoError(f.t, err)
	require.NoError(f.t, zw.Close())

	dir := filepath.Join(f.git, "objects", hash[:2])
	require.NoError(f.t, os.MkdirAll(dir, 0o755))
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, hash[2:]), compressed.Bytes(), 0o644))
	return hash
}

func (f *fixture) writeBlob(content string) string {
	return f.writeObject("blob", []byte(content))
}

// writeTree stores a flat tree; blobs maps name to blob hash.
func (f *fixture) writeTree(blobs map[string]string) string {
	f.t.Helper()
	names := make([]string, 0, len(blobs))
	for name := range blobs {
		names = append(names, name)
	}
	sort.Strings(names)

	var body bytes.Buffer
	for _, name := range names {
		raw, err := hex.DecodeString(blobs[name])
		require.NoError(f.t, err)
		body.WriteString("100644 " + name)
		body.WriteByte(0)
		body.Write(raw)
	}
	return f.writeObject("tree", body.Bytes())
}

func (f *fixture) writeCommit(tree string, parents []string, message string) string {
	f.t.Helper()
	var body strings.Builder
	fmt.Fprintf(&body, "tree %s\n", tree)
	for _, parent := range parents {
		fmt.Fprintf(&body, "parent %s\n", parent)
	}
	body.WriteString("author A U Thor <author@example.com> 1700000000 +0000\n")
	body.WriteString("committer A U Thor <author@example.com> 1700000000 +0000\n")
	body.WriteString("\n")
	body.WriteString(message)
	body.WriteString("\n")
	return f.writeObject("commit", []byte(body.String()))
}

// commitFile commits a single file on main and returns the commit hash.
func (f *fixture) commitFile(name, content string, parents ...string) string {
	f.t.Helper()
	blob := f.writeBlob(content)
	tree := f.writeTree(map[string]string{name: blob})
	commit := f.writeCommit(tree, parents, "add "+name)
	f.writeGitFile("refs/heads/main", commit+"\n")
	return commit
}

// indexSpec describes one entry for writeIndex.
type indexSpec struct {
	path  string
	hash  string
	size  uint32
	stage int
	mode  uint32
}

// writeIndex serializes a version-2 index.
func (f *fixture) writeIndex(specs ...indexSpec) {
	f.t.Helper()
	var buf bytes.Buffer
	buf.WriteString(indexSignature)
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(len(specs)))

	for _, spec := range specs {
		mode := spec.mode
		if mode == 0 {
			mode = 0o100644
		}
		fixed := make([]byte, indexEntryFixedSize)
		binary.BigEndian.PutUint32(fixed[24:28], mode)
		binary.BigEndian.PutUint32(fixed[36:40], spec.size)
		raw, err := hex.DecodeString(spec.hash)
		require.NoError(f.t, err)
		copy(fixed[40:60], raw)
		flags := uint16(spec.stage&0x3)<<12 | uint16(len(spec.path)&0xFFF)
		binary.BigEndian.PutUint16(fixed[60:62], flags)
		buf.Write(fixed)

		buf.WriteString(spec.path)
		padding := 8 - (indexEntryFixedSize+len(spec.path))%8
		buf.Write(make([]byte, padding))
	}

	f.writeGitFile("index", buf.String())
}

// stagedIndexFor stages the given worktree file as-is.
func (f *fixture) stagedIndexFor(name, content string) indexSpec {
	blob := f.writeBlob(content)
	return indexSpec{path: name, hash: blob, size: uint32(len(content))}
}

func (f *fixture) open() *Dir {
	f.t.Helper()
	dir, err := Open(f.work)
	require.NoError(f.t, err)
	return dir
}
