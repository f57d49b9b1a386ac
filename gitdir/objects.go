package gitdir

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Commit is a parsed commit object.
type Commit struct {
	Hash    string
	Tree    string
	Parents []string
	Summary string // first line of the message
	Message string
}

// TreeEntry is one path in a fully flattened tree.
type TreeEntry struct {
	Mode string // octal, as written in the tree object
	Hash string
}

// readObject reads and inflates a loose object, returning its type and body.
// Pack-stored objects are out of scope; an object that is not loose reads as
// missing.
func (d *Dir) readObject(hash string) (string, []byte, error) {
	if len(hash) < 3 {
		return "", nil, fmt.Errorf("invalid object hash %q", hash)
	}
	path := filepath.Join(d.GitDir, "objects", hash[:2], hash[2:])

	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("inflating object %s: %w", hash, err)
	}
	defer zr.Close()

	content, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("reading object %s: %w", hash, err)
	}

	nullIdx := bytes.IndexByte(content, 0)
	if nullIdx == -1 {
		return "", nil, fmt.Errorf("malformed object %s: no header terminator", hash)
	}
	objType, _, _ := strings.Cut(string(content[:nullIdx]), " ")
	return objType, content[nullIdx+1:], nil
}

// ReadCommit parses a loose commit object.
func (d *Dir) ReadCommit(hash string) (*Commit, error) {
	objType, body, err := d.readObject(hash)
	if err != nil {
		return nil, err
	}
	if objType != "commit" {
		return nil, fmt.Errorf("object %s is a %s, not a commit", hash, objType)
	}

	commit := &Commit{Hash: hash}
	headerDone := false
	var messageLines []string

	for _, line := range strings.Split(string(body), "\n") {
		if headerDone {
			messageLines = append(messageLines, line)
			continue
		}
		if line == "" {
			headerDone = true
			continue
		}
		if tree, ok := strings.CutPrefix(line, "tree "); ok {
			commit.Tree = tree
		} else if parent, ok := strings.CutPrefix(line, "parent "); ok {
			commit.Parents = append(commit.Parents, parent)
		}
	}

	commit.Message = strings.TrimSpace(strings.Join(messageLines, "\n"))
	if commit.Message != "" {
		commit.Summary, _, _ = strings.Cut(commit.Message, "\n")
	}
	return commit, nil
}

// ReadBlob returns a blob's content. A missing object is a negative result.
func (d *Dir) ReadBlob(hash string) ([]byte, bool) {
	objType, body, err := d.readObject(hash)
	if err != nil || objType != "blob" {
		return nil, false
	}
	return body, true
}

// ReadTree flattens a tree object (recursively) into path → entry.
func (d *Dir) ReadTree(hash string) (map[string]TreeEntry, error) {
	result := make(map[string]TreeEntry)
	if err := d.readTreeInto(hash, "", result); err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dir) readTreeInto(hash, prefix string, result map[string]TreeEntry) error {
	objType, body, err := d.readObject(hash)
	if err != nil {
		return err
	}
	if objType != "tree" {
		return fmt.Errorf("object %s is a %s, not a tree", hash, objType)
	}

	for len(body) > 0 {
		spaceIdx := bytes.IndexByte(body, ' ')
		if spaceIdx == -1 {
			return fmt.Errorf("malformed tree %s", hash)
		}
		mode := string(body[:spaceIdx])
		body = body[spaceIdx+1:]

		nullIdx := bytes.IndexByte(body, 0)
		if nullIdx == -1 || len(body) < nullIdx+1+20 {
			return fmt.Errorf("malformed tree %s", hash)
		}
		name := string(body[:nullIdx])
		entryHash := hex.EncodeToString(body[nullIdx+1 : nullIdx+1+20])
		body = body[nullIdx+1+20:]

		fullPath := name
		if prefix != "" {
			fullPath = prefix + "/" + name
		}

		if mode == "40000" {
			if err := d.readTreeInto(entryHash, fullPath, result); err != nil {
				return err
			}
			continue
		}
		result[fullPath] = TreeEntry{Mode: mode, Hash: entryHash}
	}
	return nil
}

// HeadTree flattens the tree of the commit HEAD points at. An unborn HEAD
// yields an empty tree.
func (d *Dir) HeadTree() (map[string]TreeEntry, error) {
	head, err := d.ReadHead()
	if err != nil {
		return nil, err
	}
	if head.Tip == "" {
		return map[string]TreeEntry{}, nil
	}
	commit, err := d.ReadCommit(head.Tip)
	if err != nil {
		return nil, err
	}
	return d.ReadTree(commit.Tree)
}
