package gitdir

import (
	"os"
	"path/filepath"
	"strings"
)

// Head describes the current HEAD: the branch name when on a branch, the
// detached flag otherwise, and the tip hash (empty on an unborn branch).
type Head struct {
	Branch   string
	Detached bool
	Tip      string
}

// ReadHead resolves HEAD. A missing ref target means an unborn branch, which
// is a normal state, not an error.
func (d *Dir) ReadHead() (Head, error) {
	content, err := os.ReadFile(filepath.Join(d.GitDir, "HEAD"))
	if err != nil {
		return Head{}, err
	}

	line := strings.TrimSpace(string(content))
	if ref, ok := strings.CutPrefix(line, "ref: "); ok {
		h := Head{Branch: strings.TrimPrefix(ref, "refs/heads/")}
		if tip, ok := d.ResolveRef(ref); ok {
			h.Tip = tip
		}
		return h, nil
	}
	return Head{Detached: true, Tip: line}, nil
}

// ResolveRef resolves a ref name to an object hash, following symbolic refs
// through loose ref files and falling back to packed-refs. A ref that cannot
// be resolved is a negative result, not an error.
func (d *Dir) ResolveRef(ref string) (string, bool) {
	return d.resolveRefDepth(ref, 0)
}

func (d *Dir) resolveRefDepth(ref string, depth int) (string, bool) {
	if depth > 10 {
		return "", false
	}

	content, err := os.ReadFile(filepath.Join(d.GitDir, filepath.FromSlash(ref)))
	if err == nil {
		line := strings.TrimSpace(string(content))
		if target, ok := strings.CutPrefix(line, "ref: "); ok {
			return d.resolveRefDepth(target, depth+1)
		}
		if isHexHash(line) {
			return line, true
		}
		return "", false
	}

	return d.lookupPackedRef(ref)
}

// lookupPackedRef scans packed-refs for the ref. Peeled lines ("^<hash>")
// are skipped; the unpeeled hash is what HEAD-style resolution wants.
func (d *Dir) lookupPackedRef(ref string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(d.GitDir, "packed-refs"))
	if err != nil {
		return "", false
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}
		hash, name, ok := strings.Cut(line, " ")
		if !ok || name != ref || !isHexHash(hash) {
			continue
		}
		return hash, true
	}
	return "", false
}

func isHexHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
