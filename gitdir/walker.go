package gitdir

import (
	"github.com/craftlabs/treestate/operation"
)

// walkLimit bounds ancestry walks against pathological histories.
const walkLimit = 100000

// CommitsBetween lists the commits reachable from `to` but not from `from`,
// oldest first. Both ends may be ref names or raw hashes; an end that does
// not resolve is treated as an empty boundary, not an error, so unborn or
// missing refs degrade to the commits reachable from `to` alone.
func (d *Dir) CommitsBetween(from, to string) ([]operation.CommitSummary, error) {
	toHash, ok := d.resolveish(to)
	if !ok {
		return nil, nil
	}
	exclude := d.ancestorSet(from)

	var newestFirst []operation.CommitSummary
	seen := make(map[string]bool)
	queue := []string{toHash}

	for len(queue) > 0 && len(seen) < walkLimit {
		hash := queue[0]
		queue = queue[1:]
		if seen[hash] || exclude[hash] {
			continue
		}
		seen[hash] = true

		commit, err := d.ReadCommit(hash)
		if err != nil {
			// Unreadable (e.g. pack-stored) history is a walk boundary.
			continue
		}
		newestFirst = append(newestFirst, operation.CommitSummary{SHA: hash, Summary: commit.Summary})
		queue = append(queue, commit.Parents...)
	}

	oldestFirst := make([]operation.CommitSummary, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		oldestFirst = append(oldestFirst, newestFirst[i])
	}
	return oldestFirst, nil
}

// AheadBehind counts the commits reachable from one ref but not the other.
func (d *Dir) AheadBehind(local, upstream string) (ahead, behind int, ok bool) {
	localHash, okLocal := d.resolveish(local)
	upstreamHash, okUpstream := d.resolveish(upstream)
	if !okLocal || !okUpstream {
		return 0, 0, false
	}

	localAnc := d.ancestorSet(localHash)
	upstreamAnc := d.ancestorSet(upstreamHash)

	for hash := range localAnc {
		if !upstreamAnc[hash] {
			ahead++
		}
	}
	for hash := range upstreamAnc {
		if !localAnc[hash] {
			behind++
		}
	}
	return ahead, behind, true
}

// ancestorSet collects the commits reachable from ref, itself included.
// Unresolvable refs and unreadable commits yield what could be reached.
func (d *Dir) ancestorSet(ref string) map[string]bool {
	set := make(map[string]bool)
	hash, ok := d.resolveish(ref)
	if !ok {
		return set
	}

	queue := []string{hash}
	for len(queue) > 0 && len(set) < walkLimit {
		h := queue[0]
		queue = queue[1:]
		if set[h] {
			continue
		}
		set[h] = true

		commit, err := d.ReadCommit(h)
		if err != nil {
			continue
		}
		queue = append(queue, commit.Parents...)
	}
	return set
}

// resolveish accepts a raw hash or a ref name.
func (d *Dir) resolveish(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if isHexHash(s) {
		return s, true
	}
	return d.ResolveRef(s)
}
