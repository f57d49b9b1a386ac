package status

import (
	"strconv"
	"strings"

	"github.com/craftlabs/treestate/operation"
)

// Header keys emitted by the status stream.
const (
	HeaderBranchOID      = "branch.oid"
	HeaderBranchHead     = "branch.head"
	HeaderBranchUpstream = "branch.upstream"
	HeaderBranchAB       = "branch.ab"
)

// detachedHeadValue is the branch.head value on a detached HEAD; it never
// populates CurrentBranch.
const detachedHeadValue = "(detached)"

// initialOIDValue is the branch.oid value on an unborn branch.
const initialOIDValue = "(initial)"

// OperationMarkers carries the raw detector results for in-progress
// operations, before mutual exclusivity is applied.
type OperationMarkers struct {
	MergeHeadFound      bool
	SquashMsgFound      bool
	RebaseState         *operation.RebaseInternalState
	CherryPickHeadFound bool
}

// BuildSnapshot folds headers and the classified file map into an immutable
// StatusResult.
//
// Headers fold left to right, last-wins per key. Operation markers are
// reduced to at most one active operation, in priority order merge, rebase,
// cherry-pick; the on-disk state never guarantees only one marker exists, so
// the snapshot enforces it by construction. The squash flag is independent of
// that reduction: a squash leaves its message marker without a merge head.
func BuildSnapshot(headers []Header, files []WorkingDirectoryFileChange, ops OperationMarkers) StatusResult {
	res := StatusResult{
		WorkingDirectory: WorkingDirectoryStatus{Files: files},
	}

	for _, h := range headers {
		switch h.Key {
		case HeaderBranchOID:
			if h.Value != initialOIDValue {
				res.CurrentTip = h.Value
			}
		case HeaderBranchHead:
			if h.Value != detachedHeadValue {
				res.CurrentBranch = h.Value
			}
		case HeaderBranchUpstream:
			res.CurrentUpstreamBranch = h.Value
		case HeaderBranchAB:
			if ab, ok := parseAheadBehind(h.Value); ok {
				res.BranchAheadBehind = ab
			}
		}
	}

	res.SquashMsgFound = ops.SquashMsgFound

	switch {
	case ops.MergeHeadFound:
		res.MergeHeadFound = true
	case ops.RebaseState != nil:
		res.RebaseInternalState = ops.RebaseState
	case ops.CherryPickHeadFound:
		res.CherryPickHeadFound = true
	}

	for _, f := range files {
		if f.Status.Kind == StatusConflicted {
			res.ConflictedFilesExist = true
			break
		}
	}

	return res
}

// parseAheadBehind parses a "+N -M" divergence value.
func parseAheadBehind(value string) (*AheadBehind, bool) {
	var ab AheadBehind
	seen := 0
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasPrefix(part, "+"):
			n, err := strconv.Atoi(part[1:])
			if err != nil {
				return nil, false
			}
			ab.Ahead = n
			seen++
		case strings.HasPrefix(part, "-"):
			n, err := strconv.Atoi(part[1:])
			if err != nil {
				return nil, false
			}
			ab.Behind = n
			seen++
		}
	}
	if seen != 2 {
		return nil, false
	}
	return &ab, true
}

// markerConflictCodes are the conflict combinations that can carry literal
// conflict markers: both sides modified or both sides added.
var markerConflictCodes = map[string]bool{
	"UU": true,
	"AA": true,
}

// ApplyConflictDetails merges per-path conflict metadata into the file map.
//
// A conflicted entry becomes a marker conflict when both sides touched a
// non-binary file; a path the scan found no markers in reports zero, the
// state after every marker was edited away. Binary files and one-sided
// combinations stay manual conflicts.
func ApplyConflictDetails(files []WorkingDirectoryFileChange, markerCounts map[string]int, binaryPaths map[string]struct{}) {
	for i := range files {
		c := files[i].Status.Conflict
		if files[i].Status.Kind != StatusConflicted || c == nil {
			continue
		}
		if _, binary := binaryPaths[files[i].Path]; binary || !markerConflictCodes[c.Code] {
			c.Manual = true
			c.MarkerCount = 0
			continue
		}
		c.Manual = false
		c.MarkerCount = markerCounts[files[i].Path]
	}
}
