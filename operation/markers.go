// Package operation reconstructs the in-progress multi-commit operation
// (merge, rebase, cherry-pick, squash) from on-disk repository markers and
// computes progress snapshots for it.
package operation

import "strings"

// MarkerStore reads marker files from the repository metadata directory.
// Absence and read failures are both reported as "not there"; this engine
// never distinguishes the two.
type MarkerStore interface {
	Exists(name string) bool
	Read(name string) (string, bool)
}

// Marker file names, relative to the repository metadata directory.
const (
	MarkerMergeHead      = "MERGE_HEAD"
	MarkerSquashMsg      = "SQUASH_MSG"
	MarkerCherryPickHead = "CHERRY_PICK_HEAD"

	markerRebaseHeadName = "rebase-merge/head-name"
	markerRebaseOnto     = "rebase-merge/onto"
	markerRebaseOrigHead = "rebase-merge/orig-head"
	markerRebaseNext     = "rebase-merge/msgnum"
	markerRebaseLast     = "rebase-merge/end"

	markerSequencerTodo        = "sequencer/todo"
	markerSequencerHead        = "sequencer/head"
	markerSequencerAbortSafety = "sequencer/abort-safety"
)

// RebaseInternalState mirrors the on-disk rebase bookkeeping while a rebase
// is in progress; a nil value means no rebase.
type RebaseInternalState struct {
	TargetBranch      string
	BaseBranchTip     string
	OriginalBranchTip string
}

// MergeHeadFound reports whether a merge is in progress.
func MergeHeadFound(s MarkerStore) bool {
	return s.Exists(MarkerMergeHead)
}

// SquashMsgFound reports whether a squash message is pending.
func SquashMsgFound(s MarkerStore) bool {
	return s.Exists(MarkerSquashMsg)
}

// CherryPickHeadFound reports whether a cherry-pick is in progress.
func CherryPickHeadFound(s MarkerStore) bool {
	return s.Exists(MarkerCherryPickHead)
}

// RebaseState reconstructs the rebase bookkeeping from the sequencer
// markers. All three markers must be readable; a torn or partial state (a
// live rebase advancing underneath us) reads as "no rebase".
func RebaseState(s MarkerStore) *RebaseInternalState {
	headName, ok := s.Read(markerRebaseHeadName)
	if !ok {
		return nil
	}
	onto, ok := s.Read(markerRebaseOnto)
	if !ok {
		return nil
	}
	origHead, ok := s.Read(markerRebaseOrigHead)
	if !ok {
		return nil
	}
	return &RebaseInternalState{
		TargetBranch:      strings.TrimPrefix(headName, "refs/heads/"),
		BaseBranchTip:     onto,
		OriginalBranchTip: origHead,
	}
}
