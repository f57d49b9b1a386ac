package status

import "github.com/craftlabs/treestate/operation"

// FileStatusKind enumerates the closed set of working-directory change kinds.
type FileStatusKind int

const (
	StatusNew FileStatusKind = iota
	StatusModified
	StatusDeleted
	StatusUntracked
	StatusRenamed
	StatusCopied
	StatusConflicted
)

// String returns the short human-readable name for the kind.
func (k FileStatusKind) String() string {
	switch k {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusUntracked:
		return "untracked"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	case StatusConflicted:
		return "conflicted"
	default:
		return "unknown"
	}
}

// SubmoduleStatus describes changes inside a submodule working copy.
type SubmoduleStatus struct {
	CommitChanged    bool
	ModifiedChanges  bool
	UntrackedChanges bool
}

// ConflictDetails carries per-path conflict metadata for a conflicted entry.
//
// When Manual is false the conflict is a text conflict whose leftover marker
// lines were counted; when true the file cannot carry markers (binary, or a
// combination like modify/delete) and must be resolved by choosing a side.
type ConflictDetails struct {
	Code        string // one of DD, AU, UD, UA, DU, AA, UU
	MarkerCount int
	Manual      bool
}

// AppFileStatus is the classified status of one path. Exactly one variant
// applies, discriminated by Kind; OldPath is set only for renamed/copied
// entries and Conflict only for conflicted ones.
type AppFileStatus struct {
	Kind      FileStatusKind
	Submodule *SubmoduleStatus
	OldPath   string
	Conflict  *ConflictDetails
}

// DiffSelection tracks how much of a file is included in the next commit.
type DiffSelection int

const (
	SelectionAll DiffSelection = iota
	SelectionNone
	SelectionPartial
)

// WorkingDirectoryFileChange is one classified entry in the working
// directory file map.
type WorkingDirectoryFileChange struct {
	Path      string
	Status    AppFileStatus
	Selection DiffSelection
}

// AheadBehind is the divergence between a branch and its upstream.
type AheadBehind struct {
	Ahead  int
	Behind int
}

// WorkingDirectoryStatus holds the materialized file map of a snapshot.
type WorkingDirectoryStatus struct {
	Files []WorkingDirectoryFileChange
}

// StatusResult is the immutable snapshot returned by a status query.
type StatusResult struct {
	CurrentBranch         string
	CurrentUpstreamBranch string
	CurrentTip            string
	BranchAheadBehind     *AheadBehind
	MergeHeadFound        bool
	SquashMsgFound        bool
	RebaseInternalState   *operation.RebaseInternalState
	CherryPickHeadFound   bool
	WorkingDirectory      WorkingDirectoryStatus
	ConflictedFilesExist  bool
}
