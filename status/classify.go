package status

import (
	"fmt"
	"strings"
)

// SubmoduleModeSentinel is the git object mode marking a tree entry as a
// nested repository reference.
const SubmoduleModeSentinel = "160000"

// conflictCodes is the closed set of unmerged XY combinations.
var conflictCodes = map[string]bool{
	"DD": true,
	"AU": true,
	"UD": true,
	"UA": true,
	"DU": true,
	"AA": true,
	"UU": true,
}

// ErrUnknownStatusCode reports a status code outside the stream's
// contractually closed set. It signals an upstream contract violation, not a
// condition callers should recover from.
type ErrUnknownStatusCode struct {
	Path string
	Code string
}

func (e *ErrUnknownStatusCode) Error() string {
	return fmt.Sprintf("unknown status code %q for %q", e.Code, e.Path)
}

// ErrMissingRenameOrigin reports a rename/copy code with no origin path; a
// renamed entry without its old path would be a bogus record.
type ErrMissingRenameOrigin struct {
	Path string
	Code string
}

func (e *ErrMissingRenameOrigin) Error() string {
	return fmt.Sprintf("rename/copy code %q for %q carries no origin path", e.Code, e.Path)
}

// Classify maps a raw entry to its AppFileStatus.
//
// The second return value is false when the entry should be dropped from the
// file map entirely (index=added, worktree=deleted: the file came and went
// between commits, a net no-op).
func Classify(entry FileEntry) (AppFileStatus, bool, error) {
	if entry.Unmerged || conflictCodes[entry.StatusCode] {
		if !conflictCodes[entry.StatusCode] {
			return AppFileStatus{}, false, &ErrUnknownStatusCode{Path: entry.Path, Code: entry.StatusCode}
		}
		return AppFileStatus{
			Kind:     StatusConflicted,
			Conflict: &ConflictDetails{Code: entry.StatusCode, Manual: true},
		}, true, nil
	}

	if entry.StatusCode == "??" {
		return AppFileStatus{Kind: StatusUntracked}, true, nil
	}

	if len(entry.StatusCode) != 2 {
		return AppFileStatus{}, false, &ErrUnknownStatusCode{Path: entry.Path, Code: entry.StatusCode}
	}
	x, y := entry.StatusCode[0], entry.StatusCode[1]

	if x == 'A' && y == 'D' {
		return AppFileStatus{}, false, nil
	}

	sub := submoduleStatus(entry)
	switch {
	case x == 'R' || y == 'R':
		if entry.OldPath == "" {
			return AppFileStatus{}, false, &ErrMissingRenameOrigin{Path: entry.Path, Code: entry.StatusCode}
		}
		return AppFileStatus{Kind: StatusRenamed, OldPath: entry.OldPath, Submodule: sub}, true, nil
	case x == 'C' || y == 'C':
		if entry.OldPath == "" {
			return AppFileStatus{}, false, &ErrMissingRenameOrigin{Path: entry.Path, Code: entry.StatusCode}
		}
		return AppFileStatus{Kind: StatusCopied, OldPath: entry.OldPath, Submodule: sub}, true, nil
	case x == 'A' || y == 'A':
		// A transition into a submodule is reported as a plain add.
		return AppFileStatus{Kind: StatusNew, Submodule: nil}, true, nil
	case x == 'D' || y == 'D':
		return AppFileStatus{Kind: StatusDeleted, Submodule: nil}, true, nil
	case x == 'M' || y == 'M' || x == 'T' || y == 'T':
		return AppFileStatus{Kind: StatusModified, Submodule: sub}, true, nil
	default:
		return AppFileStatus{}, false, &ErrUnknownStatusCode{Path: entry.Path, Code: entry.StatusCode}
	}
}

// submoduleStatus derives the submodule flags from the entry's submodule
// field and its recorded file modes.
func submoduleStatus(entry FileEntry) *SubmoduleStatus {
	if strings.HasPrefix(entry.SubmoduleCode, "S") && len(entry.SubmoduleCode) == 4 {
		return &SubmoduleStatus{
			CommitChanged:    entry.SubmoduleCode[1] == 'C',
			ModifiedChanges:  entry.SubmoduleCode[2] == 'M',
			UntrackedChanges: entry.SubmoduleCode[3] == 'U',
		}
	}
	if entry.HeadMode == SubmoduleModeSentinel || entry.WorktreeMode == SubmoduleModeSentinel {
		if strings.ContainsAny(entry.StatusCode, "M") {
			return &SubmoduleStatus{CommitChanged: true}
		}
	}
	return nil
}

// BuildFileMap classifies all entries into an ordered working-directory file
// map.
//
// A path re-reported as untracked replaces any earlier record for that path,
// so merged scans never leave a stale status behind. Entry order is
// otherwise preserved.
func BuildFileMap(entries []FileEntry) ([]WorkingDirectoryFileChange, error) {
	files := make([]WorkingDirectoryFileChange, 0, len(entries))
	byPath := make(map[string]int, len(entries))

	for _, entry := range entries {
		st, keep, err := Classify(entry)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}

		if st.Kind == StatusUntracked {
			if idx, ok := byPath[entry.Path]; ok {
				files = append(files[:idx], files[idx+1:]...)
				delete(byPath, entry.Path)
				for p, i := range byPath {
					if i > idx {
						byPath[p] = i - 1
					}
				}
			}
		}

		change := WorkingDirectoryFileChange{
			Path:      entry.Path,
			Status:    st,
			Selection: defaultSelection(st),
		}
		if idx, ok := byPath[entry.Path]; ok {
			files[idx] = change
			continue
		}
		byPath[entry.Path] = len(files)
		files = append(files, change)
	}

	return files, nil
}

// defaultSelection includes everything for the next commit, except submodule
// entries with no commit change, which have nothing committable.
func defaultSelection(st AppFileStatus) DiffSelection {
	if st.Submodule != nil && !st.Submodule.CommitChanged {
		return SelectionNone
	}
	return SelectionAll
}
