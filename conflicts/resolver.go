// Package conflicts resolves per-path conflict detail (marker counts and
// binary paths) against whichever comparison ref the active operation
// dictates.
package conflicts

// Scanner runs the two conflict sub-scans. Implementations must tolerate a
// missing comparison ref (e.g. an unborn HEAD) by returning empty results.
type Scanner interface {
	MarkerCounts() (map[string]int, error)
	BinaryPaths(compareRef string) ([]string, error)
}

// Details is the merged result of both sub-scans.
type Details struct {
	MarkerCountsByPath map[string]int
	BinaryFilePaths    map[string]struct{}
}

// Comparison refs, selected by operation priority.
const (
	refMergeHead  = "MERGE_HEAD"
	refRebaseHead = "REBASE_HEAD"
	refHead       = "HEAD"
)

// Resolve picks the comparison ref for the active operation and runs both
// sub-scans against it.
//
// Priority: a merge head wins over rebase state, which wins over the
// caller's signal that conflicted index entries exist (stash restore). If
// none applies there is nothing to scan. Sub-scan failures are downgraded to
// empty results; conflict detail must never abort the status computation.
func Resolve(s Scanner, mergeHeadFound, rebaseInProgress, hasConflictedEntries bool) Details {
	details := Details{
		MarkerCountsByPath: map[string]int{},
		BinaryFilePaths:    map[string]struct{}{},
	}

	var compareRef string
	switch {
	case mergeHeadFound:
		compareRef = refMergeHead
	case rebaseInProgress:
		compareRef = refRebaseHead
	case hasConflictedEntries:
		compareRef = refHead
	default:
		return details
	}

	if counts, err := s.MarkerCounts(); err == nil {
		details.MarkerCountsByPath = counts
	}
	if paths, err := s.BinaryPaths(compareRef); err == nil {
		for _, p := range paths {
			details.BinaryFilePaths[p] = struct{}{}
		}
	}
	return details
}
