package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftlabs/treestate/operation"
)

func TestBuildSnapshotFoldsHeadersLastWins(t *testing.T) {
	snap := BuildSnapshot([]Header{
		{Key: HeaderBranchHead, Value: "old"},
		{Key: HeaderBranchHead, Value: "main"},
		{Key: HeaderBranchOID, Value: "abc123"},
		{Key: HeaderBranchUpstream, Value: "origin/main"},
		{Key: HeaderBranchAB, Value: "+2 -1"},
	}, nil, OperationMarkers{})

	assert.Equal(t, "main", snap.CurrentBranch)
	assert.Equal(t, "abc123", snap.CurrentTip)
	assert.Equal(t, "origin/main", snap.CurrentUpstreamBranch)
	require.NotNil(t, snap.BranchAheadBehind)
	assert.Equal(t, 2, snap.BranchAheadBehind.Ahead)
	assert.Equal(t, 1, snap.BranchAheadBehind.Behind)
}

func TestBuildSnapshotDetachedNeverSetsBranch(t *testing.T) {
	snap := BuildSnapshot([]Header{
		{Key: HeaderBranchHead, Value: "(detached)"},
	}, nil, OperationMarkers{})
	assert.Empty(t, snap.CurrentBranch)
}

func TestBuildSnapshotInitialOIDLeavesTipUnset(t *testing.T) {
	snap := BuildSnapshot([]Header{
		{Key: HeaderBranchOID, Value: "(initial)"},
	}, nil, OperationMarkers{})
	assert.Empty(t, snap.CurrentTip)
}

func TestBuildSnapshotMalformedAheadBehindIgnored(t *testing.T) {
	snap := BuildSnapshot([]Header{
		{Key: HeaderBranchAB, Value: "+x -1"},
	}, nil, OperationMarkers{})
	assert.Nil(t, snap.BranchAheadBehind)
}

func TestBuildSnapshotOperationPriority(t *testing.T) {
	rebase := &operation.RebaseInternalState{TargetBranch: "feature"}

	t.Run("merge wins over everything", func(t *testing.T) {
		snap := BuildSnapshot(nil, nil, OperationMarkers{
			MergeHeadFound:      true,
			SquashMsgFound:      true,
			RebaseState:         rebase,
			CherryPickHeadFound: true,
		})
		assert.True(t, snap.MergeHeadFound)
		assert.True(t, snap.SquashMsgFound)
		assert.Nil(t, snap.RebaseInternalState)
		assert.False(t, snap.CherryPickHeadFound)
	})

	t.Run("rebase wins over cherry-pick", func(t *testing.T) {
		snap := BuildSnapshot(nil, nil, OperationMarkers{
			RebaseState:         rebase,
			CherryPickHeadFound: true,
		})
		assert.False(t, snap.MergeHeadFound)
		assert.Equal(t, rebase, snap.RebaseInternalState)
		assert.False(t, snap.CherryPickHeadFound)
	})

	t.Run("cherry-pick alone", func(t *testing.T) {
		snap := BuildSnapshot(nil, nil, OperationMarkers{CherryPickHeadFound: true})
		assert.True(t, snap.CherryPickHeadFound)
		assert.Nil(t, snap.RebaseInternalState)
	})
}

func TestBuildSnapshotSquashWithoutMergeHead(t *testing.T) {
	// A squash merge leaves its message marker behind with no merge head.
	snap := BuildSnapshot(nil, nil, OperationMarkers{SquashMsgFound: true})
	assert.True(t, snap.SquashMsgFound)
	assert.False(t, snap.MergeHeadFound)

	t.Run("independent of the active operation", func(t *testing.T) {
		snap := BuildSnapshot(nil, nil, OperationMarkers{
			SquashMsgFound: true,
			RebaseState:    &operation.RebaseInternalState{TargetBranch: "feature"},
		})
		assert.True(t, snap.SquashMsgFound)
		assert.NotNil(t, snap.RebaseInternalState)
	})
}

func TestBuildSnapshotAtMostOneOperation(t *testing.T) {
	combos := []OperationMarkers{
		{},
		{MergeHeadFound: true},
		{RebaseState: &operation.RebaseInternalState{}},
		{CherryPickHeadFound: true},
		{MergeHeadFound: true, RebaseState: &operation.RebaseInternalState{}},
		{MergeHeadFound: true, CherryPickHeadFound: true},
		{RebaseState: &operation.RebaseInternalState{}, CherryPickHeadFound: true},
		{MergeHeadFound: true, RebaseState: &operation.RebaseInternalState{}, CherryPickHeadFound: true},
	}
	for _, ops := range combos {
		snap := BuildSnapshot(nil, nil, ops)
		active := 0
		if snap.MergeHeadFound {
			active++
		}
		if snap.RebaseInternalState != nil {
			active++
		}
		if snap.CherryPickHeadFound {
			active++
		}
		assert.LessOrEqual(t, active, 1)
	}
}

func TestBuildSnapshotConflictedFlag(t *testing.T) {
	conflicted := WorkingDirectoryFileChange{
		Path:   "a.txt",
		Status: AppFileStatus{Kind: StatusConflicted, Conflict: &ConflictDetails{Code: "UU", Manual: true}},
	}
	clean := WorkingDirectoryFileChange{Path: "b.txt", Status: AppFileStatus{Kind: StatusModified}}

	snap := BuildSnapshot(nil, []WorkingDirectoryFileChange{clean, conflicted}, OperationMarkers{})
	assert.True(t, snap.ConflictedFilesExist)

	snap = BuildSnapshot(nil, []WorkingDirectoryFileChange{clean}, OperationMarkers{})
	assert.False(t, snap.ConflictedFilesExist)
}

func TestApplyConflictDetails(t *testing.T) {
	files := []WorkingDirectoryFileChange{
		{Path: "text.txt", Status: AppFileStatus{Kind: StatusConflicted, Conflict: &ConflictDetails{Code: "UU", Manual: true}}},
		{Path: "image.png", Status: AppFileStatus{Kind: StatusConflicted, Conflict: &ConflictDetails{Code: "UU", Manual: true}}},
		{Path: "both-added.go", Status: AppFileStatus{Kind: StatusConflicted, Conflict: &ConflictDetails{Code: "AA", Manual: true}}},
		{Path: "deleted-by-us.go", Status: AppFileStatus{Kind: StatusConflicted, Conflict: &ConflictDetails{Code: "DU", Manual: true}}},
		{Path: "resolved.go", Status: AppFileStatus{Kind: StatusConflicted, Conflict: &ConflictDetails{Code: "UU", Manual: true}}},
		{Path: "plain.go", Status: AppFileStatus{Kind: StatusModified}},
	}

	ApplyConflictDetails(files,
		map[string]int{"text.txt": 2, "both-added.go": 4, "deleted-by-us.go": 1},
		map[string]struct{}{"image.png": {}},
	)

	assert.False(t, files[0].Status.Conflict.Manual)
	assert.Equal(t, 2, files[0].Status.Conflict.MarkerCount)

	// Binary files can never carry markers.
	assert.True(t, files[1].Status.Conflict.Manual)
	assert.Zero(t, files[1].Status.Conflict.MarkerCount)

	assert.False(t, files[2].Status.Conflict.Manual)
	assert.Equal(t, 4, files[2].Status.Conflict.MarkerCount)

	// Modify/delete combinations stay manual regardless of marker counts.
	assert.True(t, files[3].Status.Conflict.Manual)
	assert.Zero(t, files[3].Status.Conflict.MarkerCount)

	// A text conflict whose markers were all edited away is still a text
	// conflict, now at zero markers.
	assert.False(t, files[4].Status.Conflict.Manual)
	assert.Zero(t, files[4].Status.Conflict.MarkerCount)

	assert.Nil(t, files[5].Status.Conflict)
}
