package operation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory MarkerStore.
type fakeStore map[string]string

func (s fakeStore) Exists(name string) bool {
	_, ok := s[name]
	return ok
}

func (s fakeStore) Read(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// fakeWalker returns a canned commit range.
type fakeWalker struct {
	commits []CommitSummary
	err     error
}

func (w *fakeWalker) CommitsBetween(from, to string) ([]CommitSummary, error) {
	return w.commits, w.err
}

func commitRange(n int) []CommitSummary {
	commits := make([]CommitSummary, 0, n)
	for i := 1; i <= n; i++ {
		commits = append(commits, CommitSummary{
			SHA:     fmt.Sprintf("%040d", i),
			Summary: fmt.Sprintf("commit %d", i),
		})
	}
	return commits
}

func TestMarkerPresence(t *testing.T) {
	store := fakeStore{
		MarkerMergeHead: "aaaa",
		MarkerSquashMsg: "squashed commits",
	}
	assert.True(t, MergeHeadFound(store))
	assert.True(t, SquashMsgFound(store))
	assert.False(t, CherryPickHeadFound(store))
}

func TestRebaseState(t *testing.T) {
	store := fakeStore{
		"rebase-merge/head-name": "refs/heads/feature",
		"rebase-merge/onto":      "bbbb",
		"rebase-merge/orig-head": "cccc",
	}
	state := RebaseState(store)
	require.NotNil(t, state)
	assert.Equal(t, "feature", state.TargetBranch)
	assert.Equal(t, "bbbb", state.BaseBranchTip)
	assert.Equal(t, "cccc", state.OriginalBranchTip)
}

func TestRebaseStateTornReadIsAbsent(t *testing.T) {
	// onto written, orig-head not yet: a live rebase advancing under us.
	store := fakeStore{
		"rebase-merge/head-name": "refs/heads/feature",
		"rebase-merge/onto":      "bbbb",
	}
	assert.Nil(t, RebaseState(store))
}

func TestRebaseProgress(t *testing.T) {
	store := fakeStore{
		"rebase-merge/head-name": "refs/heads/feature",
		"rebase-merge/onto":      "bbbb",
		"rebase-merge/orig-head": "cccc",
		"rebase-merge/msgnum":    "2\n",
		"rebase-merge/end":       "5\n",
	}
	walker := &fakeWalker{commits: commitRange(5)}

	p := RebaseProgress(store, walker)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Position)
	assert.Equal(t, 5, p.TotalCommitCount)
	assert.Equal(t, 40, p.Value)
	assert.Equal(t, "commit 2", p.CurrentCommitSummary)
}

func TestRebaseProgressCounters(t *testing.T) {
	store := fakeStore{
		"rebase-merge/msgnum": "3",
		"rebase-merge/end":    "10",
	}
	p := RebaseProgress(store, nil)
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Position)
	assert.Equal(t, 10, p.TotalCommitCount)
	assert.Equal(t, 30, p.Value)
	assert.Empty(t, p.CurrentCommitSummary)
}

func TestRebaseProgressUnavailable(t *testing.T) {
	t.Run("missing counter", func(t *testing.T) {
		store := fakeStore{"rebase-merge/msgnum": "2"}
		assert.Nil(t, RebaseProgress(store, nil))
	})
	t.Run("unparseable counter", func(t *testing.T) {
		store := fakeStore{
			"rebase-merge/msgnum": "2",
			"rebase-merge/end":    "soon",
		}
		assert.Nil(t, RebaseProgress(store, nil))
	})
	t.Run("zero total", func(t *testing.T) {
		store := fakeStore{
			"rebase-merge/msgnum": "0",
			"rebase-merge/end":    "0",
		}
		assert.Nil(t, RebaseProgress(store, nil))
	})
}

func TestRebaseProgressClampsSummaryIndex(t *testing.T) {
	store := fakeStore{
		"rebase-merge/head-name": "refs/heads/feature",
		"rebase-merge/onto":      "bbbb",
		"rebase-merge/orig-head": "cccc",
		"rebase-merge/msgnum":    "7",
		"rebase-merge/end":       "7",
	}
	// The walker only knows three commits; out-of-range yields an empty
	// summary, not a crash.
	walker := &fakeWalker{commits: commitRange(3)}
	p := RebaseProgress(store, walker)
	require.NotNil(t, p)
	assert.Equal(t, 7, p.Position)
	assert.Empty(t, p.CurrentCommitSummary)
}

func TestRebaseProgressWalkerFailureKeepsCounters(t *testing.T) {
	store := fakeStore{
		"rebase-merge/head-name": "refs/heads/feature",
		"rebase-merge/onto":      "bbbb",
		"rebase-merge/orig-head": "cccc",
		"rebase-merge/msgnum":    "2",
		"rebase-merge/end":       "5",
	}
	walker := &fakeWalker{err: errors.New("walk failed")}
	p := RebaseProgress(store, walker)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Position)
	assert.Empty(t, p.CurrentCommitSummary)
}

func TestCherryPickProgress(t *testing.T) {
	store := fakeStore{
		"sequencer/todo":         "pick 1111111 second commit\npick 2222222 third commit\n",
		"sequencer/head":         "aaaa",
		"sequencer/abort-safety": "bbbb",
	}
	walker := &fakeWalker{commits: commitRange(1)} // one already applied

	p := CherryPickProgress(store, walker)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Position)
	assert.Equal(t, 3, p.TotalCommitCount)
	assert.Equal(t, "second commit", p.CurrentCommitSummary)
	assert.Equal(t, 66, p.Value)
}

func TestCherryPickProgressNoSequencer(t *testing.T) {
	assert.Nil(t, CherryPickProgress(fakeStore{}, nil))
}

func TestCherryPickProgressIgnoresNonPickLines(t *testing.T) {
	store := fakeStore{
		"sequencer/todo": "# a comment\npick 1111111 keep me\nnoop\n",
	}
	p := CherryPickProgress(store, nil)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Position)
	assert.Equal(t, 1, p.TotalCommitCount)
	assert.Equal(t, "keep me", p.CurrentCommitSummary)
}

func TestInterpretResult(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		output   string
		want     Outcome
	}{
		{"clean completion", 0, "Successfully rebased and updated refs/heads/feature.", OutcomeCompleted},
		{"nothing to do", 0, "nothing to do", OutcomeAlreadyUpToDate},
		{"up to date", 0, "Current branch feature is up to date.", OutcomeAlreadyUpToDate},
		{"content conflict", 1, "CONFLICT (content): Merge conflict in a.txt", OutcomeConflictsEncountered},
		{"modify delete conflict", 1, "CONFLICT (modify/delete): a.txt deleted in HEAD", OutcomeConflictsEncountered},
		{"could not apply", 1, "error: could not apply 1234567... change things", OutcomeConflictsEncountered},
		{"unmerged files staged", 1, "error: Committing is not possible because you have unmerged files.", OutcomeOutstandingFilesNotStaged},
		{"unknown failure", 128, "fatal: bad object", OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretResult(tt.exitCode, tt.output))
		})
	}
}

func TestNextContinueAction(t *testing.T) {
	assert.Equal(t, ContinueCommit, NextContinueAction(true))
	// Nothing staged for this step: skip it instead of erroring.
	assert.Equal(t, ContinueSkip, NextContinueAction(false))
}
