// Package engine exposes the snapshot and progress queries, wiring the
// parser, classifier, conflict resolver and operation tracker over a set of
// pluggable repository collaborators.
package engine

import (
	"context"

	"github.com/craftlabs/treestate/conflicts"
	"github.com/craftlabs/treestate/gitdir"
	"github.com/craftlabs/treestate/internal/config"
	"github.com/craftlabs/treestate/operation"
	"github.com/craftlabs/treestate/status"
)

// StatusSource produces the raw NUL-delimited status stream.
type StatusSource interface {
	RawStatus() ([]byte, error)
}

// Collaborators are the repository interfaces the engine consumes. The
// default wiring implements all four natively over the on-disk metadata
// (package gitdir); tests and alternative backends may substitute any of
// them.
type Collaborators struct {
	Source  StatusSource
	Markers operation.MarkerStore
	Scanner conflicts.Scanner
	Walker  operation.CommitWalker
}

// Engine answers status and progress queries. Each query is a self-contained
// computation over point-in-time on-disk state; Engine itself holds no
// mutable state, so concurrent queries are safe and independently
// consistent.
type Engine struct {
	c    Collaborators
	opts *config.Options
}

// Open wires an Engine over the repository containing root, using the native
// filesystem collaborators.
func Open(root string, opts *config.Options) (*Engine, error) {
	dir, err := gitdir.Open(root)
	if err != nil {
		return nil, err
	}
	return New(Collaborators{
		Source:  dir,
		Markers: dir,
		Scanner: dir,
		Walker:  dir,
	}, opts), nil
}

// New builds an Engine over explicit collaborators.
func New(c Collaborators, opts *config.Options) *Engine {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	return &Engine{c: c, opts: opts}
}

// GetStatus computes a full working-directory snapshot.
//
// Cancellation is all-or-nothing: once ctx is done no partial snapshot is
// returned. Conflict-detail sub-scans degrade to empty results on failure;
// only source failures and contract violations (unknown status codes)
// surface as errors.
func (e *Engine) GetStatus(ctx context.Context) (*status.StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := e.c.Source.RawStatus()
	if err != nil {
		return nil, err
	}
	headers, entries := status.Parse(raw)

	files, err := status.BuildFileMap(entries)
	if err != nil {
		return nil, err
	}
	files = e.capUntracked(files)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ops := status.OperationMarkers{
		MergeHeadFound:      operation.MergeHeadFound(e.c.Markers),
		SquashMsgFound:      operation.SquashMsgFound(e.c.Markers),
		RebaseState:         operation.RebaseState(e.c.Markers),
		CherryPickHeadFound: operation.CherryPickHeadFound(e.c.Markers),
	}

	if e.needsConflictDetail(files, ops) {
		details := conflicts.Resolve(e.c.Scanner,
			ops.MergeHeadFound,
			ops.RebaseState != nil,
			hasConflicted(files))
		status.ApplyConflictDetails(files, details.MarkerCountsByPath, details.BinaryFilePaths)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := status.BuildSnapshot(headers, files, ops)
	return &snapshot, nil
}

// GetOperationProgress returns the progress of the in-flight multi-commit
// operation, or nil when none is in progress or its sequencer state is
// momentarily unreadable.
func (e *Engine) GetOperationProgress(ctx context.Context) (*operation.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if operation.RebaseState(e.c.Markers) != nil {
		return operation.RebaseProgress(e.c.Markers, e.c.Walker), nil
	}
	if operation.CherryPickHeadFound(e.c.Markers) {
		return operation.CherryPickProgress(e.c.Markers, e.c.Walker), nil
	}
	return nil, nil
}

func (e *Engine) needsConflictDetail(files []status.WorkingDirectoryFileChange, ops status.OperationMarkers) bool {
	if e.opts.SkipConflictDetail {
		return false
	}
	return hasConflicted(files) || ops.MergeHeadFound || ops.RebaseState != nil
}

func hasConflicted(files []status.WorkingDirectoryFileChange) bool {
	for _, f := range files {
		if f.Status.Kind == status.StatusConflicted {
			return true
		}
	}
	return false
}

// capUntracked drops untracked entries beyond the configured cap. Tracked
// changes are never dropped.
func (e *Engine) capUntracked(files []status.WorkingDirectoryFileChange) []status.WorkingDirectoryFileChange {
	maxUntracked := e.opts.MaxUntrackedFiles
	if maxUntracked <= 0 {
		return files
	}
	kept := files[:0]
	untracked := 0
	for _, f := range files {
		if f.Status.Kind == status.StatusUntracked {
			untracked++
			if untracked > maxUntracked {
				continue
			}
		}
		kept = append(kept, f)
	}
	return kept
}
