package operation

import (
	"strconv"
	"strings"
)

// CommitSummary identifies one commit in a range walk.
type CommitSummary struct {
	SHA     string
	Summary string
}

// CommitWalker lists the commits reachable from one ref but not another,
// ordered oldest to newest.
type CommitWalker interface {
	CommitsBetween(from, to string) ([]CommitSummary, error)
}

// Progress is a point-in-time snapshot of a multi-commit operation. It is
// recomputed from sequencer state on every request, never persisted.
type Progress struct {
	CurrentCommitSummary string
	Position             int
	TotalCommitCount     int
	Value                int // 0-100
}

// RebaseProgress computes the progress of an in-flight rebase from the
// sequencer counters. A missing or unparseable counter (including a torn
// read while the rebase advances) yields nil: progress is unavailable, not
// an error.
func RebaseProgress(s MarkerStore, w CommitWalker) *Progress {
	next, ok := readCounter(s, markerRebaseNext)
	if !ok {
		return nil
	}
	last, ok := readCounter(s, markerRebaseLast)
	if !ok || last <= 0 {
		return nil
	}

	p := &Progress{
		Position:         next,
		TotalCommitCount: last,
		Value:            percentage(next, last),
	}

	state := RebaseState(s)
	if state == nil || w == nil {
		return p
	}
	commits, err := w.CommitsBetween(state.BaseBranchTip, state.OriginalBranchTip)
	if err != nil {
		return p
	}
	// next is 1-indexed; out-of-range leaves the summary empty rather than
	// failing the whole snapshot.
	if idx := next - 1; idx >= 0 && idx < len(commits) {
		p.CurrentCommitSummary = commits[idx].Summary
	}
	return p
}

// CherryPickProgress computes the progress of an in-flight cherry-pick from
// the sequencer todo list.
//
// Already-applied commits are those reachable between the sequencer head and
// its abort-safety tip; position is the step currently being applied.
func CherryPickProgress(s MarkerStore, w CommitWalker) *Progress {
	todo, ok := s.Read(markerSequencerTodo)
	if !ok {
		return nil
	}
	remaining := parseTodoPicks(todo)
	if len(remaining) == 0 {
		return nil
	}

	applied := 0
	head, okHead := s.Read(markerSequencerHead)
	abortSafety, okSafety := s.Read(markerSequencerAbortSafety)
	if okHead && okSafety && w != nil {
		if commits, err := w.CommitsBetween(head, abortSafety); err == nil {
			applied = len(commits)
		}
	}

	total := applied + len(remaining)
	position := applied + 1
	return &Progress{
		CurrentCommitSummary: remaining[0].Summary,
		Position:             position,
		TotalCommitCount:     total,
		Value:                percentage(position, total),
	}
}

// parseTodoPicks extracts the pending pick lines from a sequencer todo list.
// Each line is "pick <sha> <summary>", split on the first two runs of
// whitespace.
func parseTodoPicks(todo string) []CommitSummary {
	var picks []CommitSummary
	for _, line := range strings.Split(todo, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "pick" {
			continue
		}
		summary := ""
		if len(fields) > 2 {
			rest := strings.TrimSpace(line[strings.Index(line, fields[1])+len(fields[1]):])
			summary = rest
		}
		picks = append(picks, CommitSummary{SHA: fields[1], Summary: summary})
	}
	return picks
}

func readCounter(s MarkerStore, name string) (int, bool) {
	raw, ok := s.Read(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func percentage(position, total int) int {
	if total <= 0 {
		return 0
	}
	v := position * 100 / total
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v
}
