package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/craftlabs/treestate/operation"
	"github.com/craftlabs/treestate/status"
)

// stdoutIsTerminal decides between the human layout and JSON; piped output
// always gets JSON.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func renderStatus(w io.Writer, result *status.StatusResult, pretty bool) error {
	if !pretty {
		return writeJSON(w, result)
	}

	branch := result.CurrentBranch
	if branch == "" {
		branch = "(detached)"
	}
	fmt.Fprintf(w, "On %s", branch)
	if result.CurrentUpstreamBranch != "" {
		fmt.Fprintf(w, " -> %s", result.CurrentUpstreamBranch)
	}
	if ab := result.BranchAheadBehind; ab != nil {
		fmt.Fprintf(w, " [ahead %d, behind %d]", ab.Ahead, ab.Behind)
	}
	fmt.Fprintln(w)

	switch {
	case result.SquashMsgFound:
		fmt.Fprintln(w, "Squash in progress")
	case result.MergeHeadFound:
		fmt.Fprintln(w, "Merge in progress")
	case result.RebaseInternalState != nil:
		fmt.Fprintf(w, "Rebase in progress onto %s\n", result.RebaseInternalState.BaseBranchTip)
	case result.CherryPickHeadFound:
		fmt.Fprintln(w, "Cherry-pick in progress")
	}

	for _, f := range result.WorkingDirectory.Files {
		line := fmt.Sprintf("  %-10s %s", f.Status.Kind, f.Path)
		if f.Status.OldPath != "" {
			line += fmt.Sprintf(" (from %s)", f.Status.OldPath)
		}
		if c := f.Status.Conflict; c != nil && !c.Manual {
			line += fmt.Sprintf(" (%d markers)", c.MarkerCount)
		}
		fmt.Fprintln(w, line)
	}
	if len(result.WorkingDirectory.Files) == 0 {
		fmt.Fprintln(w, "  clean")
	}
	return nil
}

func renderProgress(w io.Writer, progress *operation.Progress, pretty bool) error {
	if !pretty {
		return writeJSON(w, progress)
	}
	if progress == nil {
		fmt.Fprintln(w, "no operation in progress")
		return nil
	}
	fmt.Fprintf(w, "%d/%d (%d%%)", progress.Position, progress.TotalCommitCount, progress.Value)
	if progress.CurrentCommitSummary != "" {
		fmt.Fprintf(w, " %s", progress.CurrentCommitSummary)
	}
	fmt.Fprintln(w)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
