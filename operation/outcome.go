package operation

import "strings"

// Outcome is the terminal state of one multi-commit operation step. Rebase,
// cherry-pick and squash all share this shape: the underlying step either
// completes, stops on conflicts, or fails in a way the caller maps to an
// actionable message. Outcomes are first-class results, never exceptions.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeAlreadyUpToDate
	OutcomeConflictsEncountered
	OutcomeOutstandingFilesNotStaged
	OutcomeAborted
	OutcomeError
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeAlreadyUpToDate:
		return "already-up-to-date"
	case OutcomeConflictsEncountered:
		return "conflicts-encountered"
	case OutcomeOutstandingFilesNotStaged:
		return "outstanding-files-not-staged"
	case OutcomeAborted:
		return "aborted"
	default:
		return "error"
	}
}

var upToDatePhrases = []string{
	"nothing to do",
	"is up to date",
	"already applied",
}

var conflictPhrases = []string{
	"merge conflict",
	"conflict (content)",
	"conflict (modify/delete)",
	"could not apply",
}

var outstandingPhrases = []string{
	"unmerged files",
	"needs merge",
	"you must edit all merge conflicts",
}

// InterpretResult maps the exit code and combined output of an underlying
// operation step to its Outcome.
//
// Zero exit means the step completed, unless the output says there was
// nothing to do. Recognized conflict conditions and incompletely staged
// resolutions become their own outcomes; anything else nonzero is an error
// the caller surfaces as a typed result, never a crash.
func InterpretResult(exitCode int, output string) Outcome {
	lower := strings.ToLower(output)

	if exitCode == 0 {
		if containsAny(lower, upToDatePhrases) {
			return OutcomeAlreadyUpToDate
		}
		return OutcomeCompleted
	}
	if containsAny(lower, conflictPhrases) {
		return OutcomeConflictsEncountered
	}
	if containsAny(lower, outstandingPhrases) {
		return OutcomeOutstandingFilesNotStaged
	}
	return OutcomeError
}

// ContinueAction says how to resume a stopped multi-commit operation.
type ContinueAction int

const (
	// ContinueCommit resumes the operation, committing the staged
	// resolution for the current step.
	ContinueCommit ContinueAction = iota
	// ContinueSkip skips the current step; resuming with no tracked
	// changes left would otherwise error.
	ContinueSkip
)

// NextContinueAction picks the continuation for the current step given
// whether any tracked changes remain staged for it.
func NextContinueAction(trackedChangesRemain bool) ContinueAction {
	if trackedChangesRemain {
		return ContinueCommit
	}
	return ContinueSkip
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
